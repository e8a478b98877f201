// Package observe provides observability primitives for karalign:
// OpenTelemetry metrics, tracing, and trace-aware structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via a standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all karalign metrics.
const meterName = "github.com/mhergert/karalign"

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// PipelineDuration tracks end-to-end alignment pipeline latency.
	PipelineDuration metric.Float64Histogram

	// StageDuration tracks per-stage latency. Use with attribute:
	//   attribute.String("stage", ...)
	StageDuration metric.Float64Histogram

	// ReportsGenerated counts alignment reports. Use with attribute:
	//   attribute.String("status", "clean"|"needs_review")
	ReportsGenerated metric.Int64Counter

	// LinesNeedingReview counts lines flagged for human review.
	LinesNeedingReview metric.Int64Counter

	// SegmentsSplit counts segments split by the CPS fixer.
	SegmentsSplit metric.Int64Counter

	// GapsFilled counts filler segments inserted by the gap filler.
	GapsFilled metric.Int64Counter

	// PipelineErrors counts failed pipeline runs. Use with attribute:
	//   attribute.String("stage", ...)
	PipelineErrors metric.Int64Counter

	// ActiveJobs tracks the number of pipeline jobs currently running.
	ActiveJobs metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// text-processing passes, which are fast but scale with song length.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PipelineDuration, err = m.Float64Histogram("karalign.pipeline.duration",
		metric.WithDescription("End-to-end alignment pipeline latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("karalign.stage.duration",
		metric.WithDescription("Pipeline stage latency by stage name."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ReportsGenerated, err = m.Int64Counter("karalign.reports.generated",
		metric.WithDescription("Total alignment reports by review status."),
	); err != nil {
		return nil, err
	}
	if met.LinesNeedingReview, err = m.Int64Counter("karalign.lines.needing_review",
		metric.WithDescription("Total lines flagged for human review."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsSplit, err = m.Int64Counter("karalign.segments.split",
		metric.WithDescription("Total segments split by the CPS fixer."),
	); err != nil {
		return nil, err
	}
	if met.GapsFilled, err = m.Int64Counter("karalign.gaps.filled",
		metric.WithDescription("Total filler segments inserted by the gap filler."),
	); err != nil {
		return nil, err
	}
	if met.PipelineErrors, err = m.Int64Counter("karalign.pipeline.errors",
		metric.WithDescription("Total failed pipeline runs by stage."),
	); err != nil {
		return nil, err
	}

	if met.ActiveJobs, err = m.Int64UpDownCounter("karalign.active_jobs",
		metric.WithDescription("Number of pipeline jobs currently running."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordStage records one stage's duration under its stage name.
func (m *Metrics) RecordStage(ctx context.Context, stage string, seconds float64) {
	m.StageDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordReport records a generated report and its review lines.
func (m *Metrics) RecordReport(ctx context.Context, needsReview bool, reviewLines int) {
	status := "clean"
	if needsReview {
		status = "needs_review"
	}
	m.ReportsGenerated.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	if reviewLines > 0 {
		m.LinesNeedingReview.Add(ctx, int64(reviewLines))
	}
}

// RecordPipelineError records a failed run attributed to a stage.
func (m *Metrics) RecordPipelineError(ctx context.Context, stage string) {
	m.PipelineErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}
