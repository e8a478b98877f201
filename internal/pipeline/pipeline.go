// Package pipeline orchestrates one full karaoke alignment pass: lyrics
// parsing, optional VAD time remapping, CPS and gap repair, report
// generation, and the lyrical analysis passes.
//
// The pipeline is deterministic: given the same job and configuration, the
// produced result and artifacts are identical. All stages operate on copies
// of the job's segments; the caller's input is never mutated.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhergert/karalign/internal/config"
	"github.com/mhergert/karalign/internal/lyrics"
	"github.com/mhergert/karalign/internal/observe"
	"github.com/mhergert/karalign/internal/repair"
	"github.com/mhergert/karalign/internal/report"
	"github.com/mhergert/karalign/internal/rhyme"
	"github.com/mhergert/karalign/internal/textstats"
	"github.com/mhergert/karalign/pkg/segment"
	"github.com/mhergert/karalign/pkg/vad"
)

// defaultConcurrency bounds how many jobs RunAll processes at once.
const defaultConcurrency = 4

// lrcDetect spots an LRC time tag for format auto-detection.
var lrcDetect = regexp.MustCompile(`\[\d{1,2}:\d{2}(?:\.\d{1,3})?\]`)

// Job is one song to align.
type Job struct {
	// Name identifies the job in logs and metrics.
	Name string

	// LyricsContent is the raw lyrics file content (plain text or LRC).
	LyricsContent string

	// ASRSegments is the transcription output, ordered by start time.
	ASRSegments []segment.Segment

	// VADSegments, when non-empty, describes the speech islands of the
	// VAD-trimmed audio the ASR ran on. Segment times are then remapped
	// back to the original timeline before repair.
	VADSegments []vad.SpeechSegment

	// TotalDuration is the audio length in seconds. Zero means unknown.
	TotalDuration float64
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Lyrics is the parsed authoritative text.
	Lyrics *lyrics.Parsed

	// Segments is the repaired segment list in start order.
	Segments []segment.Segment

	// Report scores the alignment and flags lines for review.
	Report *report.Report

	// CPSFix and GapFill summarise the repair stages.
	CPSFix  repair.CPSFixResult
	GapFill repair.GapFillResult

	// Rhyme is the rhyme-scheme analysis; nil when disabled.
	Rhyme *rhyme.Scheme

	// TextStats is the lexical profile; nil when disabled.
	TextStats *textstats.Stats
}

// Pipeline runs alignment passes. Construct with [New]; the zero value is
// not usable. Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *observe.Metrics

	concurrency int
}

// Option is a functional option for configuring a Pipeline during
// construction.
type Option func(*Pipeline)

// WithConfig overrides the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics sets the metrics instance. Default is [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithConcurrency bounds how many jobs [Pipeline.RunAll] processes at once.
// Default is 4.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New constructs a Pipeline. Options are applied after defaults.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:         config.Default(),
		log:         slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// Run executes one full alignment pass for job.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	ctx, span := observe.StartSpan(ctx, "pipeline.run")
	defer span.End()
	log := observe.Logger(ctx).With(slog.String("job", job.Name))

	p.metrics.ActiveJobs.Add(ctx, 1)
	defer p.metrics.ActiveJobs.Add(ctx, -1)
	runStart := time.Now()

	parsed, err := p.parseLyrics(job, log)
	if err != nil {
		p.metrics.RecordPipelineError(ctx, "parse")
		return nil, fmt.Errorf("pipeline: %s: %w", job.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", job.Name, err)
	}

	segs := segment.CloneAll(job.ASRSegments)
	if len(segs) == 0 && parsed.HasTimestamps {
		// LRC-only jobs have no transcription but carry their own timing.
		segs = lyrics.SegmentsFromLRC(parsed, job.TotalDuration)
		log.Info("no asr segments, using lrc timings", slog.Int("segments", len(segs)))
	}
	segment.SortByStart(segs)

	if len(job.VADSegments) > 0 {
		stage := time.Now()
		timeline := vad.NewTimeline(job.VADSegments, p.cfg.VAD.SpeechPadMS, log)
		segs = timeline.Remap(segs)
		segment.SortByStart(segs)
		p.metrics.RecordStage(ctx, "vad_remap", time.Since(stage).Seconds())
	}

	stage := time.Now()
	segs, cpsResult := repair.FixCPS(segs, p.cfg.Timing.MaxCPS)
	p.metrics.RecordStage(ctx, "cps_fix", time.Since(stage).Seconds())
	if cpsResult.SegmentsSplit > 0 {
		p.metrics.SegmentsSplit.Add(ctx, int64(cpsResult.SegmentsSplit))
	}

	stage = time.Now()
	segs, gapResult := repair.FillGaps(segs, p.cfg.Timing.MinGap, p.cfg.Timing.MergeThreshold, p.cfg.Timing.FillText)
	p.metrics.RecordStage(ctx, "gap_fill", time.Since(stage).Seconds())
	if gapResult.GapsFilled > 0 {
		p.metrics.GapsFilled.Add(ctx, int64(gapResult.GapsFilled))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", job.Name, err)
	}

	// Score against the raw ASR output when present; LRC-only jobs compare
	// against their own timed lines.
	original := job.ASRSegments
	if len(original) == 0 {
		original = segs
	}

	stage = time.Now()
	rep := report.Generate(parsed.TargetLines, alignable(segs, p.cfg.Timing.FillText), original, log)
	p.metrics.RecordStage(ctx, "report", time.Since(stage).Seconds())
	p.metrics.RecordReport(ctx, rep.NeedsReview(), rep.LinesNeedingReview)

	res := &Result{
		Lyrics:   parsed,
		Segments: segs,
		Report:   rep,
		CPSFix:   cpsResult,
		GapFill:  gapResult,
	}

	if p.cfg.Analysis.Rhyme {
		stage = time.Now()
		scheme := rhyme.Analyze(parsed.TargetLines)
		res.Rhyme = &scheme
		p.metrics.RecordStage(ctx, "rhyme", time.Since(stage).Seconds())
	}
	if p.cfg.Analysis.TextStats {
		stage = time.Now()
		stats := textstats.Analyze(parsed.TargetLines)
		res.TextStats = &stats
		p.metrics.RecordStage(ctx, "text_stats", time.Since(stage).Seconds())
	}

	p.metrics.PipelineDuration.Record(ctx, time.Since(runStart).Seconds())
	log.Info("pipeline run complete",
		slog.Int("segments", len(segs)),
		slog.Int("segments_split", cpsResult.SegmentsSplit),
		slog.Int("gaps_filled", gapResult.GapsFilled),
		slog.Bool("needs_review", rep.NeedsReview()))

	return res, nil
}

// RunAll processes jobs concurrently, bounded by the configured concurrency.
// Results are returned in job order. The first error cancels the remaining
// jobs.
func (p *Pipeline) RunAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := p.Run(ctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// parseLyrics maps the configured lyrics options onto the parser, with
// format auto-detection by LRC time tag.
func (p *Pipeline) parseLyrics(job Job, log *slog.Logger) (*lyrics.Parsed, error) {
	format := lyrics.FormatText
	switch p.cfg.Lyrics.Format {
	case config.FormatLRC:
		format = lyrics.FormatLRC
	case config.FormatAuto, config.LyricsFormat(""):
		if lrcDetect.MatchString(job.LyricsContent) {
			format = lyrics.FormatLRC
		}
	}

	return lyrics.Parse(job.LyricsContent, lyrics.Options{
		Format:             format,
		PreserveEmptyLines: p.cfg.Lyrics.PreserveEmptyLines,
		KeepSectionMarkers: p.cfg.Lyrics.KeepSectionMarkers,
		Logger:             log,
	})
}

// alignable filters out filler segments so the report lines up lyric lines
// with sung segments only.
func alignable(segs []segment.Segment, fillText string) []segment.Segment {
	out := make([]segment.Segment, 0, len(segs))
	for _, s := range segs {
		if s.Text == fillText {
			continue
		}
		out = append(out, s)
	}
	return out
}
