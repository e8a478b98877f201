// Command karalign aligns lyrics against ASR transcription output and
// writes the repaired segments plus review artifacts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mhergert/karalign/internal/config"
	"github.com/mhergert/karalign/internal/observe"
	"github.com/mhergert/karalign/internal/pipeline"
	"github.com/mhergert/karalign/pkg/segment"
	"github.com/mhergert/karalign/pkg/vad"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	lyricsPath := flag.String("lyrics", "", "path to the lyrics file (.txt or .lrc)")
	asrPath := flag.String("asr", "", "path to the ASR segments JSON file")
	vadPath := flag.String("vad", "", "path to the VAD speech segments JSON file (optional)")
	outDir := flag.String("out", ".", "directory for output artifacts")
	duration := flag.Float64("duration", 0, "total audio duration in seconds (optional)")
	flag.Parse()

	if *lyricsPath == "" || *asrPath == "" {
		fmt.Fprintln(os.Stderr, "karalign: -lyrics and -asr are required")
		flag.Usage()
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "karalign: %v\n", err)
			return 1
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.Level.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "karalign"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	job, err := loadJob(*lyricsPath, *asrPath, *vadPath, *duration)
	if err != nil {
		slog.Error("failed to load inputs", "err", err)
		return 1
	}

	p := pipeline.New(pipeline.WithConfig(cfg), pipeline.WithLogger(logger))
	res, err := p.Run(ctx, job)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("cancelled")
			return 1
		}
		slog.Error("alignment failed", "err", err)
		return 1
	}

	if err := writeArtifacts(*outDir, res); err != nil {
		slog.Error("failed to write artifacts", "err", err)
		return 1
	}

	slog.Info("done",
		"segments", len(res.Segments),
		"needs_review", res.Report.NeedsReview(),
		"out", *outDir)
	return 0
}

// loadJob reads the lyrics, ASR segments, and optional VAD segments into a
// pipeline job.
func loadJob(lyricsPath, asrPath, vadPath string, duration float64) (pipeline.Job, error) {
	job := pipeline.Job{
		Name:          filepath.Base(lyricsPath),
		TotalDuration: duration,
	}

	raw, err := os.ReadFile(lyricsPath)
	if err != nil {
		return job, fmt.Errorf("read lyrics: %w", err)
	}
	job.LyricsContent = string(raw)

	raw, err = os.ReadFile(asrPath)
	if err != nil {
		return job, fmt.Errorf("read asr segments: %w", err)
	}
	var segs []segment.Segment
	if err := json.Unmarshal(raw, &segs); err != nil {
		return job, fmt.Errorf("parse asr segments %q: %w", asrPath, err)
	}
	job.ASRSegments = segs

	if vadPath != "" {
		raw, err = os.ReadFile(vadPath)
		if err != nil {
			return job, fmt.Errorf("read vad segments: %w", err)
		}
		var speech []vad.SpeechSegment
		if err := json.Unmarshal(raw, &speech); err != nil {
			return job, fmt.Errorf("parse vad segments %q: %w", vadPath, err)
		}
		job.VADSegments = speech
	}

	return job, nil
}

// writeArtifacts renders the run's JSON artifacts into dir.
func writeArtifacts(dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]any{
		"segments.json": res.Segments,
		"report.json":   res.Report,
		"repair.json": map[string]any{
			"cps_fix":  res.CPSFix,
			"gap_fill": res.GapFill,
		},
	}
	if res.Rhyme != nil {
		files["rhyme.json"] = res.Rhyme
	}
	if res.TextStats != nil {
		files["text_stats.json"] = res.TextStats
	}

	for name, v := range files {
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	diff, err := res.Report.DiffReportJSON()
	if err != nil {
		return fmt.Errorf("marshal diff report: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "report_diff.json"), diff, 0o644)
}
