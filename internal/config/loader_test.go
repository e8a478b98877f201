package config_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/mhergert/karalign/internal/config"
)

func TestLoadFromReader_OverridesDefaults(t *testing.T) {
	t.Parallel()
	yaml := `
timing:
  max_cps: 18
  fill_text: "..."
analysis:
  rhyme: false
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timing.MaxCPS != 18 {
		t.Errorf("max_cps = %f, want 18", cfg.Timing.MaxCPS)
	}
	if cfg.Timing.FillText != "..." {
		t.Errorf("fill_text = %q, want ...", cfg.Timing.FillText)
	}
	if cfg.Analysis.Rhyme {
		t.Error("analysis.rhyme should be overridden to false")
	}
	// Untouched fields keep their defaults.
	if cfg.Timing.MinGap != 2.0 {
		t.Errorf("min_gap = %f, want default 2.0", cfg.Timing.MinGap)
	}
	if !cfg.Analysis.TextStats {
		t.Error("analysis.text_stats should keep its default true")
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
timing:
  max_charaters_per_second: 18
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_RejectsNonPositiveMaxCPS(t *testing.T) {
	t.Parallel()
	yaml := `
timing:
  max_cps: 0
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for max_cps 0, got nil")
	}
	if !strings.Contains(err.Error(), "max_cps") {
		t.Errorf("error should mention max_cps, got: %v", err)
	}
}

func TestValidate_MergeThresholdMustNotExceedMinGap(t *testing.T) {
	t.Parallel()
	yaml := `
timing:
  min_gap: 0.5
  merge_threshold: 1.0
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for merge_threshold > min_gap, got nil")
	}
	if !strings.Contains(err.Error(), "merge_threshold") {
		t.Errorf("error should mention merge_threshold, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
logging:
  level: chatty
lyrics:
  format: midi
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "logging.level") {
		t.Errorf("error should mention logging.level, got: %v", err)
	}
	if !strings.Contains(errStr, "lyrics.format") {
		t.Errorf("error should mention lyrics.format, got: %v", err)
	}
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level config.LogLevel
		want  slog.Level
	}{
		{config.LogDebug, slog.LevelDebug},
		{config.LogInfo, slog.LevelInfo},
		{config.LogWarn, slog.LevelWarn},
		{config.LogError, slog.LevelError},
		{config.LogLevel(""), slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
