package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Fields absent from the file keep their [Default] values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Logging.Level != "" && !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}
	if cfg.Lyrics.Format != "" && !cfg.Lyrics.Format.IsValid() {
		errs = append(errs, fmt.Errorf("lyrics.format %q is invalid; valid values: auto, text, lrc", cfg.Lyrics.Format))
	}

	if cfg.Timing.MaxCPS <= 0 {
		errs = append(errs, fmt.Errorf("timing.max_cps %.2f must be positive", cfg.Timing.MaxCPS))
	}
	if cfg.Timing.MinGap < 0 {
		errs = append(errs, fmt.Errorf("timing.min_gap %.2f must not be negative", cfg.Timing.MinGap))
	}
	if cfg.Timing.MergeThreshold < 0 {
		errs = append(errs, fmt.Errorf("timing.merge_threshold %.2f must not be negative", cfg.Timing.MergeThreshold))
	}
	if cfg.Timing.MergeThreshold > cfg.Timing.MinGap {
		errs = append(errs, fmt.Errorf("timing.merge_threshold %.2f must not exceed timing.min_gap %.2f",
			cfg.Timing.MergeThreshold, cfg.Timing.MinGap))
	}
	if cfg.Timing.FillText == "" {
		errs = append(errs, errors.New("timing.fill_text must not be empty"))
	}
	if cfg.Timing.RedistributeGap < 0 {
		errs = append(errs, fmt.Errorf("timing.redistribute_gap %.2f must not be negative", cfg.Timing.RedistributeGap))
	}

	if cfg.VAD.SpeechPadMS < 0 {
		errs = append(errs, fmt.Errorf("vad.speech_pad_ms %d must not be negative", cfg.VAD.SpeechPadMS))
	}

	return errors.Join(errs...)
}

// SlogLevel translates the configured level for slog handlers.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
