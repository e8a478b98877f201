// Package config provides the configuration schema and loader for the
// karalign pipeline.
package config

// LogLevel controls log verbosity for pipeline runs.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LyricsFormat selects how lyrics input is interpreted.
type LyricsFormat string

const (
	// FormatAuto detects LRC time tags and falls back to plain text.
	FormatAuto LyricsFormat = "auto"

	// FormatText treats the input as plain lyrics lines.
	FormatText LyricsFormat = "text"

	// FormatLRC requires LRC time tags.
	FormatLRC LyricsFormat = "lrc"
)

// IsValid reports whether f is a recognised lyrics format.
func (f LyricsFormat) IsValid() bool {
	switch f {
	case FormatAuto, FormatText, FormatLRC:
		return true
	}
	return false
}

// Config is the root configuration structure for karalign.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Lyrics   LyricsConfig   `yaml:"lyrics"`
	Timing   TimingConfig   `yaml:"timing"`
	VAD      VADConfig      `yaml:"vad"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// LoggingConfig holds logging settings for pipeline runs.
type LoggingConfig struct {
	// Level controls verbosity.
	Level LogLevel `yaml:"level"`
}

// LyricsConfig controls lyrics parsing.
type LyricsConfig struct {
	// Format selects the input interpretation.
	Format LyricsFormat `yaml:"format"`

	// PreserveEmptyLines keeps blank lines as stanza boundaries.
	PreserveEmptyLines bool `yaml:"preserve_empty_lines"`

	// KeepSectionMarkers keeps [Verse]/[Chorus] style markers as lines
	// instead of filtering them out.
	KeepSectionMarkers bool `yaml:"keep_section_markers"`
}

// TimingConfig holds the segment timing repair parameters.
type TimingConfig struct {
	// MaxCPS is the characters-per-second ceiling above which segments
	// are split or extended.
	MaxCPS float64 `yaml:"max_cps"`

	// MinGap is the smallest silence, in seconds, that gets a filler
	// segment inserted.
	MinGap float64 `yaml:"min_gap"`

	// MergeThreshold is the largest micro-gap, in seconds, absorbed by
	// extending the previous segment.
	MergeThreshold float64 `yaml:"merge_threshold"`

	// FillText is the display text of inserted filler segments.
	FillText string `yaml:"fill_text"`

	// RedistributeGap is the inter-segment gap, in seconds, used by
	// proportional redistribution.
	RedistributeGap float64 `yaml:"redistribute_gap"`
}

// VADConfig holds voice-activity-detection remapping parameters.
type VADConfig struct {
	// SpeechPadMS is the padding applied around speech islands when the
	// trimmed audio was built. Remapping must use the same value.
	SpeechPadMS int `yaml:"speech_pad_ms"`
}

// AnalysisConfig toggles the lyrical analysis passes.
type AnalysisConfig struct {
	// Rhyme enables rhyme-scheme detection.
	Rhyme bool `yaml:"rhyme"`

	// TextStats enables the lexical statistics pass.
	TextStats bool `yaml:"text_stats"`
}

// Default returns the configuration used when no file is given: moderate
// subtitle speed, musical-note fillers, and both analysis passes enabled.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: LogInfo},
		Lyrics:  LyricsConfig{Format: FormatAuto},
		Timing: TimingConfig{
			MaxCPS:          15,
			MinGap:          2.0,
			MergeThreshold:  0.5,
			FillText:        "♪",
			RedistributeGap: 0.1,
		},
		VAD:      VADConfig{SpeechPadMS: 200},
		Analysis: AnalysisConfig{Rhyme: true, TextStats: true},
	}
}
