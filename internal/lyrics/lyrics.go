// Package lyrics parses plain-text and LRC lyrics files into structured
// lines that serve as the authoritative text for karaoke alignment.
//
// The parser's core guarantee is line integrity: the text of every target
// line is preserved character-for-character from the source file (trailing
// whitespace aside), because downstream karaoke rendering must show exactly
// what the lyrics author wrote.
package lyrics

import "errors"

// ErrEncoding is returned when the lyrics content is not valid UTF-8 after
// BOM stripping. Encoding failures are fatal: no partial result is produced.
var ErrEncoding = errors.New("lyrics: content is not valid UTF-8")

// Format identifies the lyrics file format.
type Format string

const (
	// FormatText is a plain .txt lyrics file.
	FormatText Format = "txt"

	// FormatLRC is a timestamped .lrc lyrics file.
	FormatLRC Format = "lrc"
)

// Line is a single parsed lyrics line. Lines are immutable after parsing.
type Line struct {
	// Index is the 0-based line number in the original file.
	Index int

	// Text is the line's content, preserved exactly (trailing whitespace
	// stripped; LRC time tags removed).
	Text string

	// IsEmpty marks a blank line (stanza separator).
	IsEmpty bool

	// IsSection marks a structural marker like "[Verse 1]" or "(Hook)".
	IsSection bool

	// SectionLabel is the marker's label, e.g. "Verse 1".
	SectionLabel string

	// LRCTime is the line's timestamp in seconds when parsed from an LRC
	// time tag; valid only when HasLRCTime is true.
	LRCTime    float64
	HasLRCTime bool
}

// Parsed is the result of parsing a lyrics file.
type Parsed struct {
	// Lines holds every source line in file order, including empty lines
	// and section markers.
	Lines []Line

	// TargetLines is the filtered lyric text in original order: non-empty,
	// non-section lines (empty lines included as "" only when requested).
	// This is the ground truth the aligner matches ASR output against.
	TargetLines []string

	// Sections lists detected section labels in file order, duplicates
	// included.
	Sections []string

	// TotalLines counts all parsed lines, including empty and section lines.
	TotalLines int

	// Format is the detected/declared source format.
	Format Format

	// HasTimestamps reports whether any LRC time tag was parsed.
	HasTimestamps bool
}

// Timing is one (seconds, text) pair extracted from a timestamped lyrics
// file.
type Timing struct {
	Seconds float64
	Text    string
}

// Stanzas groups consecutive non-empty, non-section lines into stanzas
// separated by blank lines in the source.
func (p *Parsed) Stanzas() [][]string {
	var stanzas [][]string
	var current []string

	for _, l := range p.Lines {
		switch {
		case l.IsSection:
			continue
		case l.IsEmpty:
			if len(current) > 0 {
				stanzas = append(stanzas, current)
				current = nil
			}
		default:
			current = append(current, l.Text)
		}
	}
	if len(current) > 0 {
		stanzas = append(stanzas, current)
	}
	return stanzas
}

// LRCTimings extracts (seconds, text) pairs for every non-empty, non-section
// line that carries a timestamp, in file order.
func (p *Parsed) LRCTimings() []Timing {
	var out []Timing
	for _, l := range p.Lines {
		if l.HasLRCTime && !l.IsEmpty && !l.IsSection {
			out = append(out, Timing{Seconds: l.LRCTime, Text: l.Text})
		}
	}
	return out
}
