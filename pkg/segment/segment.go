// Package segment defines the shared transcript timing model consumed by the
// alignment, repair, and remapping components.
//
// A [Segment] is a half-open time interval [Start, End) in seconds carrying
// the text spoken in that interval, an optional list of word-level
// sub-intervals, and a confidence score. Segments within a transcript are
// conceptually ordered by Start but are not guaranteed gap-free or
// non-overlapping on input; repair components tolerate both.
package segment

import (
	"sort"
	"unicode/utf8"
)

// overLimitCPS is reported for zero-duration segments so they are always
// flagged by CPS checks instead of silently passing a division by zero.
const overLimitCPS = 999.0

// Word is a word-level sub-interval of a [Segment].
type Word struct {
	// Word is the spoken token.
	Word string `json:"word"`

	// Start and End bound the word's interval in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the recognizer's word confidence (0.0–1.0). Zero when
	// the backend does not report per-word confidence.
	Confidence float64 `json:"confidence,omitempty"`
}

// Segment is one transcript interval with associated text.
//
// Invariant: Start ≤ End. When HasWordTimestamps is true, Words is non-empty
// and each word's interval lies approximately within the segment's interval,
// in non-decreasing start order.
type Segment struct {
	// Start and End bound the segment's interval in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Text is the transcribed (or lyrics-substituted) text.
	Text string `json:"text"`

	// Words holds word-level timing when the backend provides it.
	Words []Word `json:"words,omitempty"`

	// Confidence is the overall segment confidence (0.0–1.0).
	Confidence float64 `json:"confidence"`

	// HasWordTimestamps reports whether Words carries usable timing.
	HasWordTimestamps bool `json:"has_word_timestamps"`
}

// Duration returns End - Start in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// CPS returns the segment's characters-per-second display rate. Character
// counts are rune counts so that umlauts and other multi-byte letters count
// once. A segment with non-positive duration returns 999 so it always trips
// CPS limits.
func (s Segment) CPS() float64 {
	dur := s.Duration()
	if dur <= 0 {
		return overLimitCPS
	}
	return float64(utf8.RuneCountInString(s.Text)) / dur
}

// Clone returns a deep copy of the segment, including its Words slice.
// Repair transforms operate on exclusively-owned copies so callers can hand
// the same input to independent passes.
func (s Segment) Clone() Segment {
	out := s
	if s.Words != nil {
		out.Words = make([]Word, len(s.Words))
		copy(out.Words, s.Words)
	}
	return out
}

// CloneAll deep-copies a segment list.
func CloneAll(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = s.Clone()
	}
	return out
}

// SortByStart sorts segments by start time in place, preserving the relative
// order of segments that share a start time.
func SortByStart(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Start < segs[j].Start
	})
}

// TotalDuration returns the end time of the last segment, or 0 for an empty
// list. Callers that know the true audio duration should prefer it.
func TotalDuration(segs []Segment) float64 {
	if len(segs) == 0 {
		return 0
	}
	return segs[len(segs)-1].End
}
