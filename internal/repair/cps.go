// Package repair provides independent segment-timing transforms: CPS-based
// splitting, gap filling and micro-gap merging, and character-proportional
// timing redistribution. Each transform consumes and returns fresh segment
// lists; none depends on the alignment components.
package repair

import (
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mhergert/karalign/pkg/segment"
)

// minKeepDuration is the duration below which post-split segments are
// considered degenerate artifacts and dropped.
const minKeepDuration = 0.05

// CPSFixResult summarizes one [FixCPS] pass.
type CPSFixResult struct {
	OriginalCount    int     `json:"original_count"`
	FixedCount       int     `json:"fixed_count"`
	SegmentsSplit    int     `json:"segments_split"`
	SegmentsExtended int     `json:"segments_extended"`
	MaxCPSBefore     float64 `json:"max_cps_before"`
	MaxCPSAfter      float64 `json:"max_cps_after"`
	AvgCPSBefore     float64 `json:"avg_cps_before"`
	AvgCPSAfter      float64 `json:"avg_cps_after"`
}

// Break-point patterns, tried in priority order: punctuation surrounded the
// way subtitle text breaks naturally, then conjunctions/prepositions.
var splitPunctuation = []*regexp.Regexp{
	regexp.MustCompile(`,\s`),
	regexp.MustCompile(`;\s`),
	regexp.MustCompile(`\s-\s`),
	regexp.MustCompile(`\s–\s`),
}

var splitConjunctions = func() []*regexp.Regexp {
	words := []string{
		"und", "oder", "aber", "denn", "weil", "dass", "wenn", "als",
		"with", "and", "but", "the", "for", "that", "when",
	}
	pats := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		pats[i] = regexp.MustCompile(`(?i)\s` + w + `\s`)
	}
	return pats
}()

// FixCPS splits or stretches every segment whose characters-per-second rate
// exceeds maxCPS, and reports before/after statistics.
//
// Over-limit segments are split at the best break point (punctuation near
// the text midpoint, then a conjunction, then the nearest space), with the
// split time proportional to the character ratio and refined to a word
// boundary when word timestamps are available. Halves are re-checked and
// split again while they remain over-limit and hold at least three words;
// an over-limit half that cannot be split further is end-extended to the
// limit.
// A segment with no viable break point keeps its text and has its end
// extended to start + chars/maxCPS instead — a timing fix, never a text fix.
// Segments shorter than 0.05 s after splitting are dropped.
func FixCPS(segs []segment.Segment, maxCPS float64) ([]segment.Segment, CPSFixResult) {
	if len(segs) == 0 {
		return segs, CPSFixResult{}
	}

	var res CPSFixResult
	res.OriginalCount = len(segs)
	res.MaxCPSBefore, res.AvgCPSBefore = cpsStats(segs)

	out := make([]segment.Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.CPS() <= maxCPS {
			out = append(out, seg)
			continue
		}

		pieces := splitSegment(seg, maxCPS)
		if len(pieces) > 1 {
			out = append(out, pieces...)
			res.SegmentsSplit++
			continue
		}

		// No break point: stretch the end so the text fits the limit.
		out = append(out, extendToLimit(seg.Clone(), maxCPS))
		res.SegmentsExtended++
	}

	kept := out[:0]
	for _, s := range out {
		if s.Duration() >= minKeepDuration {
			kept = append(kept, s)
		}
	}
	out = kept

	res.FixedCount = len(out)
	res.MaxCPSAfter, res.AvgCPSAfter = cpsStats(out)

	slog.Info("cps fix",
		slog.Int("split", res.SegmentsSplit),
		slog.Int("extended", res.SegmentsExtended),
		slog.Float64("max_cps_before", res.MaxCPSBefore),
		slog.Float64("max_cps_after", res.MaxCPSAfter),
		slog.Int("segments_before", res.OriginalCount),
		slog.Int("segments_after", res.FixedCount))

	return out, res
}

// splitSegment splits one over-limit segment into CPS-compliant pieces using
// an explicit worklist (no recursion, stable output order). Returns the
// segment unchanged when the root has no break point; over-limit halves that
// resist further splitting come back end-extended instead.
func splitSegment(seg segment.Segment, maxCPS float64) []segment.Segment {
	type item struct {
		seg  segment.Segment
		root bool
	}

	var out []segment.Segment
	stack := []item{{seg: seg, root: true}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := it.seg

		if s.CPS() <= maxCPS {
			out = append(out, s)
			continue
		}
		// Halves below three words stay unsplit to stop runaway
		// fragmentation of short fast lines; the end stretches instead so
		// the worst-case rate never rises past the input's.
		if !it.root && len(strings.Fields(s.Text)) < 3 {
			out = append(out, extendToLimit(s, maxCPS))
			continue
		}

		a, b, ok := splitOnce(s)
		if !ok {
			if it.root {
				out = append(out, s)
				continue
			}
			out = append(out, extendToLimit(s, maxCPS))
			continue
		}
		stack = append(stack, item{seg: b}, item{seg: a})
	}

	return out
}

// splitOnce divides a segment at its best break point into two halves with
// proportional timing. ok is false when no break point exists or a half
// would be empty.
func splitOnce(seg segment.Segment) (a, b segment.Segment, ok bool) {
	text := seg.Text
	pos := findSplitPoint(text)
	if pos <= 0 || pos >= len(text) {
		return a, b, false
	}

	partA := strings.TrimRight(text[:pos], " ")
	partB := strings.TrimLeft(text[pos:], " ")
	if partA == "" || partB == "" {
		return a, b, false
	}

	totalRunes := utf8.RuneCountInString(text)
	splitRunes := utf8.RuneCountInString(text[:pos])
	splitTime := seg.Start + seg.Duration()*float64(splitRunes)/float64(totalRunes)

	// Prefer an actual word boundary when the transcript has word timing.
	if len(seg.Words) > 0 {
		charCount := 0
		for _, w := range seg.Words {
			charCount += utf8.RuneCountInString(w.Word) + 1
			if charCount >= splitRunes {
				splitTime = w.End
				break
			}
		}
	}

	var wordsA, wordsB []segment.Word
	for _, w := range seg.Words {
		if w.End <= splitTime+0.05 {
			wordsA = append(wordsA, w)
		} else {
			wordsB = append(wordsB, w)
		}
	}

	a = segment.Segment{
		Start:             seg.Start,
		End:               round3(splitTime),
		Text:              partA,
		Words:             wordsA,
		Confidence:        seg.Confidence,
		HasWordTimestamps: len(wordsA) > 0,
	}
	b = segment.Segment{
		Start:             round3(splitTime),
		End:               seg.End,
		Text:              partB,
		Words:             wordsB,
		Confidence:        seg.Confidence,
		HasWordTimestamps: len(wordsB) > 0,
	}
	return a, b, true
}

// findSplitPoint returns the byte offset of the best break point in text, or
// -1 when none exists. Priority: punctuation break nearest the midpoint,
// then a conjunction nearest the midpoint (split before the word), then the
// space nearest the midpoint searched outward symmetrically.
func findSplitPoint(text string) int {
	mid := len(text) / 2

	for _, pat := range splitPunctuation {
		if pos, ok := closestMatchEnd(pat, text, mid); ok {
			return pos
		}
	}

	for _, pat := range splitConjunctions {
		matches := pat.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		best := matches[0]
		for _, m := range matches[1:] {
			if abs(m[0]-mid) < abs(best[0]-mid) {
				best = m
			}
		}
		return best[0] + 1
	}

	for offset := 0; offset <= len(text)/2; offset++ {
		for _, pos := range []int{mid + offset, mid - offset} {
			if pos > 0 && pos < len(text) && text[pos] == ' ' {
				return pos + 1
			}
		}
	}
	return -1
}

// closestMatchEnd finds the pattern match whose start is nearest mid and
// returns the byte offset just past it.
func closestMatchEnd(pat *regexp.Regexp, text string, mid int) (int, bool) {
	matches := pat.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if abs(m[0]-mid) < abs(best[0]-mid) {
			best = m
		}
	}
	return best[1], true
}

// extendToLimit stretches a segment's end so its text fits maxCPS. Neighbors
// are deliberately ignored; a resulting overlap is preferable to an unreadable
// display rate.
func extendToLimit(s segment.Segment, maxCPS float64) segment.Segment {
	if s.CPS() > maxCPS {
		s.End = round3(s.Start + float64(utf8.RuneCountInString(s.Text))/maxCPS)
	}
	return s
}

func cpsStats(segs []segment.Segment) (maxCPS, avgCPS float64) {
	if len(segs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range segs {
		c := s.CPS()
		sum += c
		if c > maxCPS {
			maxCPS = c
		}
	}
	return maxCPS, sum / float64(len(segs))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
