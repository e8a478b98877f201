package repair

import (
	"log/slog"
	"unicode/utf8"

	"github.com/mhergert/karalign/pkg/segment"
)

const (
	// DefaultFillText is the pause indicator used for gap-fill segments.
	DefaultFillText = "♪"

	// fillMargin keeps filler segments clear of their neighbours.
	fillMargin = 0.05
)

// GapFillResult summarizes one [FillGaps] pass.
type GapFillResult struct {
	OriginalCount    int     `json:"original_count"`
	FinalCount       int     `json:"final_count"`
	GapsFilled       int     `json:"gaps_filled"`
	MicroGapsMerged  int     `json:"micro_gaps_merged"`
	TotalGapDuration float64 `json:"total_gap_duration"`
}

// FillGaps inserts pause segments into large gaps and absorbs micro-gaps.
//
// For segments ordered by start time: a gap strictly greater than minGap
// inserts one filler segment with fillText (default "♪") spanning
// [prev.End+0.05, curr.Start−0.05] at full confidence; a gap in
// (0, mergeThreshold] extends the previous segment's end to the current
// segment's start, leaving its text and words untouched; zero and negative
// gaps (overlaps) pass through unchanged. The output length is exactly the
// input length plus GapsFilled.
func FillGaps(segs []segment.Segment, minGap, mergeThreshold float64, fillText string) ([]segment.Segment, GapFillResult) {
	if fillText == "" {
		fillText = DefaultFillText
	}
	if len(segs) < 2 {
		return segs, GapFillResult{OriginalCount: len(segs), FinalCount: len(segs)}
	}

	out := []segment.Segment{segs[0]}
	var res GapFillResult
	res.OriginalCount = len(segs)

	for _, curr := range segs[1:] {
		prev := out[len(out)-1]
		gap := curr.Start - prev.End

		switch {
		case gap > minGap:
			out = append(out, segment.Segment{
				Start:      round3(prev.End + fillMargin),
				End:        round3(curr.Start - fillMargin),
				Text:       fillText,
				Confidence: 1.0,
			})
			res.GapsFilled++
			res.TotalGapDuration += gap
		case gap > 0 && gap <= mergeThreshold:
			out[len(out)-1].End = curr.Start
			res.MicroGapsMerged++
		}

		out = append(out, curr)
	}

	res.FinalCount = len(out)

	slog.Info("gap fill",
		slog.Int("filled", res.GapsFilled),
		slog.Int("micro_merged", res.MicroGapsMerged),
		slog.Float64("total_gap_seconds", res.TotalGapDuration))

	return out, res
}

// Redistribute spreads the total duration across segments proportional to
// each segment's character count, inserting a fixed gap between consecutive
// segments. Word-level timestamps are dropped — they carry no meaning after
// redistribution. This is the last-resort repair for segments whose text
// order is right but whose timing is unusable.
//
// A non-positive totalDuration falls back to the last segment's end time.
func Redistribute(segs []segment.Segment, totalDuration, gap float64) []segment.Segment {
	if len(segs) == 0 {
		return segs
	}
	if totalDuration <= 0 {
		totalDuration = segs[len(segs)-1].End
	}

	totalChars := 0
	for _, s := range segs {
		totalChars += utf8.RuneCountInString(s.Text)
	}
	if totalChars == 0 {
		return segs
	}

	usable := totalDuration - gap*float64(len(segs)-1)
	if usable <= 0 {
		usable = totalDuration
	}

	out := make([]segment.Segment, 0, len(segs))
	cursor := 0.0
	for _, s := range segs {
		frac := float64(utf8.RuneCountInString(s.Text)) / float64(totalChars)
		dur := usable * frac
		out = append(out, segment.Segment{
			Start:      round3(cursor),
			End:        round3(cursor + dur),
			Text:       s.Text,
			Confidence: s.Confidence,
		})
		cursor += dur + gap
	}

	slog.Info("timing redistributed",
		slog.Int("segments", len(segs)),
		slog.Float64("total_duration", totalDuration))

	return out
}
