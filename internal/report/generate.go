package report

import (
	"log/slog"
	"strings"

	"github.com/mhergert/karalign/internal/align"
	"github.com/mhergert/karalign/pkg/segment"
)

// Overlap tolerances for the time-range matching strategy.
const (
	segmentOverlapPad = 0.5
	wordOverlapPad    = 0.1
)

// Generate builds the alignment report for one pass.
//
// targetLines is the lyrics ground truth; alignedSegments are the current
// best-guess segments whose text should equal the lyrics; originalSegments
// is the raw ASR output used for comparison. One LineAlignment is produced
// per aligned segment. When the lyrics run out before the segments do, the
// segment's own text stands in as the target (clamped-zip policy) — surplus
// lyrics lines surface as MatchedLines < TotalLines.
//
// Generate is pure: identical inputs yield identical reports, and the
// sequential-match cursor lives entirely within one call.
func Generate(targetLines []string, alignedSegments, originalSegments []segment.Segment, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.Default()
	}

	seq := align.NewSequencer(align.FlattenWords(originalSegments))

	r := &Report{
		TotalLines:    len(targetLines),
		MatchedLines:  len(alignedSegments),
		MinMatchScore: 1.0,
	}

	var scoreSum float64
	for i, seg := range alignedSegments {
		lyricsText := seg.Text
		if i < len(targetLines) {
			lyricsText = targetLines[i]
		}

		// Strategy 1: overlap with the raw segments on the time axis.
		byTime := textInRange(originalSegments, seg.Start, seg.End)
		scoreByTime := 0.0
		if byTime != "" {
			scoreByTime = align.Similarity(lyricsText, byTime)
		}

		// Strategy 2: forward window match over the flat word stream.
		candidate := seq.Match(lyricsText)

		asrText := byTime
		score := scoreByTime
		if candidate.Score > scoreByTime {
			asrText = candidate.Text
			score = candidate.Score
			seq.Commit(candidate)
		}

		var diffs []string
		if score < diffScoreCeiling {
			diffs = align.DiffWords(lyricsText, asrText)
		}

		var timing TimingSource
		switch {
		case seg.HasWordTimestamps && len(seg.Words) > 0:
			timing = TimingWordLevel
			r.WordLevelLines++
		case seg.Confidence > segmentConfidenceFloor:
			timing = TimingSegmentLevel
		default:
			timing = TimingEstimated
			r.ApproxTimingLines++
			r.UnresolvedLines++
		}

		needsReview := score < lineReviewScore || timing == TimingEstimated
		if needsReview {
			r.LinesNeedingReview++
		}

		la := LineAlignment{
			LineIndex:       i,
			LyricsText:      lyricsText,
			ASRText:         asrText,
			MatchScore:      score,
			TimingSource:    timing,
			Start:           seg.Start,
			End:             seg.End,
			WordCountLyrics: len(strings.Fields(lyricsText)),
			WordCountASR:    len(strings.Fields(asrText)),
			NeedsReview:     needsReview,
			DiffWords:       diffs,
		}
		r.Lines = append(r.Lines, la)

		scoreSum += score
		if score < r.MinMatchScore {
			r.MinMatchScore = score
		}
	}

	if len(r.Lines) > 0 {
		r.AvgMatchScore = scoreSum / float64(len(r.Lines))
	} else {
		r.MinMatchScore = 0
	}
	if len(alignedSegments) > 0 {
		r.TotalDuration = alignedSegments[len(alignedSegments)-1].End
	}

	logger.Info("alignment report",
		slog.Float64("avg_score", r.AvgMatchScore),
		slog.Int("review", r.LinesNeedingReview),
		slog.Int("total", r.TotalLines),
		slog.Int("unresolved", r.UnresolvedLines))

	return r
}

// textInRange concatenates raw ASR text overlapping [start−0.5, end+0.5],
// at word granularity (0.1 s tolerance) when word timing exists.
func textInRange(segs []segment.Segment, start, end float64) string {
	var texts []string
	for _, seg := range segs {
		if seg.End <= start-segmentOverlapPad || seg.Start >= end+segmentOverlapPad {
			continue
		}
		if len(seg.Words) > 0 {
			for _, w := range seg.Words {
				if w.End > start-wordOverlapPad && w.Start < end+wordOverlapPad {
					texts = append(texts, w.Word)
				}
			}
			continue
		}
		texts = append(texts, seg.Text)
	}
	return strings.Join(texts, " ")
}
