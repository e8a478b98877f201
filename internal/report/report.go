// Package report scores how well aligned karaoke segments reproduce the
// authoritative lyrics and classifies each line's timing confidence.
//
// Two candidate ASR texts are computed per line — one by time-range overlap
// against the raw ASR segments, one by sequential window matching over the
// flattened ASR word stream — and the better-scoring one wins. The aggregate
// report drives the human-review workflow: the pipeline always produces a
// best-effort result and flags weak lines instead of failing.
package report

// TimingSource classifies where a line's resolved timing comes from.
type TimingSource string

const (
	// TimingWordLevel: the aligned segment carries word timestamps.
	TimingWordLevel TimingSource = "word_level"

	// TimingSegmentLevel: segment timing only, but confident.
	TimingSegmentLevel TimingSource = "segment_level"

	// TimingEstimated: low-confidence guesswork; always flagged for review.
	TimingEstimated TimingSource = "estimated"
)

// Review thresholds.
const (
	// lineReviewScore flags a single line for review.
	lineReviewScore = 0.6

	// diffScoreCeiling skips diff computation for near-perfect matches.
	diffScoreCeiling = 0.95

	// reportReviewAvgScore flags the whole report when the average match
	// score falls below it.
	reportReviewAvgScore = 0.75

	// reportReviewApproxShare flags the whole report when more than this
	// share of lines has approximate timing.
	reportReviewApproxShare = 0.3

	// segmentConfidenceFloor separates segment-level timing from estimates.
	segmentConfidenceFloor = 0.5
)

// LineAlignment is the per-target-line alignment result.
type LineAlignment struct {
	// LineIndex is the position within the aligned segment list.
	LineIndex int

	// LyricsText is the authoritative lyrics line (byte-exact).
	LyricsText string

	// ASRText is the matched ASR text for this line.
	ASRText string

	// MatchScore is the similarity of LyricsText and ASRText, in [0, 1].
	MatchScore float64

	// TimingSource classifies the resolved timing's provenance.
	TimingSource TimingSource

	// Start and End are the line's resolved interval in seconds.
	Start, End float64

	WordCountLyrics int
	WordCountASR    int

	// NeedsReview is set for weak matches and estimated timing.
	NeedsReview bool

	// DiffWords lists "-word"/"+word" tokens where lyrics and ASR diverge.
	// Empty for near-perfect matches.
	DiffWords []string
}

// Report aggregates all line alignments of one pass.
type Report struct {
	TotalLines         int
	MatchedLines       int
	AvgMatchScore      float64
	MinMatchScore      float64
	LinesNeedingReview int
	UnresolvedLines    int
	ApproxTimingLines  int
	WordLevelLines     int
	TotalDuration      float64
	Lines              []LineAlignment
}

// NeedsReview reports whether the alignment as a whole should be reviewed:
// weak average score, any unresolved line, or too many approximate timings.
func (r *Report) NeedsReview() bool {
	return r.AvgMatchScore < reportReviewAvgScore ||
		r.UnresolvedLines > 0 ||
		float64(r.ApproxTimingLines) > float64(r.TotalLines)*reportReviewApproxShare
}
