package report

import (
	"encoding/json"
	"math"
)

// Wire shapes for the JSON artifacts consumed by external renderers and
// exporters. Scores round to 3 decimals, durations to 2, matching what the
// review tooling expects.

type lineJSON struct {
	Index       int          `json:"index"`
	Lyrics      string       `json:"lyrics"`
	ASR         string       `json:"asr"`
	Score       float64      `json:"score"`
	Timing      TimingSource `json:"timing"`
	Start       float64      `json:"start"`
	End         float64      `json:"end"`
	NeedsReview bool         `json:"needs_review"`
	Diffs       []string     `json:"diffs"`
}

type reportJSON struct {
	TotalLines         int        `json:"total_lines"`
	MatchedLines       int        `json:"matched_lines"`
	AvgMatchScore      float64    `json:"avg_match_score"`
	MinMatchScore      float64    `json:"min_match_score"`
	LinesNeedingReview int        `json:"lines_needing_review"`
	UnresolvedLines    int        `json:"unresolved_lines"`
	ApproxTimingLines  int        `json:"approx_timing_lines"`
	WordLevelLines     int        `json:"word_level_lines"`
	TotalDuration      float64    `json:"total_duration"`
	NeedsReview        bool       `json:"needs_review"`
	Lines              []lineJSON `json:"lines"`
}

// MarshalJSON renders the full alignment report artifact.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		TotalLines:         r.TotalLines,
		MatchedLines:       r.MatchedLines,
		AvgMatchScore:      round(r.AvgMatchScore, 3),
		MinMatchScore:      round(r.MinMatchScore, 3),
		LinesNeedingReview: r.LinesNeedingReview,
		UnresolvedLines:    r.UnresolvedLines,
		ApproxTimingLines:  r.ApproxTimingLines,
		WordLevelLines:     r.WordLevelLines,
		TotalDuration:      round(r.TotalDuration, 2),
		NeedsReview:        r.NeedsReview(),
		Lines:              make([]lineJSON, 0, len(r.Lines)),
	}
	for _, la := range r.Lines {
		out.Lines = append(out.Lines, lineJSON{
			Index:       la.LineIndex,
			Lyrics:      la.LyricsText,
			ASR:         la.ASRText,
			Score:       round(la.MatchScore, 3),
			Timing:      la.TimingSource,
			Start:       round(la.Start, 3),
			End:         round(la.End, 3),
			NeedsReview: la.NeedsReview,
			Diffs:       emptyIfNil(la.DiffWords),
		})
	}
	return json.Marshal(out)
}

type diffLineJSON struct {
	Index  int      `json:"index"`
	Lyrics string   `json:"lyrics"`
	ASR    string   `json:"asr"`
	Score  float64  `json:"score"`
	Diffs  []string `json:"diffs"`
}

type diffReportJSON struct {
	TotalDiffs int            `json:"total_diffs"`
	Lines      []diffLineJSON `json:"lines"`
}

// DiffReportJSON renders the diff-only artifact: just the lines whose diff
// list is non-empty or whose score falls below the near-perfect ceiling.
func (r *Report) DiffReportJSON() ([]byte, error) {
	out := diffReportJSON{Lines: []diffLineJSON{}}
	for _, la := range r.Lines {
		if len(la.DiffWords) == 0 && la.MatchScore >= diffScoreCeiling {
			continue
		}
		out.Lines = append(out.Lines, diffLineJSON{
			Index:  la.LineIndex,
			Lyrics: la.LyricsText,
			ASR:    la.ASRText,
			Score:  round(la.MatchScore, 3),
			Diffs:  emptyIfNil(la.DiffWords),
		})
	}
	out.TotalDiffs = len(out.Lines)
	return json.MarshalIndent(out, "", "  ")
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
