package report_test

import (
	"encoding/json"
	"testing"

	"github.com/mhergert/karalign/internal/report"
	"github.com/mhergert/karalign/pkg/segment"
)

func TestGenerate_EndToEnd(t *testing.T) {
	t.Parallel()

	targetLines := []string{"Zeile eins", "Zeile zwei", "Zeile drei"}
	aligned := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9},
		{Start: 2, End: 4, Text: "Zeile zwei", Confidence: 0.9},
		{Start: 4, End: 6, Text: "Zeile drei", Confidence: 0.9},
	}
	original := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins test", Confidence: 0.9},
		{Start: 2, End: 6, Text: "Zeile zwei Zeile drei", Confidence: 0.9},
	}

	r := report.Generate(targetLines, aligned, original, nil)

	if r.TotalLines != 3 {
		t.Errorf("TotalLines = %d, want 3", r.TotalLines)
	}
	if r.MatchedLines != 3 {
		t.Errorf("MatchedLines = %d, want 3", r.MatchedLines)
	}
	if r.AvgMatchScore <= 0 {
		t.Errorf("AvgMatchScore = %f, want > 0", r.AvgMatchScore)
	}
	if r.TotalDuration != 6 {
		t.Errorf("TotalDuration = %f, want 6", r.TotalDuration)
	}
	if len(r.Lines) != 3 {
		t.Fatalf("got %d line alignments, want 3", len(r.Lines))
	}
	for i, la := range r.Lines {
		if la.LineIndex != i {
			t.Errorf("line %d: LineIndex = %d", i, la.LineIndex)
		}
		if la.LyricsText != targetLines[i] {
			t.Errorf("line %d: LyricsText = %q, want %q", i, la.LyricsText, targetLines[i])
		}
		if la.MatchScore < 0.5 {
			t.Errorf("line %d: MatchScore = %f (asr %q), want >= 0.5", i, la.MatchScore, la.ASRText)
		}
	}
}

func TestGenerate_TimingClassification(t *testing.T) {
	t.Parallel()

	targetLines := []string{"eins", "zwei", "drei"}
	aligned := []segment.Segment{
		{Start: 0, End: 1, Text: "eins", Confidence: 0.9,
			Words:             []segment.Word{{Word: "eins", Start: 0, End: 1}},
			HasWordTimestamps: true},
		{Start: 1, End: 2, Text: "zwei", Confidence: 0.9},
		{Start: 2, End: 3, Text: "drei", Confidence: 0.2},
	}
	original := []segment.Segment{
		{Start: 0, End: 3, Text: "eins zwei drei", Confidence: 0.9},
	}

	r := report.Generate(targetLines, aligned, original, nil)

	if r.Lines[0].TimingSource != report.TimingWordLevel {
		t.Errorf("line 0 timing = %s, want word_level", r.Lines[0].TimingSource)
	}
	if r.Lines[1].TimingSource != report.TimingSegmentLevel {
		t.Errorf("line 1 timing = %s, want segment_level", r.Lines[1].TimingSource)
	}
	if r.Lines[2].TimingSource != report.TimingEstimated {
		t.Errorf("line 2 timing = %s, want estimated", r.Lines[2].TimingSource)
	}
	if !r.Lines[2].NeedsReview {
		t.Error("estimated line not flagged for review")
	}
	if r.WordLevelLines != 1 || r.UnresolvedLines != 1 || r.ApproxTimingLines != 1 {
		t.Errorf("counts = word %d, unresolved %d, approx %d; want 1, 1, 1",
			r.WordLevelLines, r.UnresolvedLines, r.ApproxTimingLines)
	}
	if !r.NeedsReview() {
		t.Error("report with an unresolved line must need review")
	}
}

func TestGenerate_ReportReviewThresholds(t *testing.T) {
	t.Parallel()

	// High-confidence perfect matches: nothing to review.
	targets := []string{"Zeile eins"}
	aligned := []segment.Segment{{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9}}
	original := []segment.Segment{{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9}}

	r := report.Generate(targets, aligned, original, nil)
	if r.NeedsReview() {
		t.Errorf("clean report flagged for review: %+v", r)
	}
	if r.AvgMatchScore < 0.99 {
		t.Errorf("AvgMatchScore = %f, want ~1.0", r.AvgMatchScore)
	}
}

func TestGenerate_MoreSegmentsThanLyrics(t *testing.T) {
	t.Parallel()

	// Clamped-zip policy: surplus segments fall back to their own text.
	targets := []string{"Zeile eins"}
	aligned := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9},
		{Start: 2, End: 4, Text: "Zeile zwei", Confidence: 0.9},
	}
	original := aligned

	r := report.Generate(targets, aligned, original, nil)
	if len(r.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(r.Lines))
	}
	if r.Lines[1].LyricsText != "Zeile zwei" {
		t.Errorf("surplus line target = %q, want the segment's own text", r.Lines[1].LyricsText)
	}
	if r.TotalLines != 1 || r.MatchedLines != 2 {
		t.Errorf("TotalLines = %d, MatchedLines = %d; want 1, 2", r.TotalLines, r.MatchedLines)
	}
}

func TestGenerate_Empty(t *testing.T) {
	t.Parallel()

	r := report.Generate(nil, nil, nil, nil)
	if r.TotalLines != 0 || r.AvgMatchScore != 0 || r.MinMatchScore != 0 {
		t.Errorf("empty report = %+v", r)
	}
	if len(r.Lines) != 0 {
		t.Errorf("empty input produced lines: %v", r.Lines)
	}
}

func TestReport_JSONArtifact(t *testing.T) {
	t.Parallel()

	targets := []string{"Ich betrat die Bank mit"}
	aligned := []segment.Segment{{Start: 0, End: 2.3456, Text: "Ich betrat die Bank mit", Confidence: 0.9}}
	original := []segment.Segment{{Start: 0, End: 2.3456, Text: "ich betrat die bank mitte", Confidence: 0.9}}

	r := report.Generate(targets, aligned, original, nil)

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{
		"total_lines", "matched_lines", "avg_match_score", "min_match_score",
		"lines_needing_review", "unresolved_lines", "approx_timing_lines",
		"word_level_lines", "total_duration", "needs_review", "lines",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("artifact missing key %q", key)
		}
	}

	lines, ok := decoded["lines"].([]any)
	if !ok || len(lines) != 1 {
		t.Fatalf("lines = %v", decoded["lines"])
	}
	line := lines[0].(map[string]any)
	if line["end"] != 2.346 {
		t.Errorf("end = %v, want 2.346 (3-decimal rounding)", line["end"])
	}
}

func TestReport_DiffReportFiltersCleanLines(t *testing.T) {
	t.Parallel()

	targets := []string{"Zeile eins", "Zeile zwei"}
	aligned := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9},
		{Start: 2, End: 4, Text: "Zeile zwei", Confidence: 0.9},
	}
	original := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins", Confidence: 0.9},
		{Start: 2, End: 4, Text: "ganz anderer Text hier", Confidence: 0.9},
	}

	r := report.Generate(targets, aligned, original, nil)

	raw, err := r.DiffReportJSON()
	if err != nil {
		t.Fatalf("DiffReportJSON: %v", err)
	}
	var decoded struct {
		TotalDiffs int `json:"total_diffs"`
		Lines      []struct {
			Index  int    `json:"index"`
			Lyrics string `json:"lyrics"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.TotalDiffs != 1 {
		t.Fatalf("TotalDiffs = %d, want 1 (only the mismatched line)", decoded.TotalDiffs)
	}
	if decoded.Lines[0].Index != 1 || decoded.Lines[0].Lyrics != "Zeile zwei" {
		t.Errorf("diff line = %+v", decoded.Lines[0])
	}
}
