package repair_test

import (
	"strings"
	"testing"

	"github.com/mhergert/karalign/internal/repair"
	"github.com/mhergert/karalign/pkg/segment"
)

func TestFixCPS_SplitsFastSegment(t *testing.T) {
	t.Parallel()

	// 60 chars in 2 s is over the limit; the comma is the first split point.
	segs := []segment.Segment{{
		Start: 0, End: 2,
		Text: "Ich betrat die Bank mit nem Koffer, voller Tricks und Ideen",
	}}

	fixed, res := repair.FixCPS(segs, 22.0)
	if res.SegmentsSplit != 1 {
		t.Fatalf("SegmentsSplit = %d, want 1", res.SegmentsSplit)
	}
	if len(fixed) < 2 {
		t.Fatalf("got %d segments, want >= 2", len(fixed))
	}
	if res.FixedCount < res.OriginalCount {
		t.Errorf("FixedCount = %d < OriginalCount = %d; splitting must never lose segments",
			res.FixedCount, res.OriginalCount)
	}
	if res.MaxCPSAfter > res.MaxCPSBefore {
		t.Errorf("MaxCPSAfter = %f > MaxCPSBefore = %f", res.MaxCPSAfter, res.MaxCPSBefore)
	}

	// Text is preserved across the splits, modulo the collapsed break spaces.
	var parts []string
	for _, s := range fixed {
		parts = append(parts, s.Text)
	}
	joined := strings.Join(parts, " ")
	if !strings.Contains(joined, "Koffer") || !strings.Contains(joined, "Tricks") {
		t.Errorf("split texts lost content: %q", joined)
	}
}

func TestFixCPS_ExtendsUnsplittable(t *testing.T) {
	t.Parallel()

	// One long word: no punctuation, no conjunction, no space. The text may
	// not be altered, so the segment's end has to stretch instead.
	segs := []segment.Segment{{Start: 10, End: 10.2, Text: "Donaudampfschifffahrt"}}

	fixed, res := repair.FixCPS(segs, 20.0)
	if res.SegmentsExtended != 1 {
		t.Fatalf("SegmentsExtended = %d, want 1", res.SegmentsExtended)
	}
	if len(fixed) != 1 {
		t.Fatalf("got %d segments, want 1", len(fixed))
	}
	if fixed[0].Text != "Donaudampfschifffahrt" {
		t.Errorf("text modified: %q", fixed[0].Text)
	}
	wantEnd := 10 + float64(len("Donaudampfschifffahrt"))/20.0
	if diff := fixed[0].End - wantEnd; diff > 0.001 || diff < -0.001 {
		t.Errorf("End = %f, want %f", fixed[0].End, wantEnd)
	}
	if fixed[0].CPS() > 20.0+0.01 {
		t.Errorf("CPS after extension = %f, want <= 20", fixed[0].CPS())
	}
}

func TestFixCPS_ShortFastHalfExtended(t *testing.T) {
	t.Parallel()

	// The comma split leaves a two-word half that is still too fast. It
	// cannot be split further, so its end has to stretch to the limit
	// instead of shipping a half faster than the input.
	segs := []segment.Segment{{
		Start: 0, End: 2,
		Text: "Eine sehr lange erste Haelfte hier, zu schnell",
	}}

	fixed, res := repair.FixCPS(segs, 22.0)
	if res.SegmentsSplit != 1 {
		t.Fatalf("SegmentsSplit = %d, want 1 (res %+v)", res.SegmentsSplit, res)
	}
	for i, s := range fixed {
		if s.CPS() > 22.0+0.1 {
			t.Errorf("segment %d %q CPS = %f after fix, want <= 22", i, s.Text, s.CPS())
		}
	}
	if res.MaxCPSAfter > res.MaxCPSBefore {
		t.Errorf("MaxCPSAfter = %f > MaxCPSBefore = %f", res.MaxCPSAfter, res.MaxCPSBefore)
	}
}

func TestFixCPS_ZeroDurationAlwaysOverLimit(t *testing.T) {
	t.Parallel()

	segs := []segment.Segment{{Start: 5, End: 5, Text: "gleich null"}}
	_, res := repair.FixCPS(segs, 22.0)
	if res.MaxCPSBefore != 999.0 {
		t.Errorf("MaxCPSBefore = %f, want 999 for zero-duration segment", res.MaxCPSBefore)
	}
	if res.SegmentsSplit+res.SegmentsExtended == 0 {
		t.Error("zero-duration segment was silently ignored")
	}
}

func TestFixCPS_CompliantSegmentsUntouched(t *testing.T) {
	t.Parallel()

	segs := []segment.Segment{
		{Start: 0, End: 2, Text: "Zeile eins"},
		{Start: 2, End: 4, Text: "Zeile zwei"},
	}
	fixed, res := repair.FixCPS(segs, 22.0)
	if res.SegmentsSplit != 0 || res.SegmentsExtended != 0 {
		t.Fatalf("unexpected fixes: %+v", res)
	}
	if len(fixed) != 2 || fixed[0].Text != "Zeile eins" || fixed[1].Text != "Zeile zwei" {
		t.Errorf("segments altered: %+v", fixed)
	}
}

func TestFixCPS_WordBoundaryRefinement(t *testing.T) {
	t.Parallel()

	words := []segment.Word{
		{Word: "viel", Start: 0, End: 0.3},
		{Word: "zu", Start: 0.3, End: 0.4},
		{Word: "schnell,", Start: 0.4, End: 0.6},
		{Word: "gesungen", Start: 0.6, End: 0.8},
		{Word: "heute", Start: 0.8, End: 1.0},
	}
	segs := []segment.Segment{{
		Start: 0, End: 1,
		Text:              "viel zu schnell, gesungen heute",
		Words:             words,
		HasWordTimestamps: true,
	}}

	fixed, res := repair.FixCPS(segs, 10.0)
	if res.SegmentsSplit != 1 {
		t.Fatalf("SegmentsSplit = %d, want 1 (res %+v)", res.SegmentsSplit, res)
	}
	// The first half must end on one of the source word boundaries.
	boundaries := map[float64]bool{0.3: true, 0.4: true, 0.6: true, 0.8: true, 1.0: true}
	if !boundaries[fixed[0].End] {
		t.Errorf("first half End = %f, want a word boundary", fixed[0].End)
	}
}

func TestFixCPS_Empty(t *testing.T) {
	t.Parallel()

	fixed, res := repair.FixCPS(nil, 22.0)
	if len(fixed) != 0 || res.OriginalCount != 0 {
		t.Errorf("FixCPS(nil) = %v, %+v", fixed, res)
	}
}
