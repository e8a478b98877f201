package segment_test

import (
	"testing"

	"github.com/mhergert/karalign/pkg/segment"
)

func TestCPS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seg  segment.Segment
		want float64
	}{
		{
			name: "ten runes over two seconds",
			seg:  segment.Segment{Start: 0, End: 2, Text: "abcdefghij"},
			want: 5,
		},
		{
			name: "umlauts count as one character",
			seg:  segment.Segment{Start: 0, End: 1, Text: "äöü"},
			want: 3,
		},
		{
			name: "zero duration trips the limit",
			seg:  segment.Segment{Start: 1, End: 1, Text: "x"},
			want: 999,
		},
		{
			name: "negative duration trips the limit",
			seg:  segment.Segment{Start: 2, End: 1, Text: "x"},
			want: 999,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.seg.CPS(); got != tc.want {
				t.Errorf("CPS() = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestClone_IndependentWords(t *testing.T) {
	t.Parallel()

	orig := segment.Segment{
		Start: 0,
		End:   2,
		Text:  "zwei Worte",
		Words: []segment.Word{
			{Word: "zwei", Start: 0, End: 1},
			{Word: "Worte", Start: 1, End: 2},
		},
		HasWordTimestamps: true,
	}
	cp := orig.Clone()
	cp.Words[0].End = 0.5

	if orig.Words[0].End != 1 {
		t.Errorf("clone shares word storage with original: %+v", orig.Words[0])
	}
}

func TestCloneAll(t *testing.T) {
	t.Parallel()

	if got := segment.CloneAll(nil); got != nil {
		t.Errorf("CloneAll(nil) = %v, want nil", got)
	}

	segs := []segment.Segment{
		{Start: 0, End: 1, Text: "a", Words: []segment.Word{{Word: "a", Start: 0, End: 1}}},
	}
	cp := segment.CloneAll(segs)
	cp[0].Words[0].Word = "b"
	if segs[0].Words[0].Word != "a" {
		t.Error("CloneAll shares word storage with original")
	}
}

func TestSortByStart_Stable(t *testing.T) {
	t.Parallel()

	segs := []segment.Segment{
		{Start: 2, End: 3, Text: "c"},
		{Start: 0, End: 1, Text: "a"},
		{Start: 0, End: 2, Text: "b"},
	}
	segment.SortByStart(segs)

	got := segs[0].Text + segs[1].Text + segs[2].Text
	if got != "abc" {
		t.Errorf("sorted order = %q, want %q", got, "abc")
	}
}

func TestTotalDuration(t *testing.T) {
	t.Parallel()

	if got := segment.TotalDuration(nil); got != 0 {
		t.Errorf("TotalDuration(nil) = %f, want 0", got)
	}
	segs := []segment.Segment{
		{Start: 0, End: 2},
		{Start: 2, End: 7.5},
	}
	if got := segment.TotalDuration(segs); got != 7.5 {
		t.Errorf("TotalDuration = %f, want 7.5", got)
	}
}
