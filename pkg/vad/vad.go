// Package vad reconciles timestamps between a VAD-trimmed (silence-removed)
// audio timeline and the original recording timeline.
//
// An external voice-activity detector reports speech intervals; the audio
// preprocessor concatenates those intervals (with padding) into a shorter
// file that the ASR backend transcribes. The resulting ASR timestamps live on
// the trimmed timeline and must be mapped back before they can drive karaoke
// rendering. [Timeline] performs that mapping.
//
// The merge pass used to build the trimmed audio and the merge pass used to
// build the timeline must be identical — [NewTimeline] re-merges with
// gap = 2×pad for exactly that reason. Diverging merge parameters silently
// desynchronize every remapped timestamp.
package vad

import "sort"

// SpeechSegment is one detected speech interval [StartMS, EndMS) in integer
// milliseconds on the original timeline.
type SpeechSegment struct {
	StartMS int `json:"start_ms"`
	EndMS   int `json:"end_ms"`
}

// MergeClose merges speech segments whose gap is at most gapMS apart by
// extending the end of the running merged segment. The input is not
// modified; the result is sorted by start and non-overlapping.
func MergeClose(segs []SpeechSegment, gapMS int) []SpeechSegment {
	if len(segs) == 0 {
		return nil
	}

	sorted := make([]SpeechSegment, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartMS < sorted[j].StartMS
	})

	merged := []SpeechSegment{sorted[0]}
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		if seg.StartMS-last.EndMS <= gapMS {
			if seg.EndMS > last.EndMS {
				last.EndMS = seg.EndMS
			}
		} else {
			merged = append(merged, seg)
		}
	}
	return merged
}
