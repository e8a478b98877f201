package vad

import (
	"log/slog"
	"math"

	"github.com/mhergert/karalign/pkg/segment"
)

// largeGapThreshold is the post-remap gap (seconds) beyond which a warning
// is logged: such gaps usually mean the VAD over-trimmed the audio.
const largeGapThreshold = 30.0

// TimelineChunk maps one contiguous interval of the VAD-trimmed timeline
// back to its position in the original recording. A timestamp t on the
// trimmed timeline with VADStartMS ≤ t < VADEndMS corresponds to
// t + (OriginalStartMS − VADStartMS) on the original timeline.
type TimelineChunk struct {
	VADStartMS      int
	VADEndMS        int
	OriginalStartMS int
}

func (c TimelineChunk) offsetMS() int {
	return c.OriginalStartMS - c.VADStartMS
}

// Timeline is the full trimmed→original mapping. Chunks are contiguous on
// the VAD side by construction: chunk i starts exactly where chunk i−1 ends.
type Timeline struct {
	chunks []TimelineChunk
	log    *slog.Logger
}

// NewTimeline builds the mapping for speech segments that were padded by
// padMS on both sides and concatenated. Segments are first merged with
// gap = 2×padMS — the same merge the audio trimmer applies — and padded
// windows that would overlap their predecessor are clamped forward.
func NewTimeline(segs []SpeechSegment, padMS int, logger *slog.Logger) Timeline {
	if logger == nil {
		logger = slog.Default()
	}

	merged := MergeClose(segs, padMS*2)

	var chunks []TimelineChunk
	offset := 0
	prevEnd := -1
	for _, seg := range merged {
		paddedStart := seg.StartMS - padMS
		if paddedStart < 0 {
			paddedStart = 0
		}
		paddedEnd := seg.EndMS + padMS
		if prevEnd >= 0 && paddedStart < prevEnd {
			paddedStart = prevEnd
		}
		if paddedStart >= paddedEnd {
			continue
		}
		duration := paddedEnd - paddedStart
		chunks = append(chunks, TimelineChunk{
			VADStartMS:      offset,
			VADEndMS:        offset + duration,
			OriginalStartMS: paddedStart,
		})
		offset += duration
		prevEnd = paddedEnd
	}

	return Timeline{chunks: chunks, log: logger}
}

// Chunks returns the mapping triples in VAD-timeline order.
func (t Timeline) Chunks() []TimelineChunk {
	return t.chunks
}

// Empty reports whether the timeline holds no chunks (remapping is then a
// no-op).
func (t Timeline) Empty() bool {
	return len(t.chunks) == 0
}

// chunkAt returns the chunk containing the trimmed-timeline instant ms.
func (t Timeline) chunkAt(ms int) (TimelineChunk, bool) {
	for _, c := range t.chunks {
		if c.VADStartMS <= ms && ms < c.VADEndMS {
			return c, true
		}
	}
	return TimelineChunk{}, false
}

// nearestChunk is the named fallback for timestamps outside every chunk: it
// picks the chunk whose VAD start is closest to ms.
func (t Timeline) nearestChunk(ms int) TimelineChunk {
	best := t.chunks[0]
	for _, c := range t.chunks[1:] {
		if abs(c.VADStartMS-ms) < abs(best.VADStartMS-ms) {
			best = c
		}
	}
	return best
}

// Remap converts segment timestamps from the trimmed timeline back to the
// original timeline.
//
// Each segment's start locates its chunk; when the end falls in a later
// chunk, that chunk's offset applies to the end independently — the trimmed
// audio was stitched from disjoint speech islands, so a segment may
// legitimately span what is a discontinuity in true time. Word timestamps
// are remapped per word with the same chunk lookup, not inherited from the
// segment. Segments fully outside all chunks are shifted by the nearest
// chunk's offset and logged, never dropped. A post-remap gap over 30 s
// between consecutive segments is logged as a possible over-trimming signal.
func (t Timeline) Remap(segs []segment.Segment) []segment.Segment {
	if t.Empty() {
		return segs
	}

	out := make([]segment.Segment, 0, len(segs))
	for _, seg := range segs {
		startMS := toMS(seg.Start)
		endMS := toMS(seg.End)

		chunk, ok := t.chunkAt(startMS)
		if !ok {
			nearest := t.nearestChunk(startMS)
			shifted := seg.Clone()
			shifted.Start = toSec(startMS + nearest.offsetMS())
			shifted.End = toSec(endMS + nearest.offsetMS())
			for i := range shifted.Words {
				shifted.Words[i].Start += float64(nearest.offsetMS()) / 1000
				shifted.Words[i].End += float64(nearest.offsetMS()) / 1000
			}
			out = append(out, shifted)
			t.log.Warn("vad remap: segment outside all chunks, used nearest",
				slog.Float64("start", seg.Start))
			continue
		}

		offset := chunk.offsetMS()
		mapped := seg.Clone()
		mapped.Start = toSec(startMS + offset)

		endOffset := offset
		if endMS > chunk.VADEndMS {
			if endChunk, ok := t.chunkAt(endMS); ok {
				endOffset = endChunk.offsetMS()
			}
		}
		mapped.End = toSec(endMS + endOffset)

		for i, w := range mapped.Words {
			wStartMS := toMS(w.Start)
			wEndMS := toMS(w.End)
			wOffset := offset
			if c, ok := t.chunkAt(wStartMS); ok {
				wOffset = c.offsetMS()
			}
			wEndOffset := wOffset
			if c, ok := t.chunkAt(wEndMS); ok {
				wEndOffset = c.offsetMS()
			}
			mapped.Words[i].Start = toSec(wStartMS + wOffset)
			mapped.Words[i].End = toSec(wEndMS + wEndOffset)
		}

		out = append(out, mapped)
	}

	if len(out) >= 2 {
		maxGap := 0.0
		for i := 1; i < len(out); i++ {
			if gap := out[i].Start - out[i-1].End; gap > maxGap {
				maxGap = gap
			}
		}
		if maxGap > largeGapThreshold {
			t.log.Warn("vad remap: large gap between remapped segments, possible over-trimming",
				slog.Float64("max_gap_seconds", maxGap))
		}
	}

	return out
}

func toMS(sec float64) int {
	return int(math.Round(sec * 1000))
}

func toSec(ms int) float64 {
	return float64(ms) / 1000
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
