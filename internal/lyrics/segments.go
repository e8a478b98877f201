package lyrics

import "github.com/mhergert/karalign/pkg/segment"

// defaultLineDuration caps the last LRC line when the caller cannot supply
// the true audio duration.
const defaultLineDuration = 4.0

// SegmentsFromLRC builds transcript segments from an LRC-timed parse: each
// timed line spans from its own timestamp to the next line's timestamp, the
// last one to totalDuration (or a fixed fallback span when totalDuration is
// unknown or too small). LRC timings are authoritative, so the segments carry
// full confidence and no word-level timing.
//
// Returns nil when the parse carries no timings.
func SegmentsFromLRC(p *Parsed, totalDuration float64) []segment.Segment {
	timings := p.LRCTimings()
	if len(timings) == 0 {
		return nil
	}

	out := make([]segment.Segment, 0, len(timings))
	for i, tm := range timings {
		end := tm.Seconds + defaultLineDuration
		if i+1 < len(timings) {
			end = timings[i+1].Seconds
		} else if totalDuration > tm.Seconds {
			end = totalDuration
		}
		if end <= tm.Seconds {
			end = tm.Seconds + defaultLineDuration
		}
		out = append(out, segment.Segment{
			Start:      tm.Seconds,
			End:        end,
			Text:       tm.Text,
			Confidence: 1.0,
		})
	}
	return out
}
