package align

import (
	"strings"

	"github.com/mhergert/karalign/internal/textnorm"
	"github.com/mhergert/karalign/pkg/segment"
)

const (
	// advanceThreshold is the minimum window score required before the
	// cursor may move past the matched window. Weaker matches still return
	// their best-effort text but leave the cursor in place, so one garbled
	// line cannot desynchronize every line after it.
	advanceThreshold = 0.3

	// windowSlack bounds how far past the cursor the search may look:
	// cursor + 4×len(target) + windowSlack word positions.
	windowSlack = 30
)

// Candidate is the result of one [Sequencer.Match] call. It carries the
// best-matching window text, its score, and the cursor position the sequencer
// would move to if the candidate is committed.
type Candidate struct {
	// Text is the best-matching ASR window, joined by single spaces.
	// Empty when the word stream is exhausted or the target has no tokens.
	Text string

	// Score is the similarity of Text against the normalized target line.
	Score float64

	next int
}

// Sequencer matches target lines against a flat normalized ASR word stream
// in order, advancing a cursor as lines are matched. One Sequencer serves
// exactly one alignment pass; it must not be shared across concurrent passes.
type Sequencer struct {
	words  []string
	cursor int
}

// NewSequencer builds a Sequencer over the given normalized words, typically
// produced by [FlattenWords].
func NewSequencer(words []string) *Sequencer {
	return &Sequencer{words: words}
}

// FlattenWords flattens segments into the normalized word stream used for
// sequential matching. Word-level entries are used when present; otherwise
// the segment text is tokenized.
func FlattenWords(segs []segment.Segment) []string {
	var words []string
	for _, s := range segs {
		if len(s.Words) > 0 {
			for _, w := range s.Words {
				if n := textnorm.Normalize(w.Word); n != "" {
					words = append(words, n)
				}
			}
			continue
		}
		words = append(words, textnorm.Tokenize(s.Text)...)
	}
	return words
}

// Cursor returns the current position in the word stream.
func (s *Sequencer) Cursor() int {
	return s.cursor
}

// Match scans forward from the cursor for the contiguous window that best
// matches the target line. Window sizes range from max(1, N-2) to N+3 words
// (N = target token count) and window starts range over the next 4×N+30
// positions. Ties keep the earliest window found.
//
// Match does not move the cursor; call [Sequencer.Commit] with the returned
// candidate once the caller decides to use it. A candidate scoring below the
// advance threshold commits to the unchanged cursor position.
func (s *Sequencer) Match(target string) Candidate {
	targetNorm := textnorm.Normalize(target)
	targetTokens := strings.Fields(targetNorm)
	if len(targetTokens) == 0 || len(s.words) == 0 {
		return Candidate{next: s.cursor}
	}

	n := len(targetTokens)
	best := Candidate{next: s.cursor}

	searchEnd := s.cursor + n*4 + windowSlack
	if searchEnd > len(s.words) {
		searchEnd = len(s.words)
	}

	minSize := n - 2
	if minSize < 1 {
		minSize = 1
	}

	for start := s.cursor; start < searchEnd; start++ {
		for size := minSize; size <= n+3; size++ {
			end := start + size
			if end > len(s.words) {
				break
			}
			candidate := strings.Join(s.words[start:end], " ")
			score := Ratio(targetNorm, candidate)
			if score > best.Score {
				best = Candidate{Text: candidate, Score: score, next: end}
			}
		}
	}

	if best.Score < advanceThreshold {
		best.next = s.cursor
	}
	return best
}

// Commit advances the cursor to the candidate's end position. Committing a
// below-threshold candidate is a no-op by construction.
func (s *Sequencer) Commit(c Candidate) {
	s.cursor = c.next
}
