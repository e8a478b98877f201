// Package align implements fuzzy matching between authoritative lyrics lines
// and noisy ASR output: a normalized edit-distance similarity score, a
// forward-advancing sequential window matcher, and a word-level diff.
//
// Every function degrades gracefully — no input produces an error or panic;
// weak matches surface as low scores that callers inspect.
package align

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/mhergert/karalign/internal/textnorm"
)

// Similarity scores how well lyrics text matches ASR text after
// normalization. The result is always in [0, 1]: identical strings (post
// normalization) score 1.0, one empty and one non-empty string score 0.0,
// and two empty strings score 1.0.
func Similarity(a, b string) float64 {
	return Ratio(textnorm.Normalize(a), textnorm.Normalize(b))
}

// Ratio is the raw edit-distance similarity of two already-normalized
// strings: 1 - Levenshtein(a, b) / max(len(a), len(b)), counted in runes.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	dist := matchr.Levenshtein(a, b)
	if dist >= maxLen {
		return 0.0
	}
	return 1.0 - float64(dist)/float64(maxLen)
}
