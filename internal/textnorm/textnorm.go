// Package textnorm provides the shared text normalization used by the
// matching, rhyme, and statistics components.
//
// Normalization is intentionally aggressive: comparisons between lyrics text
// and ASR output must ignore casing, punctuation, and Unicode encoding
// differences (e.g. precomposed vs decomposed umlauts) while preserving the
// actual letters. The original, untouched text always travels separately —
// normalization is only ever applied to comparison copies.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nonWord matches every rune that is neither a word character (letter, digit,
// underscore) nor whitespace. These are stripped before comparison.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Normalize lowercases s, strips punctuation, NFC-normalizes the result, and
// collapses all whitespace runs to single spaces.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize returns the normalized word tokens of s. An all-punctuation or
// empty input yields a nil slice.
func Tokenize(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}
