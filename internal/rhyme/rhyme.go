// Package rhyme detects end-rhymes, internal rhymes, and multisyllabic
// rhyme patterns in lyrics lines and derives a rhyme-scheme labeling.
//
// Scoring is phonetic-approximate and tuned for German (with English
// fallbacks): orthography is folded through a digraph substitution table,
// then words are compared on their rhyme tails — the suffix from the last
// (or, for multisyllabic words, second-to-last) vowel cluster onward.
package rhyme

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/mhergert/karalign/internal/align"
)

// identicalWordScore: the same word twice is repetition, not rhyme.
const identicalWordScore = 0.3

var (
	vowelGroups = regexp.MustCompile(`(?i)[aeiouyäöü]+`)
	wordRunes   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	nonLetter   = regexp.MustCompile(`[^a-zäöüß]`)
)

// phoneticFolds maps German/English digraphs to a rough phonetic spelling.
// Order matters: earlier entries consume their letters before later ones
// can see them (e.g. "ie" runs before "ieh" ever applies).
var phoneticFolds = []struct{ from, to string }{
	{"ph", "f"}, {"ck", "k"}, {"th", "t"}, {"dt", "t"}, {"tz", "z"},
	{"ss", "s"}, {"ß", "s"}, {"ae", "ä"}, {"oe", "ö"}, {"ue", "ü"},
	{"ei", "ai"}, {"ey", "ai"}, {"ay", "ai"},
	{"eu", "oi"}, {"äu", "oi"},
	{"ie", "ii"}, {"ih", "ii"}, {"ieh", "ii"},
	{"ah", "aa"}, {"eh", "ee"}, {"oh", "oo"}, {"uh", "uu"},
}

// normalizePhonetic folds a word into its rough phonetic form.
func normalizePhonetic(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	w = norm.NFC.String(w)
	w = nonLetter.ReplaceAllString(w, "")
	for _, f := range phoneticFolds {
		w = strings.ReplaceAll(w, f.from, f.to)
	}
	return w
}

// rhymeTail extracts the rhyming suffix: from the second-to-last vowel
// cluster when the word has two or more, otherwise from the last one.
func rhymeTail(word string, minChars int) string {
	p := normalizePhonetic(word)
	if utf8.RuneCountInString(p) < minChars {
		return p
	}

	vowels := vowelGroups.FindAllStringIndex(p, -1)
	if len(vowels) == 0 {
		runes := []rune(p)
		return string(runes[len(runes)-minChars:])
	}
	if len(vowels) >= 2 {
		return p[vowels[len(vowels)-2][0]:]
	}
	return p[vowels[len(vowels)-1][0]:]
}

// endWord extracts the last meaningful word of a line, skipping a short
// trailing particle when a longer word precedes it.
func endWord(line string) string {
	words := wordRunes.FindAllString(line, -1)
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if len(words) >= 2 && utf8.RuneCountInString(last) <= 3 {
		return words[len(words)-2]
	}
	return last
}

// Score rates how well two words rhyme, in [0, 1]. Identical words score
// only 0.3; an exact tail match scores 1.0; partial suffix agreement scores
// 0.9/0.7/0.4 for 3+/2/1 common trailing characters; otherwise a fuzzy tail
// similarity scaled by 0.6.
func Score(wordA, wordB string) float64 {
	if wordA == "" || wordB == "" {
		return 0.0
	}
	if normalizePhonetic(wordA) == normalizePhonetic(wordB) {
		return identicalWordScore
	}

	tailA := rhymeTail(wordA, 2)
	tailB := rhymeTail(wordB, 2)
	if tailA == "" || tailB == "" {
		return 0.0
	}
	if tailA == tailB {
		return 1.0
	}

	runesA := []rune(tailA)
	runesB := []rune(tailB)
	maxLen := len(runesA)
	if len(runesB) < maxLen {
		maxLen = len(runesB)
	}
	common := 0
	for i := 1; i <= maxLen; i++ {
		if runesA[len(runesA)-i] != runesB[len(runesB)-i] {
			break
		}
		common++
	}

	switch {
	case common >= 3:
		return 0.9
	case common >= 2:
		return 0.7
	case common >= 1:
		return 0.4
	}

	return align.Ratio(tailA, tailB) * 0.6
}
