package align

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mhergert/karalign/internal/textnorm"
)

// DiffWords computes a word-level diff between a lyrics line and the matched
// ASR text. Words present only in the lyrics appear as "-word", words present
// only in the ASR output as "+word"; replaced runs emit their deletions
// before their insertions. Both texts are normalized before diffing.
//
// The diff runs in word mode: each normalized word is encoded as one rune so
// diffmatchpatch never splits inside a word.
func DiffWords(lyricsText, asrText string) []string {
	aWords := textnorm.Tokenize(lyricsText)
	bWords := textnorm.Tokenize(asrText)
	if len(aWords) == 0 && len(bWords) == 0 {
		return nil
	}

	dmp := diffmatchpatch.New()
	a := wordsToLineText(aWords)
	b := wordsToLineText(bWords)
	ca, cb, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)

	var out []string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, w := range splitLineWords(d.Text) {
				out = append(out, "-"+w)
			}
		case diffmatchpatch.DiffInsert:
			for _, w := range splitLineWords(d.Text) {
				out = append(out, "+"+w)
			}
		}
	}
	return out
}

// wordsToLineText encodes one word per line so DiffLinesToChars treats each
// word as an atomic token.
func wordsToLineText(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}

func splitLineWords(text string) []string {
	var words []string
	for _, w := range strings.Split(text, "\n") {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
