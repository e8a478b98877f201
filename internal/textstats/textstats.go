// Package textstats computes lexical statistics over lyrics lines: lexical
// diversity, syllable distribution, frequent words and bigrams, and a rough
// flow-consistency measure. Everything here is a pure function of the input
// lines, so callers can run it concurrently with alignment work.
package textstats

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strings"
)

// topWordCount bounds the frequent-word and bigram lists in the artifact.
const topWordCount = 10

// readingWordsPerSecond approximates a sung/spoken delivery pace.
const readingWordsPerSecond = 3.5

var (
	tokenPattern = regexp.MustCompile(`[\wäöüß']+`)
	vowelCluster = regexp.MustCompile(`[aeiouyäöü]+`)
)

// stopwords covers German and English function words excluded from the
// frequent-word ranking.
var stopwords = map[string]bool{
	"der": true, "die": true, "das": true, "und": true, "in": true,
	"zu": true, "den": true, "mit": true, "von": true, "auf": true,
	"ist": true, "im": true, "für": true, "ein": true, "eine": true,
	"nicht": true, "ich": true, "du": true, "es": true, "wir": true,
	"sie": true, "er": true, "so": true, "wie": true, "was": true,
	"dem": true, "an": true, "auch": true, "sich": true, "dass": true,
	"the": true, "and": true, "a": true, "to": true, "of": true,
	"i": true, "you": true, "it": true, "is": true, "my": true,
	"me": true, "we": true, "on": true, "that": true,
}

// WordCount pairs a token with its frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Stats is the full lexical profile of a block of lyrics lines.
type Stats struct {
	LineCount int `json:"line_count"`
	WordCount int `json:"word_count"`

	// UniqueWords counts distinct tokens.
	UniqueWords int `json:"unique_words"`

	// TypeTokenRatio is UniqueWords / WordCount, a diversity measure.
	TypeTokenRatio float64 `json:"type_token_ratio"`

	// HapaxRatio is the share of distinct words occurring exactly once.
	HapaxRatio float64 `json:"hapax_ratio"`

	TotalSyllables   int     `json:"total_syllables"`
	AvgSyllablesWord float64 `json:"avg_syllables_per_word"`
	AvgWordsLine     float64 `json:"avg_words_per_line"`

	// SyllableDistribution maps syllable count to word frequency.
	SyllableDistribution map[int]int `json:"syllable_distribution"`

	TopWords   []WordCount `json:"top_words"`
	TopBigrams []WordCount `json:"top_bigrams"`

	// FlowConsistency is 1 minus the coefficient of variation of per-line
	// syllable counts, floored at 0. Even lines flow; jagged ones do not.
	FlowConsistency float64 `json:"flow_consistency"`

	// ReadingTimeSec estimates delivery time at a sung pace.
	ReadingTimeSec float64 `json:"reading_time_sec"`
}

// Tokenize lowercases a line and extracts word tokens.
func Tokenize(line string) []string {
	return tokenPattern.FindAllString(strings.ToLower(line), -1)
}

// CountSyllables approximates the syllable count of a single word by its
// vowel clusters, with silent-e handling for English-style spellings.
func CountSyllables(word string) int {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return 0
	}
	count := len(vowelCluster.FindAllString(w, -1))
	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	if strings.HasSuffix(w, "le") && count == 0 {
		count = 1
	}
	if count < 1 {
		count = 1
	}
	return count
}

// Analyze computes the lexical profile of the given lines.
func Analyze(lines []string) Stats {
	s := Stats{
		LineCount:            len(lines),
		SyllableDistribution: map[int]int{},
		TopWords:             []WordCount{},
		TopBigrams:           []WordCount{},
	}

	freq := map[string]int{}
	bigrams := map[string]int{}
	lineSyllables := make([]float64, 0, len(lines))

	for _, line := range lines {
		tokens := Tokenize(line)
		s.WordCount += len(tokens)

		syl := 0
		for i, tok := range tokens {
			freq[tok]++
			n := CountSyllables(tok)
			syl += n
			s.SyllableDistribution[n]++
			if i > 0 {
				bigrams[tokens[i-1]+" "+tok]++
			}
		}
		s.TotalSyllables += syl
		lineSyllables = append(lineSyllables, float64(syl))
	}

	s.UniqueWords = len(freq)
	hapax := 0
	for _, n := range freq {
		if n == 1 {
			hapax++
		}
	}
	if s.WordCount > 0 {
		s.TypeTokenRatio = float64(s.UniqueWords) / float64(s.WordCount)
		s.HapaxRatio = float64(hapax) / float64(s.UniqueWords)
		s.AvgSyllablesWord = float64(s.TotalSyllables) / float64(s.WordCount)
	}
	if s.LineCount > 0 {
		s.AvgWordsLine = float64(s.WordCount) / float64(s.LineCount)
	}

	s.TopWords = topCounts(freq, func(w string) bool {
		return !stopwords[w] && len([]rune(w)) > 1
	})
	s.TopBigrams = topCounts(bigrams, func(string) bool { return true })

	s.FlowConsistency = flowConsistency(lineSyllables)
	s.ReadingTimeSec = float64(s.WordCount) / readingWordsPerSecond

	return s
}

// topCounts ranks a frequency map, highest count first, ties alphabetical.
func topCounts(freq map[string]int, keep func(string) bool) []WordCount {
	out := make([]WordCount, 0, len(freq))
	for w, n := range freq {
		if keep(w) {
			out = append(out, WordCount{Word: w, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > topWordCount {
		out = out[:topWordCount]
	}
	return out
}

// flowConsistency is 1 − CV of per-line syllable counts. No lines means no
// flow at all; a single line gives the neutral 0.5.
func flowConsistency(lineSyllables []float64) float64 {
	if len(lineSyllables) == 0 {
		return 0
	}
	if len(lineSyllables) < 2 {
		return 0.5
	}
	var sum float64
	for _, v := range lineSyllables {
		sum += v
	}
	mean := sum / float64(len(lineSyllables))
	if mean == 0 {
		return 0.5
	}
	var variance float64
	for _, v := range lineSyllables {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(lineSyllables))
	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		return 0
	}
	return 1 - cv
}

// MarshalJSON rounds the float fields to two decimals for artifacts.
func (s Stats) MarshalJSON() ([]byte, error) {
	type alias Stats
	a := alias(s)
	a.TypeTokenRatio = round2(a.TypeTokenRatio)
	a.HapaxRatio = round2(a.HapaxRatio)
	a.AvgSyllablesWord = round2(a.AvgSyllablesWord)
	a.AvgWordsLine = round2(a.AvgWordsLine)
	a.FlowConsistency = round2(a.FlowConsistency)
	a.ReadingTimeSec = round2(a.ReadingTimeSec)
	return json.Marshal(a)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
