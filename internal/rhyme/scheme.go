package rhyme

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mhergert/karalign/internal/align"
)

const (
	// schemeWindow bounds how far back a line looks for a rhyme partner.
	schemeWindow = 8

	// schemeThreshold is the minimum Score for two lines to share a label.
	schemeThreshold = 0.6

	// multiTailMinChars is the tail length used for multisyllabic rhymes.
	multiTailMinChars = 4

	// multiSimilarity is the fuzzy tail similarity floor for multi rhymes.
	multiSimilarity = 0.7
)

// Pair records two lines judged to rhyme.
type Pair struct {
	LineA int     `json:"line_a"`
	LineB int     `json:"line_b"`
	WordA string  `json:"word_a"`
	WordB string  `json:"word_b"`
	Score float64 `json:"score"`
}

// InternalRhyme records a rhyme within a single line.
type InternalRhyme struct {
	Line  int     `json:"line"`
	WordA string  `json:"word_a"`
	WordB string  `json:"word_b"`
	Score float64 `json:"score"`
}

// Scheme is the full rhyme analysis of a block of lines.
type Scheme struct {
	// Labels holds one letter per line ("A", "B", ...); lines that rhyme
	// share a letter, non-rhyming lines get fresh ones.
	Labels []string `json:"labels"`

	// Pattern is the labels joined, e.g. "AABB".
	Pattern string `json:"pattern"`

	EndRhymes      []Pair          `json:"end_rhymes"`
	InternalRhymes []InternalRhyme `json:"internal_rhymes"`
	MultiRhymes    []Pair          `json:"multi_rhymes"`

	// Density is the share of lines participating in at least one end rhyme.
	Density float64 `json:"density"`
}

// Analyze derives the rhyme scheme of the given lyrics lines.
//
// Labeling is greedy and forward-propagating: each line compares its end
// word against the previous lines inside the window and adopts the label of
// the best partner above the threshold, otherwise it opens a new letter.
// EndRhymes and Density count every above-threshold pair in the window, not
// just the best one, so a line rhyming with several predecessors is recorded
// against each of them.
func Analyze(lines []string) Scheme {
	s := Scheme{
		Labels:         make([]string, 0, len(lines)),
		EndRhymes:      []Pair{},
		InternalRhymes: []InternalRhyme{},
		MultiRhymes:    []Pair{},
	}
	if len(lines) == 0 {
		s.Pattern = ""
		return s
	}

	endWords := make([]string, len(lines))
	for i, line := range lines {
		endWords[i] = endWord(line)
	}

	nextLabel := 0
	rhyming := make(map[int]bool)
	for i := range lines {
		bestScore := 0.0
		bestPartner := -1
		lo := i - schemeWindow
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			sc := Score(endWords[j], endWords[i])
			if sc >= schemeThreshold {
				s.EndRhymes = append(s.EndRhymes, Pair{
					LineA: j,
					LineB: i,
					WordA: endWords[j],
					WordB: endWords[i],
					Score: sc,
				})
				rhyming[j] = true
				rhyming[i] = true
			}
			if sc > bestScore {
				bestScore = sc
				bestPartner = j
			}
		}

		if bestPartner >= 0 && bestScore >= schemeThreshold {
			s.Labels = append(s.Labels, s.Labels[bestPartner])
			continue
		}

		s.Labels = append(s.Labels, schemeLetter(nextLabel))
		nextLabel++
	}
	s.Pattern = strings.Join(s.Labels, "")

	for i, line := range lines {
		if ir, ok := internalRhyme(i, line); ok {
			s.InternalRhymes = append(s.InternalRhymes, ir)
		}
	}
	s.MultiRhymes = multiRhymes(lines, endWords)

	s.Density = float64(len(rhyming)) / float64(len(lines))
	return s
}

// schemeLetter yields fresh labels cycling A through Z.
func schemeLetter(n int) string {
	return string(rune('A' + n%26))
}

// internalRhyme looks for a rhyme between the two halves of a line. Only
// lines with at least four words qualify, and only the first hit is kept.
func internalRhyme(index int, line string) (InternalRhyme, bool) {
	words := wordRunes.FindAllString(line, -1)
	if len(words) < 4 {
		return InternalRhyme{}, false
	}
	half := len(words) / 2
	for _, a := range words[:half] {
		for _, b := range words[half:] {
			sc := Score(a, b)
			if sc >= schemeThreshold {
				return InternalRhyme{Line: index, WordA: a, WordB: b, Score: sc}, true
			}
		}
	}
	return InternalRhyme{}, false
}

// multiRhymes finds multisyllabic end rhymes: adjacent-window line pairs
// whose longer rhyme tails are near-identical under fuzzy comparison.
func multiRhymes(lines []string, endWords []string) []Pair {
	out := []Pair{}
	for i := 1; i < len(lines); i++ {
		lo := i - schemeWindow
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			tailA := rhymeTail(endWords[j], multiTailMinChars)
			tailB := rhymeTail(endWords[i], multiTailMinChars)
			if utf8.RuneCountInString(tailA) < multiTailMinChars ||
				utf8.RuneCountInString(tailB) < multiTailMinChars {
				continue
			}
			if normalizePhonetic(endWords[j]) == normalizePhonetic(endWords[i]) {
				continue
			}
			if align.Ratio(tailA, tailB) >= multiSimilarity {
				out = append(out, Pair{
					LineA: j,
					LineB: i,
					WordA: endWords[j],
					WordB: endWords[i],
					Score: align.Ratio(tailA, tailB),
				})
				break
			}
		}
	}
	return out
}

// MarshalJSON rounds pair scores and density to two decimals for artifacts.
func (s Scheme) MarshalJSON() ([]byte, error) {
	type alias Scheme
	a := alias(s)
	a.Density = round2(a.Density)
	a.EndRhymes = roundPairs(a.EndRhymes)
	a.MultiRhymes = roundPairs(a.MultiRhymes)
	rounded := make([]InternalRhyme, len(a.InternalRhymes))
	for i, ir := range a.InternalRhymes {
		ir.Score = round2(ir.Score)
		rounded[i] = ir
	}
	a.InternalRhymes = rounded
	return json.Marshal(a)
}

func roundPairs(pairs []Pair) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		p.Score = round2(p.Score)
		out[i] = p
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
