// Package similarity computes the multi-signal text similarity breakdown
// used by the originality scorer. The aggregate weighting intentionally
// mixes signals that are not mutually exclusive (an exact sentence match
// also lifts the word and frequency terms), so the overall value can
// overshoot 1.0 on short or repetitive texts. The scoring constants
// downstream were tuned against that behavior; do not clamp or renormalize.
package similarity

import (
	"strings"

	"github.com/brettboylen/originality-tracker/analyzer"
	"github.com/brettboylen/originality-tracker/models"
)

// Weights for the aggregate similarity. They sum to 1.0 in the idealized
// case but individual terms are ratios over different denominators.
const (
	exactSentenceWeight   = 0.3
	partialSentenceWeight = 0.2
	fourWordWeight        = 0.2
	threeWordWeight       = 0.1
	wordWeight            = 0.1
	lengthWeight          = 0.05
	freqWeight            = 0.05

	partialOverlapThreshold = 0.8
)

// Compare computes the full similarity breakdown between two raw texts.
// Pure and deterministic; every ratio has an explicit zero-denominator
// fallback so empty inputs never produce NaN.
func Compare(textA, textB string) models.SimilarityResult {
	normalizedA := analyzer.Normalize(textA)
	normalizedB := analyzer.Normalize(textB)

	sentencesA := analyzer.Sentences(normalizedA)
	sentencesB := analyzer.Sentences(normalizedB)

	exactMatches := countExactSentenceMatches(sentencesA, sentencesB)
	partialMatches := countPartialSentenceMatches(sentencesA, sentencesB)

	wordsA := splitWords(normalizedA)
	wordsB := splitWords(normalizedB)

	fourWordMatches := len(intersect(analyzer.NGramSet(wordsA, 4), analyzer.NGramSet(wordsB, 4)))
	threeWordMatches := len(intersect(analyzer.NGramSet(wordsA, 3), analyzer.NGramSet(wordsB, 3)))

	wordSimilarity := wordSetOverlap(wordsA, wordsB)
	lengthSimilarity := lengthRatio(textA, textB)
	freqSimilarity := frequencyOverlap(wordsA, wordsB)

	maxSentences := float64(max(len(sentencesA), len(sentencesB)))

	overall := 0.0
	if exactMatches > 0 {
		overall += exactSentenceWeight
	}
	overall += safeRatio(float64(partialMatches), maxSentences) * partialSentenceWeight
	if fourWordMatches > 0 {
		overall += fourWordWeight
	}
	overall += safeRatio(float64(threeWordMatches), maxSentences) * threeWordWeight
	overall += wordSimilarity * wordWeight
	overall += lengthSimilarity * lengthWeight
	overall += freqSimilarity * freqWeight

	return models.SimilarityResult{
		OverallSimilarity:      overall,
		ExactSentenceMatches:   exactMatches,
		PartialSentenceMatches: partialMatches,
		PhraseMatches:          threeWordMatches + fourWordMatches,
		FourWordMatches:        fourWordMatches,
		ThreeWordMatches:       threeWordMatches,
		WordSimilarity:         wordSimilarity,
		LengthSimilarity:       lengthSimilarity,
		FreqSimilarity:         freqSimilarity,
	}
}

// countExactSentenceMatches counts sentences of A that appear verbatim in B.
func countExactSentenceMatches(sentencesA, sentencesB []string) int {
	inB := make(map[string]struct{}, len(sentencesB))
	for _, s := range sentencesB {
		inB[s] = struct{}{}
	}
	count := 0
	for _, s := range sentencesA {
		if _, ok := inB[s]; ok {
			count++
		}
	}
	return count
}

// countPartialSentenceMatches counts sentences of A that share more than 80%
// of their word set with some sentence of B (ratio over the larger set).
func countPartialSentenceMatches(sentencesA, sentencesB []string) int {
	setsB := make([]map[string]struct{}, len(sentencesB))
	for i, s := range sentencesB {
		setsB[i] = wordSet(splitWords(s))
	}

	count := 0
	for _, s := range sentencesA {
		setA := wordSet(splitWords(s))
		for _, setB := range setsB {
			overlap := safeRatio(float64(len(intersect(setA, setB))), float64(max(len(setA), len(setB))))
			if overlap > partialOverlapThreshold {
				count++
				break
			}
		}
	}
	return count
}

// wordSetOverlap computes |common words| / max(|A|, |B|) over the
// deduplicated word sets of both texts.
func wordSetOverlap(wordsA, wordsB []string) float64 {
	setA := wordSet(wordsA)
	setB := wordSet(wordsB)
	common := len(intersect(setA, setB))
	return safeRatio(float64(common), float64(max(len(setA), len(setB))))
}

// lengthRatio compares raw (pre-normalization) lengths. Two empty texts are
// considered identical in length.
func lengthRatio(textA, textB string) float64 {
	lenA, lenB := len(textA), len(textB)
	if lenA == 0 && lenB == 0 {
		return 1.0
	}
	return safeRatio(float64(min(lenA, lenB)), float64(max(lenA, lenB)))
}

// frequencyOverlap averages, over A's distinct words, the min/max frequency
// ratio for words that also occur in B. Words absent from B contribute 0,
// which makes this signal asymmetric by construction.
func frequencyOverlap(wordsA, wordsB []string) float64 {
	freqA := frequencies(wordsA)
	freqB := frequencies(wordsB)
	if len(freqA) == 0 {
		return 0
	}

	total := 0.0
	for word, countA := range freqA {
		if countB, ok := freqB[word]; ok {
			total += float64(min(countA, countB)) / float64(max(countA, countB))
		}
	}
	return total / float64(len(freqA))
}

func frequencies(words []string) map[string]int {
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}

func splitWords(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
