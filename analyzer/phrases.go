package analyzer

import (
	"strings"
)

// ExtractKeyPhrases normalizes the text, splits it into sentences, and emits
// every contiguous 3-, 4-, and 5-word window of each sentence, deduplicated
// in first-seen order. Sentences shorter than a window size simply don't
// contribute windows of that size.
func ExtractKeyPhrases(text string) []string {
	normalized := Normalize(text)

	seen := make(map[string]struct{})
	phrases := []string{}

	for _, sentence := range Sentences(normalized) {
		words := strings.Split(sentence, " ")
		for i := 0; i < len(words)-2; i++ {
			for _, n := range []int{3, 4, 5} {
				if i+n > len(words) {
					break
				}
				phrase := strings.Join(words[i:i+n], " ")
				if _, ok := seen[phrase]; !ok {
					seen[phrase] = struct{}{}
					phrases = append(phrases, phrase)
				}
			}
		}
	}

	return phrases
}

// NGramSet returns the set of contiguous n-word windows over the given word
// sequence. Sequences shorter than n yield an empty set.
func NGramSet(words []string, n int) map[string]struct{} {
	grams := make(map[string]struct{})
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}
