package analyzer

import (
	"regexp"
	"strings"
)

var (
	nonWordChars  = regexp.MustCompile(`[^\w\s]+`)
	multiSpace    = regexp.MustCompile(`\s+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// Normalize lowercases the text, strips every character that is not a word
// character or whitespace, collapses whitespace runs to a single space, and
// trims. Empty input yields an empty string.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordChars.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Sentences splits text on runs of sentence terminators (. ! ?), trims each
// piece and drops the blank ones. Order is preserved.
func Sentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}
