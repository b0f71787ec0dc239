package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/brettboylen/originality-tracker/models"
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// AnalyzeTextMetrics computes basic quality metrics over the raw post text.
// Tokenization splits on whitespace; sentence counting uses the same
// terminator split as Sentences. All ratios are defined as 0 on empty input.
func AnalyzeTextMetrics(text string) models.TextMetrics {
	words := strings.Fields(text)
	sentences := Sentences(text)

	unique := make(map[string]struct{}, len(words))
	for _, word := range words {
		unique[strings.ToLower(word)] = struct{}{}
	}

	uniqueWordRatio := 0.0
	if len(words) > 0 {
		uniqueWordRatio = float64(len(unique)) / float64(len(words))
	}

	emojiCount := 0
	capsCount := 0
	for _, r := range text {
		if isEmoji(r) {
			emojiCount++
		}
		if r >= 'A' && r <= 'Z' {
			capsCount++
		}
	}

	return models.TextMetrics{
		WordCount:            len(words),
		SentenceCount:        len(sentences),
		UniqueWordRatio:      uniqueWordRatio,
		HasExcessiveEmojis:   float64(emojiCount) > float64(len(words))*0.1,
		HasExcessiveHashtags: len(hashtagPattern.FindAllString(text, -1)) > 10,
		HasExcessiveCaps:     float64(capsCount) > float64(utf8.RuneCountInString(text))*0.3,
		ReadabilityScore:     readabilityScore(len(words), len(sentences)),
	}
}

// readabilityScore is a rough approximation based on average sentence length:
// 15 words per sentence scores 100, with 2 points off per word above that.
func readabilityScore(wordCount, sentenceCount int) float64 {
	if sentenceCount == 0 {
		return 0
	}
	avgWordsPerSentence := float64(wordCount) / float64(sentenceCount)
	score := 100 - (avgWordsPerSentence-15)*2
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// isEmoji reports whether the rune falls in the emoji code point ranges the
// checker cares about (emoticons, symbols/pictographs, transport, flags).
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F:
		return true
	case r >= 0x1F300 && r <= 0x1F5FF:
		return true
	case r >= 0x1F680 && r <= 0x1F6FF:
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF:
		return true
	}
	return false
}
