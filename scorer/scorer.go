// Package scorer turns a ranked match list and text metrics into a single
// 0-100 originality score plus a human-readable summary.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/brettboylen/originality-tracker/models"
	"github.com/brettboylen/originality-tracker/similarity"
)

// Penalty constants. The cascade stacks independent deductions on purpose:
// a post that trips several signals should land well below 50.
const (
	exactSentencePenalty    = 30
	exactSentencePenaltyCap = 95
	phrasePenalty           = 20
	phrasePenaltyCap        = 80
	extraMatchPenaltyCap    = 20.0

	emojiPenalty    = 20
	hashtagPenalty  = 25
	capsPenalty     = 20
	lowUniquePen    = 20
	veryLowUnique   = 25
	shortTextPen    = 15
	mediumTextPen   = 10
	lowScoreFloor   = 50
	lowScorePenalty = 20
)

// Score computes the originality score for a subject text against its ranked
// matches. The similarity against the top match is recomputed in full here
// rather than trusting the percent carried on the match, since the percent
// is rounded. Always returns a value in [0, 100].
func Score(subjectText string, matches []models.Match, metrics models.TextMetrics) int {
	score := 100.0

	if len(matches) > 0 {
		top := similarity.Compare(subjectText, matches[0].Text)

		score -= math.Min(exactSentencePenaltyCap, float64(top.ExactSentenceMatches*exactSentencePenalty))
		score -= math.Min(phrasePenaltyCap, float64(top.PhraseMatches*phrasePenalty))
		score -= top.OverallSimilarity * 100

		// Each additional match contributes a diminishing penalty.
		for i := 1; i < len(matches); i++ {
			sim := similarity.Compare(subjectText, matches[i].Text)
			score -= math.Min(extraMatchPenaltyCap, sim.OverallSimilarity*50/float64(i+2))
		}
	}

	if metrics.HasExcessiveEmojis {
		score -= emojiPenalty
	}
	if metrics.HasExcessiveHashtags {
		score -= hashtagPenalty
	}
	if metrics.HasExcessiveCaps {
		score -= capsPenalty
	}
	if metrics.UniqueWordRatio < 0.5 {
		score -= lowUniquePen
		if metrics.UniqueWordRatio < 0.3 {
			score -= veryLowUnique
		}
	}
	if metrics.WordCount < 10 {
		score -= shortTextPen
	}
	if metrics.WordCount < 20 {
		score -= mediumTextPen
	}

	// A post that already looks derivative and has at least one match gets
	// pushed further down. This must run after every other deduction.
	if score < lowScoreFloor && len(matches) > 0 {
		score -= lowScorePenalty
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// Summary generates the human-readable analysis text shown alongside the
// score.
func Summary(originalityScore int, matches []models.Match, metrics models.TextMetrics) string {
	var sb strings.Builder

	switch {
	case originalityScore >= 90:
		sb.WriteString("This post appears to be highly original. ")
	case originalityScore >= 80:
		sb.WriteString("This post is likely original, but some similar content was found.")
	case originalityScore >= 50:
		sb.WriteString("Some similarities detected. Review similar posts for possible overlap.")
	default:
		sb.WriteString("Significant similarities found. This post may be copied or heavily inspired by other content.")
	}

	if len(matches) > 0 {
		sb.WriteString(fmt.Sprintf(" Top similarity: %d%%", matches[0].Similarity))
	}

	sb.WriteString(fmt.Sprintf("\nWord count: %d, Unique word ratio: %.1f%%", metrics.WordCount, metrics.UniqueWordRatio*100))
	if metrics.HasExcessiveEmojis {
		sb.WriteString("\nContains excessive emojis.")
	}
	if metrics.HasExcessiveHashtags {
		sb.WriteString("\nContains excessive hashtags.")
	}
	if metrics.HasExcessiveCaps {
		sb.WriteString("\nContains excessive capitalization.")
	}
	sb.WriteString(fmt.Sprintf("\nReadability score: %.0f", metrics.ReadabilityScore))

	return sb.String()
}
