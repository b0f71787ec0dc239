package models

import (
	"time"
)

// Source identifies where a post record was discovered
type Source string

const (
	SourceLocal  Source = "local"
	SourceSearch Source = "search"
	SourceWeb    Source = "web"
)

// PostRecord represents a previously seen post. Records are immutable once
// stored; identity is the text hash, or the URL when one is present.
type PostRecord struct {
	Text   string    `json:"text"`
	Author string    `json:"author"`
	URL    string    `json:"url,omitempty"`
	Date   time.Time `json:"date"`
	Source Source    `json:"source"`
}

// TextMetrics holds basic quality metrics for a single post text
type TextMetrics struct {
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	UniqueWordRatio      float64 `json:"unique_word_ratio"`
	HasExcessiveEmojis   bool    `json:"has_excessive_emojis"`
	HasExcessiveHashtags bool    `json:"has_excessive_hashtags"`
	HasExcessiveCaps     bool    `json:"has_excessive_caps"`
	ReadabilityScore     float64 `json:"readability_score"`
}

// SimilarityResult is the full signal breakdown for one pairwise comparison.
// OverallSimilarity is a weighted sum of non-exclusive signals and can exceed
// 1.0 for short or highly repetitive texts; downstream scoring constants were
// tuned against that value, so it is never renormalized here.
type SimilarityResult struct {
	OverallSimilarity      float64 `json:"overall_similarity"`
	ExactSentenceMatches   int     `json:"exact_sentence_matches"`
	PartialSentenceMatches int     `json:"partial_sentence_matches"`
	PhraseMatches          int     `json:"phrase_matches"`
	FourWordMatches        int     `json:"four_word_matches"`
	ThreeWordMatches       int     `json:"three_word_matches"`
	WordSimilarity         float64 `json:"word_similarity"`
	LengthSimilarity       float64 `json:"length_similarity"`
	FreqSimilarity         float64 `json:"freq_similarity"`
}

// Match is a corpus record ranked against the subject text
type Match struct {
	PostRecord
	Similarity int `json:"similarity"` // rounded percent of the unclamped overall, can exceed 100
}

// AIAnalysis is a placeholder classification result. No model endpoints are
// configured, so every analysis gets the same neutral values.
type AIAnalysis struct {
	StyleScore             float64 `json:"style_score"`
	StyleFingerprint       string  `json:"style_fingerprint"`
	AuthenticityScore      float64 `json:"authenticity_score"`
	AuthenticityConfidence float64 `json:"authenticity_confidence"`
	ContextRelevance       float64 `json:"context_relevance"`
	AIPrediction           string  `json:"ai_prediction"`
}

// AnalysisResult is the full output of one pipeline run. It is the unit the
// result cache stores, so it must not be mutated after creation.
type AnalysisResult struct {
	OriginalityScore int            `json:"originality_score"`
	Analysis         string         `json:"analysis"`
	Matches          []Match        `json:"matches"`
	TextMetrics      TextMetrics    `json:"text_metrics"`
	AIAnalysis       AIAnalysis     `json:"ai_analysis"`
}

// PostMeta carries optional metadata supplied alongside a text to analyze
type PostMeta struct {
	Author string    `json:"author"`
	URL    string    `json:"url"`
	Date   time.Time `json:"date"`
}

// Statistics holds daily usage counters for the tracker
type Statistics struct {
	CheckedToday    int       `json:"checked_today"`
	DuplicatesFound int       `json:"duplicates_found"`
	TotalPosts      int       `json:"total_posts"`
	LastReset       string    `json:"last_reset"`
	StartTime       time.Time `json:"start_time"`
	LastUpdated     time.Time `json:"last_updated"`
}
