// Package engine orchestrates the originality analysis pipeline: metrics,
// candidate gathering, similarity ranking, scoring, and the result cache
// that wraps the whole thing.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/originality-tracker/analyzer"
	"github.com/brettboylen/originality-tracker/models"
	"github.com/brettboylen/originality-tracker/scorer"
	"github.com/brettboylen/originality-tracker/similarity"
)

// CorpusSource supplies previously stored posts. Implementations catch their
// own I/O errors where possible; the engine treats any error as an empty
// corpus.
type CorpusSource interface {
	FetchLocalCorpus(ctx context.Context, limit int) ([]models.PostRecord, error)
}

// SearchSource supplies externally discovered candidate texts for a set of
// key phrases. Zero results is a normal outcome.
type SearchSource interface {
	FetchExternalCandidates(ctx context.Context, phrases []string) ([]models.PostRecord, error)
}

// PostStore receives the side effects the pipeline triggers: appending the
// subject post and evicting aged-out partitions.
type PostStore interface {
	AppendPost(record models.PostRecord) error
	EvictOlderThan(days int) error
}

// ProgressFunc receives ordered stage markers during a pipeline run.
// Deliveries are best-effort; the pipeline never waits on them.
type ProgressFunc func(stage string, progress int)

// Pipeline stage markers, in emission order.
const (
	StageStart         = "start"
	StageTextMetrics   = "textMetrics"
	StageAIAnalysis    = "aiAnalysis"
	StageSearchResults = "searchResults"
	StageSimilarities  = "similarities"
	StageComplete      = "complete"
)

// Config holds the engine's tunable constants.
type Config struct {
	CacheTTL        time.Duration
	AnalysisTimeout time.Duration
	RateLimitWindow time.Duration
	MaxRequests     int
	MaxResults      int
	MinSimilarity   float64
	RetentionDays   int
	CorpusLimit     int
	SearchPhrases   int
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:        24 * time.Hour,
		AnalysisTimeout: 15 * time.Second,
		RateLimitWindow: time.Minute,
		MaxRequests:     10,
		MaxResults:      5,
		MinSimilarity:   0.3,
		RetentionDays:   30,
		CorpusLimit:     500,
		SearchPhrases:   3,
	}
}

// Engine runs originality analyses. Construct one per process (or per test)
// with New; it owns its cache and rate-limiter state, so separate instances
// are fully isolated.
type Engine struct {
	cfg      Config
	cache    *resultCache
	limiter  *slidingWindow
	corpus   CorpusSource
	search   SearchSource
	store    PostStore
	progress ProgressFunc
	log      *logrus.Logger
	now      func() time.Time
}

// New creates an engine. Any of corpus, search, and store may be nil; the
// pipeline degrades to empty candidates and skips persistence.
func New(cfg Config, corpus CorpusSource, search SearchSource, store PostStore, log *logrus.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		cache:   newResultCache(cfg.CacheTTL),
		limiter: newSlidingWindow(cfg.RateLimitWindow, cfg.MaxRequests),
		corpus:  corpus,
		search:  search,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// OnProgress registers a stage-marker callback. Must be called before the
// first Analyze.
func (e *Engine) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

// SetClock overrides the engine's time source. Tests only.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Analyze runs the full originality pipeline for one post. It always returns
// either a well-formed result or a tagged *Error; collaborator failures are
// absorbed, and panics inside the computation are converted to an internal
// error at this boundary.
func (e *Engine) Analyze(ctx context.Context, text string, meta models.PostMeta) (result models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("Analysis pipeline panicked")
			result = models.AnalysisResult{}
			err = internalError(fmt.Sprintf("internal analysis failure: %v", r))
		}
	}()

	if text == "" {
		return models.AnalysisResult{}, invalidInputError()
	}

	if !e.limiter.Allow(e.now()) {
		e.log.Warn("Analysis request rejected by rate limiter")
		return models.AnalysisResult{}, rateLimitedError()
	}

	key := cacheKey(text)
	if cached, ok := e.cache.Get(key, e.now()); ok {
		e.log.WithField("cache_key", key).Debug("Returning cached analysis result")
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.AnalysisTimeout)
	defer cancel()

	result, err = e.performAnalysis(ctx, text, meta)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	e.cache.Put(key, result, e.now())
	return result, nil
}

func (e *Engine) performAnalysis(ctx context.Context, text string, meta models.PostMeta) (models.AnalysisResult, error) {
	e.emit(StageStart, 0)

	metrics := analyzer.AnalyzeTextMetrics(text)
	e.emit(StageTextMetrics, 20)

	aiAnalysis := performAIAnalysis(text)
	e.emit(StageAIAnalysis, 40)

	candidates, err := e.gatherCandidates(ctx, text)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	e.emit(StageSearchResults, 60)

	matches := e.rankMatches(text, meta.URL, candidates)
	e.emit(StageSimilarities, 80)

	score := scorer.Score(text, matches, metrics)
	analysis := scorer.Summary(score, matches, metrics)

	if err := e.persistSubject(ctx, text, meta); err != nil {
		return models.AnalysisResult{}, err
	}

	if len(matches) > e.cfg.MaxResults {
		matches = matches[:e.cfg.MaxResults]
	}

	e.emit(StageComplete, 100)

	e.log.WithFields(logrus.Fields{
		"originality_score": score,
		"match_count":       len(matches),
		"word_count":        metrics.WordCount,
	}).Info("Analysis complete")

	return models.AnalysisResult{
		OriginalityScore: score,
		Analysis:         analysis,
		Matches:          matches,
		TextMetrics:      metrics,
		AIAnalysis:       aiAnalysis,
	}, nil
}

// gatherCandidates pulls candidate texts from the local corpus and the
// external search collaborator. Both calls are suspension points: the
// deadline is checked before each, and a failing collaborator contributes an
// empty slice instead of aborting the analysis.
func (e *Engine) gatherCandidates(ctx context.Context, text string) ([]models.PostRecord, error) {
	candidates := []models.PostRecord{}

	if err := e.checkDeadline(ctx); err != nil {
		return nil, err
	}
	if e.corpus != nil {
		corpus, err := e.corpus.FetchLocalCorpus(ctx, e.cfg.CorpusLimit)
		if err != nil {
			e.log.WithError(err).Warn("Corpus fetch failed, continuing without stored posts")
		} else {
			candidates = append(candidates, corpus...)
		}
	}

	if err := e.checkDeadline(ctx); err != nil {
		return nil, err
	}
	if e.search != nil {
		phrases := analyzer.ExtractKeyPhrases(text)
		if len(phrases) > e.cfg.SearchPhrases {
			phrases = phrases[:e.cfg.SearchPhrases]
		}
		external, err := e.search.FetchExternalCandidates(ctx, phrases)
		if err != nil {
			// The client returns whatever it gathered before failing.
			e.log.WithError(err).Warn("External search failed, keeping partial web candidates")
		}
		candidates = append(candidates, external...)
	}

	return candidates, nil
}

// rankMatches compares the subject against every candidate and keeps the
// ones worth surfacing: anything over the similarity threshold, or with any
// phrase or exact-sentence overlap at all. The subject's own URL is skipped.
func (e *Engine) rankMatches(text, subjectURL string, candidates []models.PostRecord) []models.Match {
	matches := []models.Match{}
	for _, candidate := range candidates {
		if subjectURL != "" && candidate.URL == subjectURL {
			continue
		}
		sim := similarity.Compare(text, candidate.Text)
		if sim.OverallSimilarity > e.cfg.MinSimilarity || sim.PhraseMatches > 0 || sim.ExactSentenceMatches > 0 {
			matches = append(matches, models.Match{
				PostRecord: candidate,
				Similarity: int(sim.OverallSimilarity*100 + 0.5),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// persistSubject stores the analyzed post and sweeps aged-out partitions.
// Store failures are logged, not fatal; the deadline check makes the store
// write a proper suspension point.
func (e *Engine) persistSubject(ctx context.Context, text string, meta models.PostMeta) error {
	if e.store == nil {
		return nil
	}
	if err := e.checkDeadline(ctx); err != nil {
		return err
	}

	author := meta.Author
	if author == "" {
		author = "Unknown"
	}
	date := meta.Date
	if date.IsZero() {
		date = e.now()
	}

	record := models.PostRecord{
		Text:   text,
		Author: author,
		URL:    meta.URL,
		Date:   date,
		Source: models.SourceLocal,
	}
	if err := e.store.AppendPost(record); err != nil {
		e.log.WithError(err).Warn("Failed to store analyzed post")
	}
	if err := e.store.EvictOlderThan(e.cfg.RetentionDays); err != nil {
		e.log.WithError(err).Warn("Failed to evict old posts")
	}
	return nil
}

func (e *Engine) checkDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return timeoutError()
		}
		return internalError("analysis cancelled")
	default:
		return nil
	}
}

func (e *Engine) emit(stage string, progress int) {
	if e.progress == nil {
		return
	}
	e.progress(stage, progress)
}

// performAIAnalysis is a stub: no classification endpoints are configured,
// so every analysis receives the same neutral values.
func performAIAnalysis(_ string) models.AIAnalysis {
	return models.AIAnalysis{
		StyleScore:             1.0,
		StyleFingerprint:       "default",
		AuthenticityScore:      1.0,
		AuthenticityConfidence: 1.0,
		ContextRelevance:       1.0,
		AIPrediction:           "original",
	}
}
