package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/brettboylen/originality-tracker/models"
)

const defaultEndpoint = "https://api.duckduckgo.com"

// Client queries the DuckDuckGo instant-answer API for texts matching a
// post's key phrases. It is an unreliable, optional collaborator: every
// failure mode (network error, bad status, decode error) degrades to fewer
// or zero results, never to an aborted analysis.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logrus.Logger
}

// instantAnswer is the subset of the DuckDuckGo response we use
type instantAnswer struct {
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// NewClient creates a search client. maxRequestsPerMinute caps outbound
// request pacing; it defaults to 30 when non-positive.
func NewClient(endpoint, userAgent string, maxRequestsPerMinute int, log *logrus.Logger) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if maxRequestsPerMinute <= 0 {
		maxRequestsPerMinute = 30
	}

	// use 95% of the allowed rate to be safe
	requestsPerSecond := float64(maxRequestsPerMinute) / 60.0 * 0.95

	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:        log,
	}
}

// FetchExternalCandidates searches each phrase as an exact-quoted query and
// collects related-topic texts as candidate post records. Per-phrase errors
// are logged and skipped; a context cancellation stops the remaining phrases,
// returning the records gathered so far alongside the error.
func (c *Client) FetchExternalCandidates(ctx context.Context, phrases []string) ([]models.PostRecord, error) {
	results := []models.PostRecord{}

	for _, phrase := range phrases {
		if strings.TrimSpace(phrase) == "" {
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("rate limiter wait interrupted: %w", err)
		}

		records, err := c.searchPhrase(ctx, phrase)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			c.log.WithError(err).WithField("phrase", phrase).Warn("Phrase search failed, skipping")
			continue
		}

		results = append(results, records...)
	}

	c.log.WithFields(logrus.Fields{
		"phrase_count": len(phrases),
		"result_count": len(results),
	}).Debug("External candidate search complete")

	return results, nil
}

func (c *Client) searchPhrase(ctx context.Context, phrase string) ([]models.PostRecord, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%q", phrase))
	query.Set("format", "json")
	endpoint := fmt.Sprintf("%s/?%s", c.endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	now := time.Now()
	records := make([]models.PostRecord, 0, len(answer.RelatedTopics))
	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		records = append(records, models.PostRecord{
			Text:   topic.Text,
			Author: "Web Result",
			URL:    topic.FirstURL,
			Date:   now,
			Source: models.SourceWeb,
		})
	}

	return records, nil
}
