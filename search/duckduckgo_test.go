package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettboylen/originality-tracker/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// A generous per-minute cap keeps the pacing limiter out of the way in tests.
func newTestClient(endpoint string) *Client {
	return NewClient(endpoint, "originality-tracker-test", 60000, testLogger())
}

func TestFetchExternalCandidates(t *testing.T) {
	var gotQuery, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"RelatedTopics": [
				{"Text": "A page using this exact phrase", "FirstURL": "https://example.com/hit"},
				{"Text": "", "FirstURL": "https://example.com/empty"},
				{"Text": "Another overlapping page", "FirstURL": "https://example.com/hit2"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	records, err := client.FetchExternalCandidates(context.Background(), []string{"thrilled to announce"})
	require.NoError(t, err)

	// The empty-text topic is dropped.
	require.Len(t, records, 2)
	assert.Equal(t, "A page using this exact phrase", records[0].Text)
	assert.Equal(t, "https://example.com/hit", records[0].URL)
	assert.Equal(t, "Web Result", records[0].Author)
	assert.Equal(t, models.SourceWeb, records[0].Source)

	// The phrase is sent as an exact-quoted query.
	assert.Equal(t, `"thrilled to announce"`, gotQuery)
	assert.Equal(t, "originality-tracker-test", gotUserAgent)
}

func TestFetchExternalCandidatesSkipsBlankPhrases(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"RelatedTopics": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	records, err := client.FetchExternalCandidates(context.Background(), []string{"", "  ", "real phrase here"})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, requests)
}

func TestFetchExternalCandidatesSkipsFailingPhrase(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"RelatedTopics": [{"Text": "recovered result", "FirstURL": "https://example.com/ok"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	records, err := client.FetchExternalCandidates(context.Background(), []string{"failing phrase", "working phrase"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recovered result", records[0].Text)
}

func TestFetchExternalCandidatesBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	records, err := client.FetchExternalCandidates(context.Background(), []string{"some phrase"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchExternalCandidatesCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RelatedTopics": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchExternalCandidates(ctx, []string{"a phrase"})
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", "", 0, testLogger())
	assert.Equal(t, defaultEndpoint, client.endpoint)
	assert.NotNil(t, client.limiter)
}
