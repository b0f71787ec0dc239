package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettboylen/originality-tracker/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testPost(text, url string, date time.Time) models.PostRecord {
	return models.PostRecord{
		Text:   text,
		Author: "author",
		URL:    url,
		Date:   date,
		Source: models.SourceLocal,
	}
}

func TestAppendAndFetch(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.AppendPost(testPost("older post text", "https://example.com/1", now.Add(-time.Hour))))
	require.NoError(t, store.AppendPost(testPost("newer post text", "https://example.com/2", now)))

	posts, err := store.FetchLocalCorpus(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Newest first.
	assert.Equal(t, "newer post text", posts[0].Text)
	assert.Equal(t, "older post text", posts[1].Text)
	assert.Equal(t, "author", posts[0].Author)
	assert.Equal(t, models.SourceLocal, posts[0].Source)
	assert.True(t, posts[0].Date.Equal(now))
}

func TestFetchLocalCorpusLimit(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, store.AppendPost(testPost(text, "", now.Add(time.Duration(i)*time.Minute))))
	}

	posts, err := store.FetchLocalCorpus(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestAppendPostDeduplicatesByURL(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.AppendPost(testPost("some text", "https://example.com/p", now)))
	require.NoError(t, store.AppendPost(testPost("different text entirely", "https://example.com/p", now)))

	count, err := store.TotalPosts()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppendPostDeduplicatesByTextHash(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.AppendPost(testPost("Exactly The Same Text", "https://example.com/a", now)))
	// Hashing lowercases and trims, so this counts as the same text.
	require.NoError(t, store.AppendPost(testPost("  exactly the same text ", "https://example.com/b", now)))

	count, err := store.TotalPosts()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppendPostEmptyURLsAreNotDuplicates(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.AppendPost(testPost("one post without a url", "", now)))
	require.NoError(t, store.AppendPost(testPost("another post without a url", "", now)))

	count, err := store.TotalPosts()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppendPostDefaultsAuthor(t *testing.T) {
	store := newTestStore(t)

	post := testPost("anonymous post text", "", time.Now().UTC())
	post.Author = ""
	require.NoError(t, store.AppendPost(post))

	posts, err := store.FetchLocalCorpus(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Unknown", posts[0].Author)
}

func TestEvictOlderThan(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.AppendPost(testPost("fresh post", "", now)))
	require.NoError(t, store.AppendPost(testPost("stale post", "", now.AddDate(0, 0, -31))))
	require.NoError(t, store.AppendPost(testPost("ancient post", "", now.AddDate(0, 0, -90))))

	require.NoError(t, store.EvictOlderThan(30))

	posts, err := store.FetchLocalCorpus(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "fresh post", posts[0].Text)
}

func TestPostsForDay(t *testing.T) {
	store := newTestStore(t)
	today := time.Now().UTC()
	yesterday := today.AddDate(0, 0, -1)

	require.NoError(t, store.AppendPost(testPost("post from today", "", today)))
	require.NoError(t, store.AppendPost(testPost("post from yesterday", "", yesterday)))

	posts, err := store.PostsForDay(yesterday)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "post from yesterday", posts[0].Text)
}
