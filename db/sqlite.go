package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/brettboylen/originality-tracker/analyzer"
	"github.com/brettboylen/originality-tracker/models"
)

const dayKeyFormat = "2006-01-02"

// Store persists previously seen posts, partitioned by calendar day so old
// partitions can be evicted cheaply.
type Store struct {
	db    *sql.DB
	mutex sync.RWMutex
	log   *logrus.Logger
}

// NewStore opens (and initializes) a SQLite-backed post store
func NewStore(dbPath string, log *logrus.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}

// initTables creates the necessary tables if they don't exist
func (s *Store) initTables() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// note: in an ideal world, this would be a migration that we could just run once per environment
	query := `
	CREATE TABLE IF NOT EXISTS posts (
		text_hash INTEGER NOT NULL,
		text TEXT NOT NULL,
		author TEXT NOT NULL,
		url TEXT,
		date TIMESTAMP NOT NULL,
		source TEXT NOT NULL,
		day_key TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_day_key ON posts(day_key);
	CREATE INDEX IF NOT EXISTS idx_posts_url ON posts(url);
	CREATE INDEX IF NOT EXISTS idx_posts_text_hash ON posts(text_hash);
	`

	_, err := s.db.Exec(query)
	return err
}

// AppendPost stores a post record. It is a no-op when a record with the same
// URL (if present) or the same text hash already exists, so re-analyzing the
// same post never duplicates rows.
func (s *Store) AppendPost(record models.PostRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	textHash := analyzer.TextHash(record.Text)

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM posts WHERE (url != '' AND url = ?) OR text_hash = ?`,
		record.URL, textHash,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for existing post: %w", err)
	}
	if count > 0 {
		s.log.WithFields(logrus.Fields{
			"url":       record.URL,
			"text_hash": textHash,
		}).Debug("Post already stored, skipping append")
		return nil
	}

	author := record.Author
	if author == "" {
		author = "Unknown"
	}

	_, err = s.db.Exec(
		`INSERT INTO posts (text_hash, text, author, url, date, source, day_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		textHash, record.Text, author, record.URL,
		record.Date.UTC().Format(time.RFC3339), string(record.Source),
		record.Date.UTC().Format(dayKeyFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	return nil
}

// FetchLocalCorpus returns the most recently stored posts, newest first
func (s *Store) FetchLocalCorpus(ctx context.Context, limit int) ([]models.PostRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	query := `
	SELECT text, author, url, date, source
	FROM posts
	ORDER BY date DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	posts := make([]models.PostRecord, 0, limit)
	for rows.Next() {
		var post models.PostRecord
		var date string
		var source string

		if err := rows.Scan(&post.Text, &post.Author, &post.URL, &date, &source); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		post.Date, _ = time.Parse(time.RFC3339, date)
		post.Source = models.Source(source)
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return posts, nil
}

// EvictOlderThan removes day partitions older than the retention window
func (s *Store) EvictOlderThan(days int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(dayKeyFormat)

	result, err := s.db.Exec(`DELETE FROM posts WHERE day_key < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to evict old posts: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		s.log.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("Evicted old post partitions")
	}

	return nil
}

// TotalPosts returns the total number of stored posts
func (s *Store) TotalPosts() (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total posts: %w", err)
	}

	return count, nil
}

// PostsForDay returns the posts stored under a single day partition
func (s *Store) PostsForDay(day time.Time) ([]models.PostRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows, err := s.db.Query(
		`SELECT text, author, url, date, source FROM posts WHERE day_key = ?`,
		day.UTC().Format(dayKeyFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts for day: %w", err)
	}
	defer rows.Close()

	posts := []models.PostRecord{}
	for rows.Next() {
		var post models.PostRecord
		var date string
		var source string

		if err := rows.Scan(&post.Text, &post.Author, &post.URL, &date, &source); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		post.Date, _ = time.Parse(time.RFC3339, date)
		post.Source = models.Source(source)
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return posts, nil
}
