// Package cache stores upstream HTTP responses in sqlite with a per-source expiry
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Source names used as cache partitions and metric labels
const (
	SourceBuoy    = "buoy"
	SourceTides   = "tides"
	SourceNWS     = "nws"
	SourceAlerts  = "alerts"
	SourceUSGS    = "usgs"
	SourcePacIOOS = "pacioos"
	SourceCWB     = "cwb"
)

// TTLs is how long a response from each source stays fresh
var TTLs = map[string]time.Duration{
	SourceBuoy:    10 * time.Minute,
	SourceTides:   time.Hour,
	SourceNWS:     30 * time.Minute,
	SourceAlerts:  5 * time.Minute,
	SourceUSGS:    15 * time.Minute,
	SourcePacIOOS: time.Hour,
	SourceCWB:     30 * time.Minute,
}

// TTL returns the freshness window for source, 10 minutes when unknown
func TTL(source string) time.Duration {
	if ttl, ok := TTLs[source]; ok {
		return ttl
	}
	return 10 * time.Minute
}

// Entry is a cached response body
type Entry struct {
	Body        []byte
	ContentType string
	ExpiresAt   time.Time
}

// Store is an expiring key-value store backed by the response_cache table
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewStore wraps an open database. The response_cache table must exist
// (see database.Open).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: clockwork.NewRealClock()}
}

// WithClock sets the time source used for expiry. Intended for tests.
func (s *Store) WithClock(c clockwork.Clock) *Store {
	s.clock = c
	return s
}

// Key derives the cache key for a request URL
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the entry for key if it has not expired
func (s *Store) Get(key string) (*Entry, bool, error) {
	var body []byte
	var contentType sql.NullString
	var expires int64

	err := s.db.QueryRow(
		"SELECT body, content_type, expires_at FROM response_cache WHERE cache_key = ?",
		key,
	).Scan(&body, &contentType, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	expiresAt := time.Unix(expires, 0)
	if !s.clock.Now().Before(expiresAt) {
		return nil, false, nil
	}
	return &Entry{Body: body, ContentType: contentType.String, ExpiresAt: expiresAt}, true, nil
}

// Set stores body under key for ttl, replacing any previous entry
func (s *Store) Set(key, source, url string, body []byte, contentType string, ttl time.Duration) error {
	now := s.clock.Now()
	_, err := s.db.Exec(`
		INSERT INTO response_cache (cache_key, source, url, body, content_type, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			body = excluded.body,
			content_type = excluded.content_type,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, source, url, body, contentType, now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed
func (s *Store) Purge() (int64, error) {
	res, err := s.db.Exec("DELETE FROM response_cache WHERE expires_at <= ?", s.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry for source, or all entries when source is empty
func (s *Store) Clear(source string) error {
	var err error
	if source == "" {
		_, err = s.db.Exec("DELETE FROM response_cache")
	} else {
		_, err = s.db.Exec("DELETE FROM response_cache WHERE source = ?", source)
	}
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
