// Package memo caches finished extractions keyed by upload content hash, so
// re-submitting the same scan skips rasterization and OCR entirely.
package memo

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// ErrNotFound is returned when no cached result exists for a hash.
var ErrNotFound = errors.New("memo: not found")

// CachedResult is the full outcome of one extraction run.
type CachedResult struct {
	Questions []segment.Question `json:"questions"`
	Stats     segment.Stats      `json:"stats"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// Key derives the cache key for an upload: hex SHA-256 of the raw bytes.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store is a sqlite-backed result cache. Safe for concurrent use; sqlite
// serializes writers and WAL keeps readers unblocked.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	content_hash TEXT PRIMARY KEY,
	result       TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);`

// Get loads the cached result for a content hash.
func (s *Store) Get(hash string) (CachedResult, error) {
	var raw []byte
	err := s.db.QueryRow(
		`SELECT result FROM extractions WHERE content_hash = ?`, hash,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedResult{}, ErrNotFound
	}
	if err != nil {
		return CachedResult{}, fmt.Errorf("read cache: %w", err)
	}

	var res CachedResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return CachedResult{}, fmt.Errorf("decode cached result: %w", err)
	}
	return res, nil
}

// Put stores (or replaces) the result for a content hash.
func (s *Store) Put(hash string, res CachedResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO extractions (content_hash, result, created_at) VALUES (?, ?, ?)`,
		hash, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Len reports the number of cached extractions.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM extractions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
