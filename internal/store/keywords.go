package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// KeywordSource yields the full keyword dictionary: category name to
// keyword list. Sources are called on cache misses and TTL expiry.
type KeywordSource func(ctx context.Context) (map[string][]string, error)

// keywordSnapshot is one immutable load of the dictionary.
type keywordSnapshot struct {
	categories map[string][]string
	loadedAt   time.Time
}

// KeywordStore serves the sensitive keyword dictionary with TTL-based
// refresh from its source.
//
// Design decision: Readers get the current snapshot via an
// atomic.Pointer and refresh swaps whole snapshots, so a batch of
// concurrent assessments never observes a dictionary that is half old
// and half new. The mutex only serializes refreshes; reads never block.
type KeywordStore struct {
	source KeywordSource
	ttl    time.Duration
	logger *slog.Logger

	mu   sync.Mutex // serializes refresh
	snap atomic.Pointer[keywordSnapshot]
}

// NewKeywordStore creates a KeywordStore over source with the given
// TTL. The dictionary is loaded lazily on first use.
func NewKeywordStore(source KeywordSource, ttl time.Duration, logger *slog.Logger) *KeywordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeywordStore{
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// Categories returns the current keyword dictionary, refreshing it from
// the source when the TTL has expired. The returned map is shared and
// must not be mutated.
//
// If a refresh fails but an earlier snapshot exists, the stale snapshot
// is served; keyword matching with yesterday's dictionary beats failing
// the whole assessment.
func (s *KeywordStore) Categories(ctx context.Context) (map[string][]string, error) {
	if snap := s.snap.Load(); snap != nil && time.Since(snap.loadedAt) < s.ttl {
		return snap.categories, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited on the lock.
	if snap := s.snap.Load(); snap != nil && time.Since(snap.loadedAt) < s.ttl {
		return snap.categories, nil
	}

	categories, err := s.source(ctx)
	if err != nil {
		if snap := s.snap.Load(); snap != nil {
			s.logger.Warn("keyword refresh failed, serving stale snapshot",
				"error", err, "age", time.Since(snap.loadedAt))
			return snap.categories, nil
		}
		return nil, fmt.Errorf("store: load keywords: %w", err)
	}

	s.snap.Store(&keywordSnapshot{
		categories: categories,
		loadedAt:   time.Now(),
	})
	s.logger.Debug("keyword dictionary refreshed", "categories", len(categories))
	return categories, nil
}

// FileKeywordSource reads the dictionary from a JSON file mapping
// category name to keyword list. A missing file yields an empty
// dictionary, matching the degraded-but-valid blacklist behavior.
func FileKeywordSource(path string) KeywordSource {
	return func(_ context.Context) (map[string][]string, error) {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			if os.IsNotExist(err) {
				return map[string][]string{}, nil
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var categories map[string][]string
		if err := json.Unmarshal(data, &categories); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return categories, nil
	}
}

// DBKeywordSource reads the dictionary from the keywords table.
func DBKeywordSource(db *sql.DB) KeywordSource {
	return func(ctx context.Context) (map[string][]string, error) {
		rows, err := db.QueryContext(ctx, `SELECT category, word FROM keywords`)
		if err != nil {
			return nil, fmt.Errorf("query keywords: %w", err)
		}
		defer rows.Close()

		categories := make(map[string][]string)
		for rows.Next() {
			var category, word string
			if err := rows.Scan(&category, &word); err != nil {
				return nil, fmt.Errorf("scan keyword: %w", err)
			}
			categories[category] = append(categories[category], word)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate keywords: %w", err)
		}
		return categories, nil
	}
}

// FallbackKeywordSource tries primary first and falls back to secondary
// when primary errors. The database-backed deployments use this to keep
// working from the bundled JSON file when the database is unreachable.
func FallbackKeywordSource(primary, secondary KeywordSource) KeywordSource {
	return func(ctx context.Context) (map[string][]string, error) {
		categories, err := primary(ctx)
		if err == nil {
			return categories, nil
		}
		return secondary(ctx)
	}
}

// StaticKeywordSource serves a fixed dictionary. Used in tests and in
// runs that pass keywords on the command line.
func StaticKeywordSource(categories map[string][]string) KeywordSource {
	return func(_ context.Context) (map[string][]string, error) {
		return categories, nil
	}
}
