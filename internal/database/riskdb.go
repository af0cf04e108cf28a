package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/riskhound/riskhound/internal/model"
)

// RiskDB provides SQLite-based storage for assessments, the blacklist
// URL feed, and the keyword dictionary.
//
// Design decision: We keep one latest assessment row per URL rather
// than an append-only log. Repeat runs of the same target list are the
// common case, and the interesting question is "what is this URL's
// current risk", not its history.
type RiskDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RiskDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RiskDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RiskDB, error) {
	dbPath := filepath.Join(dbDir, "riskhound.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections just
	// contend on the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RiskDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RiskDB) Close() error {
	return rdb.db.Close()
}

// DB exposes the underlying connection for consumers that run their own
// queries against the shared tables, such as the blacklist refresher
// and the keyword source.
func (rdb *RiskDB) DB() *sql.DB {
	return rdb.db
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RiskDB) createTables() error {
	schema := `
	-- One latest assessment per URL; repeat runs overwrite.
	CREATE TABLE IF NOT EXISTS assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		risk_level TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		factors TEXT,
		features TEXT,
		error_message TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_level ON assessments(risk_level);
	CREATE INDEX IF NOT EXISTS idx_assessments_timestamp ON assessments(timestamp);

	-- Known-malicious URLs; the blacklist refresher classifies these
	-- into the IP and domain files consumed by the domain analyzer.
	CREATE TABLE IF NOT EXISTS blacklist_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sensitive keyword dictionary by category.
	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		word TEXT NOT NULL,
		UNIQUE(category, word)
	);

	CREATE INDEX IF NOT EXISTS idx_keywords_category ON keywords(category);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAssessment inserts or replaces the assessment for its URL.
func (rdb *RiskDB) SaveAssessment(ctx context.Context, a *model.RiskAssessment) error {
	factorsJSON, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to serialize factors: %w", err)
	}

	var featuresJSON []byte
	if a.Features != nil {
		featuresJSON, err = json.Marshal(a.Features)
		if err != nil {
			return fmt.Errorf("failed to serialize features: %w", err)
		}
	}

	query := `
	INSERT INTO assessments (url, risk_level, risk_score, factors, features, error_message)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		risk_level = excluded.risk_level,
		risk_score = excluded.risk_score,
		factors = excluded.factors,
		features = excluded.features,
		error_message = excluded.error_message,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err = rdb.db.ExecContext(ctx, query,
		a.URL,
		a.Tier.String(),
		a.Score,
		string(factorsJSON),
		string(featuresJSON),
		a.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// SaveBatch persists every assessment in one transaction.
func (rdb *RiskDB) SaveBatch(ctx context.Context, assessments []*model.RiskAssessment) error {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT INTO assessments (url, risk_level, risk_score, factors, features, error_message)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		risk_level = excluded.risk_level,
		risk_score = excluded.risk_score,
		factors = excluded.factors,
		features = excluded.features,
		error_message = excluded.error_message,
		timestamp = CURRENT_TIMESTAMP
	`

	for _, a := range assessments {
		if a == nil {
			continue
		}

		factorsJSON, err := json.Marshal(a.Factors)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to serialize factors for %s: %w", a.URL, err)
		}

		var featuresJSON []byte
		if a.Features != nil {
			featuresJSON, err = json.Marshal(a.Features)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to serialize features for %s: %w", a.URL, err)
			}
		}

		if _, err := tx.ExecContext(ctx, query,
			a.URL, a.Tier.String(), a.Score,
			string(factorsJSON), string(featuresJSON), a.ErrorMessage,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save assessment for %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// GetAssessment retrieves the latest assessment for a URL.
// Returns nil without error when the URL has never been assessed.
func (rdb *RiskDB) GetAssessment(ctx context.Context, url string) (*model.RiskAssessment, error) {
	query := `
	SELECT url, risk_level, risk_score, factors, features, error_message, timestamp
	FROM assessments
	WHERE url = ?
	`

	var (
		a            model.RiskAssessment
		level        string
		factorsJSON  sql.NullString
		featuresJSON sql.NullString
		timestamp    string
	)

	err := rdb.db.QueryRowContext(ctx, query, url).Scan(
		&a.URL, &level, &a.Score, &factorsJSON, &featuresJSON, &a.ErrorMessage, &timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	a.Tier = model.ParseTier(level)
	a.Timestamp = parseTimestamp(timestamp)

	if factorsJSON.Valid && factorsJSON.String != "" {
		if err := json.Unmarshal([]byte(factorsJSON.String), &a.Factors); err != nil {
			return nil, fmt.Errorf("failed to parse factors: %w", err)
		}
	}
	if featuresJSON.Valid && featuresJSON.String != "" {
		var fv model.FeatureVector
		if err := json.Unmarshal([]byte(featuresJSON.String), &fv); err != nil {
			return nil, fmt.Errorf("failed to parse features: %w", err)
		}
		a.Features = &fv
	}

	return &a, nil
}

// ListAssessedURLs returns every assessed URL in alphabetical order.
func (rdb *RiskDB) ListAssessedURLs(ctx context.Context) ([]string, error) {
	query := `SELECT url FROM assessments ORDER BY url`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessed urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// CountByTier returns per-tier assessment counts over the whole table.
func (rdb *RiskDB) CountByTier(ctx context.Context) (model.BatchSummary, error) {
	query := `SELECT risk_level, COUNT(*) FROM assessments GROUP BY risk_level`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return model.BatchSummary{}, fmt.Errorf("failed to count assessments: %w", err)
	}
	defer rows.Close()

	var s model.BatchSummary
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return model.BatchSummary{}, fmt.Errorf("failed to scan count: %w", err)
		}
		s.Total += count
		switch model.ParseTier(level) {
		case model.TierHigh:
			s.High += count
		case model.TierMedium:
			s.Medium += count
		case model.TierLow:
			s.Low += count
		case model.TierFailed:
			s.Failed += count
		}
	}

	return s, rows.Err()
}

// AddBlacklistURL records a known-malicious URL. Duplicates are ignored.
func (rdb *RiskDB) AddBlacklistURL(ctx context.Context, url string) error {
	query := `INSERT OR IGNORE INTO blacklist_urls (url) VALUES (?)`
	if _, err := rdb.db.ExecContext(ctx, query, url); err != nil {
		return fmt.Errorf("failed to add blacklist url: %w", err)
	}
	return nil
}

// AddKeyword records a sensitive keyword under a category. Duplicates
// are ignored.
func (rdb *RiskDB) AddKeyword(ctx context.Context, category, word string) error {
	query := `INSERT OR IGNORE INTO keywords (category, word) VALUES (?, ?)`
	if _, err := rdb.db.ExecContext(ctx, query, category, word); err != nil {
		return fmt.Errorf("failed to add keyword: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
