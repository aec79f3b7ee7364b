package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"finterm/internal/models"
)

// SQLiteStore implements CandleStore using SQLite. The cache lets repeated
// load commands for the same ticker skip the upstream fetch while the cached
// rows are still fresh.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based candle cache.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for cached OHLCV history
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, interval, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup ON candles(symbol, interval, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles upserts candles into the cache, refreshing fetched_at.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, interval models.Interval, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, interval, timestamp, open, high, low, close, volume, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, string(interval), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume, now)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves cached candles in the given time range, oldest first.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, interval models.Interval, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND interval = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, string(interval), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// Freshness returns the most recent fetched_at for a symbol/interval pair.
// The zero time means nothing is cached.
func (s *SQLiteStore) Freshness(ctx context.Context, symbol string, interval models.Interval) (time.Time, error) {
	var fetched sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(fetched_at) FROM candles WHERE symbol = ? AND interval = ?
	`, symbol, string(interval)).Scan(&fetched)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get cache freshness: %w", err)
	}
	if !fetched.Valid {
		return time.Time{}, nil
	}
	return fetched.Time, nil
}

// Purge deletes rows fetched before the cutoff.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM candles WHERE fetched_at < ?`, olderThan)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}
