// Package store provides the local candle cache backing the load command.
package store

import (
	"context"
	"time"

	"finterm/internal/models"
)

// CandleStore defines the interface for candle history persistence.
type CandleStore interface {
	SaveCandles(ctx context.Context, symbol string, interval models.Interval, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, interval models.Interval, from, to time.Time) ([]models.Candle, error)
	Freshness(ctx context.Context, symbol string, interval models.Interval) (time.Time, error)
	Purge(ctx context.Context, olderThan time.Time) error
	Close() error
}
