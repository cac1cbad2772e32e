package repository

import (
	"context"
	"time"

	"QuantPulse/internal/domain/models"
)

// CandleStore provides read-only access to OHLCV candles. Fetching from
// exchanges is an external concern; the engine only reads what a
// collector already wrote.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}
