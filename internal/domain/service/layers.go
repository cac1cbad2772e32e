package service

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// LayerProvider supplies per-layer scores for a symbol given its candle
// window. External analysis layers (structure, order-flow, funding, ...)
// implement this; the engine also ships a derived provider so the
// pipeline can run self-contained.
type LayerProvider interface {
	Scores(ctx context.Context, symbol string, candles []models.Candle) (map[models.Layer]models.LayerScore, error)
}

// MarketDataProvider supplies the optional market context used by the
// execution feasibility check. Implementations live outside the engine.
type MarketDataProvider interface {
	OrderBook(ctx context.Context, symbol string) (*models.OrderBookSnapshot, error)
	Context(ctx context.Context, symbol string) (*models.MarketContext, error)
}
