package repository

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// Publisher delivers actionable signals to downstream consumers
// (alerting, dashboards). Delivery itself is external; the engine only
// pushes structured records.
type Publisher interface {
	PublishSignal(ctx context.Context, res *models.ScreenResult) error
	Close() error
}

// Metrics is the engine's observability contract.
type Metrics interface {
	RecordSignal(symbol, label string)
	RecordScreenDuration(symbol string, seconds float64)
	RecordBacktestTrade(symbol, reason string)
	RecordError(kind string)
	RecordScore(symbol string, score float64)
}
