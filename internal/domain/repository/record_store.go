package repository

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// RecordStore is the append-only persistence contract for backtest and
// screening records. Inserts are idempotent on the natural key
// (symbol, timeframe, ts): a duplicate insert is a no-op, not an error,
// so a retried or resumed run never double-counts trades. Records are
// never updated or deleted.
type RecordStore interface {
	// InsertSignal stores a signal record and returns its id. A
	// duplicate natural key returns the existing id.
	InsertSignal(ctx context.Context, rec models.SignalRecord) (string, error)

	// InsertExecution stores the execution referencing a signal id.
	InsertExecution(ctx context.Context, rec models.ExecutionRecord) error

	// InsertOutcome stores the outcome referencing a signal id.
	InsertOutcome(ctx context.Context, rec models.OutcomeRecord) error

	// History returns joined signal/execution/outcome rows for a
	// symbol+timeframe, ascending by time.
	History(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.TradeHistoryRow, error)

	// Summary aggregates outcomes grouped by symbol+timeframe.
	Summary(ctx context.Context) ([]models.TradeSummary, error)
}
