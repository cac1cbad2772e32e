package models

import (
	"fmt"
	"time"
)

// RecordKey is the natural key shared by the three backtest record
// types. Identity is (symbol, timeframe, ts) rather than an
// autoincrement id, so replays and retries reconstruct the exact same
// keys.
type RecordKey struct {
	Symbol    string
	Timeframe string
	Timestamp time.Time
}

// ID renders the key as the record identifier used across stores.
func (k RecordKey) ID() string {
	return fmt.Sprintf("%s:%s:%d", k.Symbol, k.Timeframe, k.Timestamp.Unix())
}

// SignalRecord is the persisted form of one emitted signal. One record
// per (ts, symbol, timeframe); duplicate inserts are no-ops.
type SignalRecord struct {
	Key    RecordKey
	Label  SignalLabel
	Score  float64
	Regime RegimeKind
	Bias   BiasDirection
}

// ExecutionRecord is the simulated (or recommended) entry for a signal.
// At most one per signal, created only when the label is not HOLD.
type ExecutionRecord struct {
	SignalID string
	Key      RecordKey
	Side     Side
	Entry    float64
	SL       float64
	TP1      float64
	TP2      float64
	Qty      float64
	Costs    Costs
}

// OutcomeRecord is the realized exit of a simulated trade. At most one
// per signal, created when an exit occurs.
type OutcomeRecord struct {
	SignalID   string
	Key        RecordKey
	ExitTime   time.Time
	ExitPrice  float64
	ExitReason string
	PnL        float64
	RMultiple  float64
}

// Exit reasons written into OutcomeRecord.ExitReason.
const (
	ExitStop     = "stop"
	ExitTarget   = "tp1"
	ExitBarClose = "bar-close"
)

// TradeHistoryRow is one joined signal/execution/outcome row for the
// reporting read side.
type TradeHistoryRow struct {
	Signal    SignalRecord
	Execution *ExecutionRecord
	Outcome   *OutcomeRecord
}

// TradeSummary aggregates outcomes per symbol+timeframe.
type TradeSummary struct {
	Symbol    string
	Timeframe string
	Trades    int
	Wins      int
	HitRate   float64
	AvgPnL    float64
	TotalPnL  float64
}
