package models

import "time"

// SignalLabel is the aggregated trade recommendation.
type SignalLabel string

const (
	LabelBuy  SignalLabel = "BUY"
	LabelSell SignalLabel = "SELL"
	LabelHold SignalLabel = "HOLD"
)

// LayerContribution records how one layer entered the weighted average.
type LayerContribution struct {
	Layer    Layer
	Score    float64
	Weight   float64
	Weighted float64
}

// ConfluenceResult is the normalized multi-layer score with its label
// and the regime snapshot both were evaluated against. Score is always
// clamped to [0,100]; Label is derived only from Score and Thresholds.
type ConfluenceResult struct {
	Symbol     string
	Timestamp  time.Time
	Score      float64
	Label      SignalLabel
	Regime     RegimeKind
	Reason     string
	Thresholds Thresholds
	Breakdown  []LayerContribution
	Tilt       float64
}

// LabelFor maps a score onto BUY/SELL/HOLD against the given thresholds.
func LabelFor(score float64, th Thresholds) SignalLabel {
	switch {
	case score >= th.Buy:
		return LabelBuy
	case score <= th.Sell:
		return LabelSell
	default:
		return LabelHold
	}
}
