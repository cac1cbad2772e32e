package models

import "time"

// Side is the direction of a tradable signal.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
	SideNone  Side = "none"
)

// SideForLabel maps a confluence label onto a trade side. Side is none
// iff the label is HOLD.
func SideForLabel(l SignalLabel) Side {
	switch l {
	case LabelBuy:
		return SideLong
	case LabelSell:
		return SideShort
	default:
		return SideNone
	}
}

// Costs captures the round-trip friction priced into a signal.
type Costs struct {
	Fees     float64
	Slippage float64
	Spread   float64
}

// TradableSignal is the risk-sized output of the pipeline. The sizing
// fields (Entry, SL, TP1, TP2, Qty, RR1, RR2) are all nil together when
// ATR is unavailable, or all populated together; partial population is
// an invariant violation.
type TradableSignal struct {
	Symbol     string
	Timestamp  time.Time
	Side       Side
	Entry      *float64
	SL         *float64
	TP1        *float64
	TP2        *float64
	Qty        *float64
	RR1        *float64
	RR2        *float64
	Costs      Costs
	Valid      bool
	Violations []string
}

// Sized reports whether the sizing fields are populated.
func (s TradableSignal) Sized() bool { return s.Entry != nil }
