// Package risk sizes positions from ATR and validates execution
// feasibility against an order-book snapshot.
package risk

import (
	"math"
	"time"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/services/indicators"
)

// Params is the risk and cost configuration supplied by the caller.
type Params struct {
	AccountEquity   float64
	RiskPerTradePct float64
	ATRStopMultiple float64
	MinNotional     float64
	FeeRate         float64
	SlippageBps     float64
	SpreadBps       float64
}

// BuildSignal turns a label and entry price into a risk-sized tradable
// signal. The stop sits ATRStopMultiple*ATR away from entry, target 1
// at 1R and target 2 at 2R. The sizing fields are all nil together when
// ATR is unavailable or the configuration is invalid; they are never
// partially populated.
func BuildSignal(symbol string, label models.SignalLabel, entry, atr float64, ts time.Time, p Params) models.TradableSignal {
	sig := models.TradableSignal{
		Symbol:    symbol,
		Timestamp: ts,
		Side:      models.SideForLabel(label),
		Valid:     true,
	}
	if sig.Side == models.SideNone {
		return sig
	}

	if v := validateParams(p); len(v) > 0 {
		sig.Valid = false
		sig.Violations = v
		return sig
	}
	if !indicators.Valid(atr) || atr <= 0 {
		sig.Valid = false
		sig.Violations = []string{"atr unavailable"}
		return sig
	}
	if entry <= 0 {
		sig.Valid = false
		sig.Violations = []string{"entry price unavailable"}
		return sig
	}

	dist := p.ATRStopMultiple * atr
	var sl, tp1, tp2 float64
	if sig.Side == models.SideLong {
		sl = entry - dist
		tp1 = entry + dist
		tp2 = entry + 2*dist
	} else {
		sl = entry + dist
		tp1 = entry - dist
		tp2 = entry - 2*dist
	}

	riskAmount := p.AccountEquity * p.RiskPerTradePct / 100
	qty := riskAmount / math.Abs(entry-sl)
	if p.MinNotional > 0 && qty*entry < p.MinNotional {
		qty = p.MinNotional / entry
	}

	rr1 := math.Abs(tp1-entry) / math.Abs(entry-sl)
	rr2 := math.Abs(tp2-entry) / math.Abs(entry-sl)

	notional := entry * qty
	sig.Entry = &entry
	sig.SL = &sl
	sig.TP1 = &tp1
	sig.TP2 = &tp2
	sig.Qty = &qty
	sig.RR1 = &rr1
	sig.RR2 = &rr2
	sig.Costs = models.Costs{
		Fees:     notional * p.FeeRate * 2,
		Slippage: notional * p.SlippageBps / 10000,
		Spread:   notional * p.SpreadBps / 10000,
	}
	return sig
}

func validateParams(p Params) []string {
	var v []string
	if p.AccountEquity <= 0 {
		v = append(v, "accountEquity must be positive")
	}
	if p.RiskPerTradePct <= 0 {
		v = append(v, "riskPerTradePct must be positive")
	}
	if p.ATRStopMultiple <= 0 {
		v = append(v, "atrStopMultiple must be positive")
	}
	return v
}
