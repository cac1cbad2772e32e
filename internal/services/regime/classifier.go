// Package regime classifies market conditions from an indicator
// snapshot and maps each regime onto its scoring policy.
package regime

import (
	"fmt"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/services/indicators"
)

// Hand-tuned regime thresholds. These are policy constants, not derived
// quantities; do not recompute them.
var regimeThresholds = map[models.RegimeKind]models.Thresholds{
	models.RegimeTrending: {Buy: 60, Sell: 40},
	models.RegimeRanging:  {Buy: 68, Sell: 32},
	models.RegimeVolatile: {Buy: 70, Sell: 30},
	models.RegimeQuiet:    {Buy: 66, Sell: 34},
}

// Hand-tuned per-layer weight modifiers. Layers absent from a table keep
// weight 1.0.
var regimeWeights = map[models.RegimeKind]map[models.Layer]float64{
	models.RegimeTrending: {
		models.LayerTrend:       1.3,
		models.LayerMomentum:    1.2,
		models.LayerStructure:   1.1,
		models.LayerRetracement: 0.8,
		models.LayerFunding:     0.9,
	},
	models.RegimeRanging: {
		models.LayerRetracement:  1.3,
		models.LayerStructure:    1.2,
		models.LayerPriceAction:  1.1,
		models.LayerMomentum:     0.8,
		models.LayerTrend:        0.7,
		models.LayerOpenInterest: 0.9,
	},
	models.RegimeVolatile: {
		models.LayerOrderFlow:    1.3,
		models.LayerOpenInterest: 1.2,
		models.LayerFunding:      1.1,
		models.LayerStructure:    0.9,
		models.LayerMomentum:     0.9,
		models.LayerTrend:        0.8,
		models.LayerRetracement:  0.7,
	},
	models.RegimeQuiet: {
		models.LayerStructure:   1.2,
		models.LayerPriceAction: 1.2,
		models.LayerRetracement: 1.1,
		models.LayerTrend:       0.9,
		models.LayerOrderFlow:   0.9,
		models.LayerMomentum:    0.8,
	},
}

// Classify derives the regime advice from the latest indicator snapshot
// and close price. Checks run in a fixed order and a later match
// overrides an earlier one, so "volatile" is the final override. With
// insufficient indicator history it falls back to the neutral ranging
// policy.
func Classify(snap indicators.Snapshot, lastClose float64) models.RegimeAdvice {
	kind := models.RegimeRanging
	reason := "no dominant condition, defaulting to ranging"

	if !indicators.Valid(snap.ADX14) || !indicators.Valid(snap.BBWidthPct) || lastClose <= 0 {
		return adviceFor(kind, "insufficient indicator history")
	}

	atrPct := 0.0
	if indicators.Valid(snap.ATR14) {
		atrPct = snap.ATR14 / lastClose * 100
	}
	bw := snap.BBWidthPct

	if snap.ADX14 < 20 && bw > 0 && bw < 6 {
		kind = models.RegimeRanging
		reason = fmt.Sprintf("weak trend (ADX %.1f) with narrow bands (%.1f%%)", snap.ADX14, bw)
	}
	if atrPct < 1.0 && bw < 5 && snap.ADX14 < 18 {
		kind = models.RegimeQuiet
		reason = fmt.Sprintf("low volatility (ATR %.2f%%, bands %.1f%%)", atrPct, bw)
	}
	if snap.ADX14 >= 25 && emaDirectional(snap) {
		kind = models.RegimeTrending
		reason = fmt.Sprintf("strong directional trend (ADX %.1f)", snap.ADX14)
	}
	if atrPct > 2.5 || bw > 12 {
		kind = models.RegimeVolatile
		reason = fmt.Sprintf("expanded volatility (ATR %.2f%%, bands %.1f%%)", atrPct, bw)
	}

	return adviceFor(kind, reason)
}

// emaDirectional reports whether the EMA20/EMA50 relation points one
// way rather than being mixed or unavailable.
func emaDirectional(snap indicators.Snapshot) bool {
	if !indicators.Valid(snap.EMA20) || !indicators.Valid(snap.EMA50) {
		return false
	}
	return snap.EMA20 != snap.EMA50
}

func adviceFor(kind models.RegimeKind, reason string) models.RegimeAdvice {
	weights := make(map[models.Layer]float64, len(regimeWeights[kind]))
	for l, w := range regimeWeights[kind] {
		weights[l] = w
	}
	return models.RegimeAdvice{
		Regime:     kind,
		Reason:     reason,
		Thresholds: regimeThresholds[kind],
		Weights:    weights,
	}
}
