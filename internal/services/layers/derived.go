// Package layers ships the built-in layer provider that derives trend,
// momentum and price-action scores from the indicator snapshot. It lets
// the pipeline run self-contained when no external layer feeds are
// wired; externally supplied scores take precedence per layer.
package layers

import (
	"context"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/indicators"
)

type DerivedProvider struct{}

func NewDerivedProvider() *DerivedProvider { return &DerivedProvider{} }

var _ service.LayerProvider = (*DerivedProvider)(nil)

// Scores derives indicator-based layer scores for the window. Layers
// whose inputs lack history are omitted entirely rather than reported
// with a fabricated neutral confidence.
func (p *DerivedProvider) Scores(_ context.Context, _ string, candles []models.Candle) (map[models.Layer]models.LayerScore, error) {
	snap := indicators.Compute(candles)
	out := make(map[models.Layer]models.LayerScore, 3)

	if trend, ok := trendScore(snap); ok {
		out[models.LayerTrend] = trend
	}
	if mom, ok := momentumScore(snap); ok {
		out[models.LayerMomentum] = mom
	}
	if pa, ok := priceActionScore(snap); ok {
		out[models.LayerPriceAction] = pa
	}
	return out, nil
}

// trendScore leans on the EMA cross and DI direction, scaled by trend
// strength (ADX).
func trendScore(snap indicators.Snapshot) (models.LayerScore, bool) {
	if !indicators.Valid(snap.ADX14) || !indicators.Valid(snap.EMA20) || !indicators.Valid(snap.EMA50) {
		return models.LayerScore{}, false
	}
	score := 50.0
	lean := snap.ADX14
	if lean > 25 {
		lean = 25
	}
	if snap.EMA20 > snap.EMA50 {
		score += lean
	} else if snap.EMA20 < snap.EMA50 {
		score -= lean
	}
	if snap.PlusDI > snap.MinusDI {
		score += 10
	} else if snap.PlusDI < snap.MinusDI {
		score -= 10
	}
	conf := snap.ADX14 / 50
	if conf > 1 {
		conf = 1
	}
	return models.LayerScore{Score: clamp(score), Confidence: models.Conf(conf)}, true
}

// momentumScore blends RSI with the stochastic %K.
func momentumScore(snap indicators.Snapshot) (models.LayerScore, bool) {
	if !indicators.Valid(snap.RSI14) {
		return models.LayerScore{}, false
	}
	score := snap.RSI14
	if indicators.Valid(snap.StochK) {
		score = 0.7*snap.RSI14 + 0.3*snap.StochK
	}
	if indicators.Valid(snap.MACDHist) {
		if snap.MACDHist > 0 {
			score += 5
		} else if snap.MACDHist < 0 {
			score -= 5
		}
	}
	return models.LayerScore{Score: clamp(score), Confidence: models.Conf(0.8)}, true
}

// priceActionScore maps CCI deviation onto a bounded 0-100 lean.
func priceActionScore(snap indicators.Snapshot) (models.LayerScore, bool) {
	if !indicators.Valid(snap.CCI20) {
		return models.LayerScore{}, false
	}
	lean := snap.CCI20 / 4
	if lean > 30 {
		lean = 30
	}
	if lean < -30 {
		lean = -30
	}
	return models.LayerScore{Score: clamp(50 + lean), Confidence: models.Conf(0.6)}, true
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
