// Package confluence combines external layer scores into one normalized
// 0-100 signal under the active regime's weighting policy.
package confluence

import (
	"time"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/services/indicators"
)

// neutralScore is used when no layer carries a confidence; it always
// labels HOLD under every regime's thresholds.
const neutralScore = 50.0

// Aggregate weight-combines the layer scores, applies the regime tilt,
// clamps to [0,100], and labels the result against the same regime
// advice used for tilting. Layers with a nil confidence are excluded
// from the weighted average, not treated as zero.
func Aggregate(symbol string, scores map[models.Layer]models.LayerScore, advice models.RegimeAdvice, snap indicators.Snapshot, now time.Time) models.ConfluenceResult {
	var weightedSum, weightSum float64
	breakdown := make([]models.LayerContribution, 0, len(scores))
	for _, layer := range models.AllLayers() {
		ls, ok := scores[layer]
		if !ok || ls.Confidence == nil {
			continue
		}
		w := advice.WeightFor(layer)
		weightedSum += ls.Score * w
		weightSum += w
		breakdown = append(breakdown, models.LayerContribution{
			Layer:    layer,
			Score:    ls.Score,
			Weight:   w,
			Weighted: ls.Score * w,
		})
	}

	score := neutralScore
	if weightSum > 0 {
		score = weightedSum / weightSum
	}

	tilt := regimeTilt(advice.Regime, scores, snap)
	score = clampScore(score + tilt)

	return models.ConfluenceResult{
		Symbol:     symbol,
		Timestamp:  now,
		Score:      score,
		Label:      models.LabelFor(score, advice.Thresholds),
		Regime:     advice.Regime,
		Reason:     advice.Reason,
		Thresholds: advice.Thresholds,
		Breakdown:  breakdown,
		Tilt:       tilt,
	}
}

// regimeTilt returns the small deterministic nudge (always within ±3
// points) applied on top of the weighted average. The rules key off the
// regime, the structure layer's bias, and momentum extremes.
func regimeTilt(kind models.RegimeKind, scores map[models.Layer]models.LayerScore, snap indicators.Snapshot) float64 {
	structBias := StructureBias(scores)
	rsi := snap.RSI14

	switch kind {
	case models.RegimeTrending:
		// ride structure alignment hard when trending
		switch structBias {
		case models.BiasBullish:
			return 3
		case models.BiasBearish:
			return -3
		}
	case models.RegimeRanging:
		// fade momentum extremes inside a range
		if indicators.Valid(rsi) {
			if rsi >= 70 {
				return -2
			}
			if rsi <= 30 {
				return 2
			}
		}
	case models.RegimeVolatile:
		// dampen chasing into stretched momentum
		if indicators.Valid(rsi) {
			if rsi >= 75 {
				return -1
			}
			if rsi <= 25 {
				return 1
			}
		}
	case models.RegimeQuiet:
		switch structBias {
		case models.BiasBullish:
			return 1
		case models.BiasBearish:
			return -1
		}
	}
	return 0
}

// StructureBias reads the structure layer's directional lean: bullish
// at or above 65, bearish at or below 35, otherwise neutral.
func StructureBias(scores map[models.Layer]models.LayerScore) models.BiasDirection {
	ls, ok := scores[models.LayerStructure]
	if !ok || ls.Confidence == nil {
		return models.BiasNeutral
	}
	switch {
	case ls.Score >= 65:
		return models.BiasBullish
	case ls.Score <= 35:
		return models.BiasBearish
	default:
		return models.BiasNeutral
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
