// Package htf computes higher-timeframe directional biases and uses
// them to modulate a confluence result.
package htf

import (
	"math"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/services/indicators"
)

// swingLookback is the bar offset used for the swing bias:
// sign(close[-1] - close[-30]).
const swingLookback = 30

// agreementBonus is added to the raw strength when the EMA trend points
// the same way as the swing move.
const agreementBonus = 2

// TimeframeBias computes the bias for one higher timeframe
// independently of the others. With fewer than swingLookback candles
// the bias is neutral with zero strength.
func TimeframeBias(candles []models.Candle) models.TimeframeBias {
	closes := models.Closes(candles)
	emaTrend := emaTrend(closes)

	if len(closes) < swingLookback {
		return models.TimeframeBias{Bias: models.BiasNeutral, EMATrend: emaTrend}
	}

	last := closes[len(closes)-1]
	ref := closes[len(closes)-swingLookback]
	if ref == 0 || last == ref {
		return models.TimeframeBias{Bias: models.BiasNeutral, EMATrend: emaTrend}
	}

	bias := models.BiasBullish
	if last < ref {
		bias = models.BiasBearish
	}

	relMove := math.Abs(last-ref) / ref
	raw := relMove * 200
	if (bias == models.BiasBullish && emaTrend == "up") || (bias == models.BiasBearish && emaTrend == "down") {
		raw += agreementBonus
	}
	strength := int(math.Round(raw))
	if strength > 10 {
		strength = 10
	}

	return models.TimeframeBias{Bias: bias, Strength: strength, EMATrend: emaTrend}
}

// Combine merges the 4h and 1h biases. Agreement wins outright; a lone
// non-neutral side wins over a neutral one; when both are non-neutral
// and opposed, the stronger side wins with the 4h view breaking ties.
// Combined strength is round(0.6*h4 + 0.4*h1), floored at 1.
func Combine(h4, h1 models.TimeframeBias) models.CombinedBias {
	strength := int(math.Round(0.6*float64(h4.Strength) + 0.4*float64(h1.Strength)))
	if strength < 1 {
		strength = 1
	}

	var bias models.BiasDirection
	switch {
	case h4.Bias == h1.Bias:
		bias = h4.Bias
	case h4.Bias == models.BiasNeutral:
		bias = h1.Bias
	case h1.Bias == models.BiasNeutral:
		bias = h4.Bias
	case h1.Strength > h4.Strength:
		bias = h1.Bias
	default:
		bias = h4.Bias
	}

	return models.CombinedBias{Bias: bias, Strength: strength}
}

// Compute derives the full higher-timeframe bias report from 4h and 1h
// candle sequences.
func Compute(h4Candles, h1Candles []models.Candle) models.HTFBias {
	h4 := TimeframeBias(h4Candles)
	h1 := TimeframeBias(h1Candles)
	return models.HTFBias{H4: h4, H1: h1, Combined: Combine(h4, h1)}
}

// Modulate tilts a confluence result toward or against the combined
// higher-timeframe bias. The tilt magnitude is
// clamp(round(strength/2), 2, 6); agreement with the lower-timeframe
// structural bias adds it (capped at 100), disagreement subtracts it
// (floored at 0), and a neutral side applies no tilt. The label is then
// recomputed against the unmodified thresholds.
func Modulate(res models.ConfluenceResult, ltfBias models.BiasDirection, combined models.CombinedBias) models.ConfluenceResult {
	if combined.Bias == models.BiasNeutral || ltfBias == models.BiasNeutral {
		return res
	}

	tilt := math.Round(float64(combined.Strength) / 2)
	if tilt < 2 {
		tilt = 2
	}
	if tilt > 6 {
		tilt = 6
	}

	score := res.Score
	if ltfBias == combined.Bias {
		score += tilt
		if score > 100 {
			score = 100
		}
		res.Tilt += tilt
	} else {
		score -= tilt
		if score < 0 {
			score = 0
		}
		res.Tilt -= tilt
	}

	res.Score = score
	res.Label = models.LabelFor(score, res.Thresholds)
	return res
}

// emaTrend compares EMA20 to EMA50 on the timeframe's own closes.
func emaTrend(closes []float64) string {
	e20 := indicators.Last(indicators.EMA(closes, indicators.EMAFastPeriod))
	e50 := indicators.Last(indicators.EMA(closes, indicators.EMASlowPeriod))
	if !indicators.Valid(e20) || !indicators.Valid(e50) {
		return "flat"
	}
	switch {
	case e20 > e50:
		return "up"
	case e20 < e50:
		return "down"
	default:
		return "flat"
	}
}
