package regime

import (
	"testing"

	"QuantPulse/internal/domain/models"
	"QuantPulse/internal/services/indicators"
)

func snap(adx, bw, atr, ema20, ema50 float64) indicators.Snapshot {
	return indicators.Snapshot{
		ADX14:      adx,
		BBWidthPct: bw,
		ATR14:      atr,
		EMA20:      ema20,
		EMA50:      ema50,
		RSI14:      55,
	}
}

func TestClassifyInsufficientHistory(t *testing.T) {
	advice := Classify(indicators.Snapshot{ADX14: indicators.NaN, BBWidthPct: indicators.NaN}, 100)
	if advice.Regime != models.RegimeRanging {
		t.Fatalf("expected ranging fallback, got %s", advice.Regime)
	}
	if advice.Thresholds.Buy != 68 || advice.Thresholds.Sell != 32 {
		t.Fatalf("unexpected fallback thresholds %+v", advice.Thresholds)
	}
}

func TestClassifyRanging(t *testing.T) {
	advice := Classify(snap(15, 4, 1.5, 100, 100), 100)
	if advice.Regime != models.RegimeRanging {
		t.Fatalf("expected ranging, got %s (%s)", advice.Regime, advice.Reason)
	}
}

func TestClassifyQuietOverridesRanging(t *testing.T) {
	// satisfies both the ranging and quiet conditions; quiet is checked later
	advice := Classify(snap(15, 4, 0.5, 100, 100), 100)
	if advice.Regime != models.RegimeQuiet {
		t.Fatalf("expected quiet, got %s (%s)", advice.Regime, advice.Reason)
	}
}

func TestClassifyTrending(t *testing.T) {
	advice := Classify(snap(30, 8, 1.5, 105, 100), 100)
	if advice.Regime != models.RegimeTrending {
		t.Fatalf("expected trending, got %s (%s)", advice.Regime, advice.Reason)
	}
	if advice.Thresholds.Buy != 60 || advice.Thresholds.Sell != 40 {
		t.Fatalf("unexpected trending thresholds %+v", advice.Thresholds)
	}
}

func TestClassifyVolatileOverridesTrending(t *testing.T) {
	advice := Classify(snap(30, 8, 3.0, 105, 100), 100)
	if advice.Regime != models.RegimeVolatile {
		t.Fatalf("expected volatile override, got %s (%s)", advice.Regime, advice.Reason)
	}
	if advice.Thresholds.Buy != 70 || advice.Thresholds.Sell != 30 {
		t.Fatalf("unexpected volatile thresholds %+v", advice.Thresholds)
	}
}

func TestClassifyVolatileOverridesRanging(t *testing.T) {
	// weak ADX and narrow bands match ranging first, but the expanded ATR
	// runs later and wins
	advice := Classify(snap(15, 4, 3.0, 100, 100), 100)
	if advice.Regime != models.RegimeVolatile {
		t.Fatalf("expected volatile override, got %s (%s)", advice.Regime, advice.Reason)
	}
}

func TestClassifyNonDirectionalEMAIsNotTrending(t *testing.T) {
	advice := Classify(snap(30, 8, 1.5, 100, 100), 100)
	if advice.Regime == models.RegimeTrending {
		t.Fatalf("flat EMAs must not classify trending")
	}
}

func TestAdviceWeightsAreCopied(t *testing.T) {
	a := Classify(snap(30, 8, 1.5, 105, 100), 100)
	a.Weights[models.LayerTrend] = 99
	b := Classify(snap(30, 8, 1.5, 105, 100), 100)
	if b.Weights[models.LayerTrend] == 99 {
		t.Fatalf("advice weights alias the shared table")
	}
}

func TestWeightForDefault(t *testing.T) {
	a := Classify(snap(30, 8, 1.5, 105, 100), 100)
	if got := a.WeightFor(models.LayerOpenInterest); got != 1.0 {
		t.Fatalf("unlisted layer weight = %v, want 1.0", got)
	}
}
