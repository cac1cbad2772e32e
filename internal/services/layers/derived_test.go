package layers

import (
	"context"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
)

func trendCandles(start, step float64, n int) []models.Candle {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := start + float64(i)*step
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * 15 * time.Minute),
			Symbol:   "BTCUSDT",
			Open:     c - 0.2, High: c + 0.5, Low: c - 0.5, Close: c,
			Volume: 1000,
		}
	}
	return out
}

func TestScoresShortWindowOmitsLayers(t *testing.T) {
	p := NewDerivedProvider()
	scores, err := p.Scores(context.Background(), "BTCUSDT", trendCandles(100, 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("short window should omit every layer, got %v", scores)
	}
}

func TestScoresUptrend(t *testing.T) {
	p := NewDerivedProvider()
	scores, err := p.Scores(context.Background(), "BTCUSDT", trendCandles(100, 0.5, 200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trend, ok := scores[models.LayerTrend]
	if !ok {
		t.Fatalf("expected trend layer, got %v", scores)
	}
	if trend.Score <= 50 {
		t.Fatalf("uptrend trend score = %v, want > 50", trend.Score)
	}
	if trend.Confidence == nil || *trend.Confidence <= 0 || *trend.Confidence > 1 {
		t.Fatalf("trend confidence out of range: %v", trend.Confidence)
	}

	mom, ok := scores[models.LayerMomentum]
	if !ok || mom.Score <= 50 {
		t.Fatalf("uptrend momentum score = %+v, want > 50", mom)
	}

	if _, ok := scores[models.LayerPriceAction]; !ok {
		t.Fatalf("expected price action layer with enough history")
	}
}

func TestScoresDowntrendLeansBearish(t *testing.T) {
	p := NewDerivedProvider()
	scores, _ := p.Scores(context.Background(), "BTCUSDT", trendCandles(300, -0.5, 200))

	if trend := scores[models.LayerTrend]; trend.Score >= 50 {
		t.Fatalf("downtrend trend score = %v, want < 50", trend.Score)
	}
	if mom := scores[models.LayerMomentum]; mom.Score >= 50 {
		t.Fatalf("downtrend momentum score = %v, want < 50", mom.Score)
	}
}

func TestScoresAreBounded(t *testing.T) {
	p := NewDerivedProvider()
	scores, _ := p.Scores(context.Background(), "BTCUSDT", trendCandles(100, 2, 200))
	for layer, ls := range scores {
		if ls.Score < 0 || ls.Score > 100 {
			t.Fatalf("%s score %v outside [0,100]", layer, ls.Score)
		}
	}
}
