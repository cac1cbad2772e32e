package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
)

var t0 = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

// uptrendCandles builds a steady rise with a constant 1.0 bar range so
// ATR settles at 1 and ADX saturates.
func uptrendCandles(symbol string, start, step float64, n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := start + float64(i)*step
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * 15 * time.Minute),
			Symbol:   symbol,
			Open:     c - step/2,
			High:     c + 0.5,
			Low:      c - 0.5,
			Close:    c,
			Volume:   1000,
		}
	}
	return out
}

// fakeCandleStore serves pre-loaded candle sequences per symbol.
type fakeCandleStore struct {
	data map[string][]models.Candle
	errs map[string]error
}

func (f *fakeCandleStore) GetCandles(_ context.Context, symbol string, from, to time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	var out []models.Candle
	for _, c := range f.data[symbol] {
		if !c.OpenTime.Before(from) && !c.OpenTime.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCandleStore) GetLatestNCandles(_ context.Context, symbol string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	cs := f.data[symbol]
	if len(cs) > n {
		cs = cs[len(cs)-n:]
	}
	return cs, nil
}

// fixedLayerProvider always returns the same scores.
type fixedLayerProvider struct {
	scores map[models.Layer]models.LayerScore
	err    error
}

func (f *fixedLayerProvider) Scores(context.Context, string, []models.Candle) (map[models.Layer]models.LayerScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[models.Layer]models.LayerScore, len(f.scores))
	for k, v := range f.scores {
		out[k] = v
	}
	return out, nil
}

func bullishProvider() *fixedLayerProvider {
	return &fixedLayerProvider{scores: map[models.Layer]models.LayerScore{
		models.LayerStructure: {Score: 90, Confidence: models.Conf(1)},
		models.LayerTrend:     {Score: 85, Confidence: models.Conf(0.9)},
	}}
}

var errProvider = errors.New("layer feed unavailable")

// capturePublisher records published results.
type capturePublisher struct {
	mu        sync.Mutex
	published []*models.ScreenResult
	err       error
}

func (p *capturePublisher) PublishSignal(_ context.Context, res *models.ScreenResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, res)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

// countingMetrics tallies recorder calls.
type countingMetrics struct {
	mu        sync.Mutex
	signals   int
	trades    int
	errors    map[string]int
	durations int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: make(map[string]int)}
}

func (m *countingMetrics) RecordSignal(string, string) {
	m.mu.Lock()
	m.signals++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordScreenDuration(string, float64) {
	m.mu.Lock()
	m.durations++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordBacktestTrade(string, string) {
	m.mu.Lock()
	m.trades++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordScore(string, float64) {}
