package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	icache "QuantPulse/internal/service/cache"
	"QuantPulse/internal/services/layers"
)

func screenerConfig() ScreenerConfig {
	return ScreenerConfig{
		Timeframe:     domrepo.TF15m,
		HistoryBars:   150,
		Workers:       2,
		SymbolTimeout: 5 * time.Second,
	}
}

func TestScreenPartialFailure(t *testing.T) {
	cs := &fakeCandleStore{
		data: map[string][]models.Candle{
			"BTCUSDT": uptrendCandles("BTCUSDT", 100, 0.5, 150),
		},
		errs: map[string]error{"BADUSDT": errProvider},
	}
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	s := NewScreener(cs, pipeline, nil, nil, nil, screenerConfig(), nil)

	results := s.Screen(context.Background(), []string{"BTCUSDT", "BADUSDT"})
	require.Len(t, results, 2)

	assert.Equal(t, "BTCUSDT", results[0].Symbol, "results keep input order")
	assert.False(t, results[0].Failed())
	require.NotNil(t, results[0].Confluence)
	assert.Equal(t, models.LabelBuy, results[0].Confluence.Label)

	assert.Equal(t, "BADUSDT", results[1].Symbol)
	assert.True(t, results[1].Failed(), "one bad symbol must not abort the batch")
	assert.Nil(t, results[1].Confluence)
}

func TestScreenCachesResults(t *testing.T) {
	cs := &fakeCandleStore{data: map[string][]models.Candle{
		"BTCUSDT": uptrendCandles("BTCUSDT", 100, 0.5, 150),
	}}
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	cfg := screenerConfig()
	cfg.CacheTTL = time.Minute
	s := NewScreener(cs, pipeline, icache.NewTTLCache(), nil, nil, cfg, nil)

	first := s.Screen(context.Background(), []string{"BTCUSDT"})
	require.False(t, first[0].FromCache)

	second := s.Screen(context.Background(), []string{"BTCUSDT"})
	assert.True(t, second[0].FromCache, "fresh cache entry short-circuits the pipeline")
	assert.Equal(t, first[0].Confluence.Score, second[0].Confluence.Score)
}

func TestScreenPublishesActionableSignals(t *testing.T) {
	cs := &fakeCandleStore{data: map[string][]models.Candle{
		"BTCUSDT": uptrendCandles("BTCUSDT", 100, 0.5, 150),
		"FLATUSDT": uptrendCandles("FLATUSDT", 100, 0, 150),
	}}
	pub := &capturePublisher{}
	pipeline := NewSignalPipeline(layers.NewDerivedProvider(), pipelineConfig(), nil)
	s := NewScreener(cs, pipeline, nil, pub, nil, screenerConfig(), nil)

	s.Screen(context.Background(), []string{"BTCUSDT", "FLATUSDT"})

	require.Equal(t, 1, pub.count(), "only non-HOLD results are published")
	assert.Equal(t, "BTCUSDT", pub.published[0].Symbol)
}

type fakeMarketData struct {
	books map[string]*models.OrderBookSnapshot
	err   error
}

func (f *fakeMarketData) OrderBook(_ context.Context, symbol string) (*models.OrderBookSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.books[symbol], nil
}

func (f *fakeMarketData) Context(_ context.Context, _ string) (*models.MarketContext, error) {
	return nil, nil
}

func TestScreenFetchesMarketDataForExecutionCheck(t *testing.T) {
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	last := candles[len(candles)-1].Close
	cs := &fakeCandleStore{data: map[string][]models.Candle{"BTCUSDT": candles}}
	md := &fakeMarketData{books: map[string]*models.OrderBookSnapshot{
		"BTCUSDT": {BestBid: last - 0.01, BestAsk: last + 0.01},
	}}
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	s := NewScreener(cs, pipeline, nil, nil, nil, screenerConfig(), nil)
	s.SetMarketData(md)

	results := s.Screen(context.Background(), []string{"BTCUSDT"})
	require.Len(t, results, 1)
	require.False(t, results[0].Failed())
	require.NotNil(t, results[0].Execution, "book from the market-data provider enables the feasibility check")
	assert.True(t, results[0].Execution.OK)
}

func TestScreenMarketDataFailureDegrades(t *testing.T) {
	cs := &fakeCandleStore{data: map[string][]models.Candle{
		"BTCUSDT": uptrendCandles("BTCUSDT", 100, 0.5, 150),
	}}
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	s := NewScreener(cs, pipeline, nil, nil, nil, screenerConfig(), nil)
	s.SetMarketData(&fakeMarketData{err: errProvider})

	results := s.Screen(context.Background(), []string{"BTCUSDT"})
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed(), "market-data failure must not fail the symbol")
	assert.Nil(t, results[0].Execution)
	require.NotNil(t, results[0].Confluence)
}

func TestScreenRecordsMetrics(t *testing.T) {
	cs := &fakeCandleStore{
		data: map[string][]models.Candle{"BTCUSDT": uptrendCandles("BTCUSDT", 100, 0.5, 150)},
		errs: map[string]error{"BADUSDT": errProvider},
	}
	m := newCountingMetrics()
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	s := NewScreener(cs, pipeline, nil, nil, m, screenerConfig(), nil)

	s.Screen(context.Background(), []string{"BTCUSDT", "BADUSDT"})

	assert.Equal(t, 1, m.signals)
	assert.Equal(t, 1, m.durations)
	assert.Equal(t, 1, m.errors["screen"])
}
