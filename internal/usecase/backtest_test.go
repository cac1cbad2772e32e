package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/repository"
)

func backtestConfig() BacktestConfig {
	return BacktestConfig{
		Timeframe:   domrepo.TF15m,
		MinHistory:  100,
		StartEquity: 10000,
	}
}

func newTestBacktester(store *repository.MemoryRecordStore, candles []models.Candle) *Backtester {
	cs := &fakeCandleStore{data: map[string][]models.Candle{"BTCUSDT": candles}}
	pipeline := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	return NewBacktester(cs, store, pipeline, nil, backtestConfig(), nil)
}

func TestRunSeriesUptrendWins(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	b := newTestBacktester(store, candles)

	report, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)

	assert.Equal(t, 150, report.Bars)
	require.Positive(t, report.Trades, "a persistent uptrend must produce trades")
	assert.GreaterOrEqual(t, report.Signals, report.Trades)
	assert.Equal(t, 1.0, report.Performance.HitRate, "every long in a steady rise reaches 1R")
	assert.Greater(t, report.Performance.FinalEquity, report.Performance.StartEquity)
	assert.Len(t, report.EquityCurve, report.Trades+1)
}

func TestRunSeriesEntersAtNextBarOpen(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	b := newTestBacktester(store, candles)

	_, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)

	rows, err := store.History(context.Background(), "BTCUSDT", domrepo.TF15m, 0)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	byTime := make(map[time.Time]models.Candle, len(candles))
	for i, c := range candles {
		if i+1 < len(candles) {
			byTime[c.OpenTime] = candles[i+1]
		}
	}
	for _, row := range rows {
		if row.Execution == nil {
			continue
		}
		next, ok := byTime[row.Signal.Key.Timestamp]
		require.True(t, ok)
		assert.Equal(t, next.Open, row.Execution.Entry,
			"entry must use the bar after the signal, not the signal bar")
	}
}

func TestRunSeriesSlippageAdjustsEntry(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	cs := &fakeCandleStore{data: map[string][]models.Candle{"BTCUSDT": candles}}
	cfg := backtestConfig()
	cfg.SlippageBps = 10
	b := NewBacktester(cs, store, NewSignalPipeline(bullishProvider(), pipelineConfig(), nil), nil, cfg, nil)

	_, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)

	rows, _ := store.History(context.Background(), "BTCUSDT", domrepo.TF15m, 0)
	var checked bool
	for i, c := range candles[:len(candles)-1] {
		for _, row := range rows {
			if row.Execution != nil && row.Signal.Key.Timestamp.Equal(c.OpenTime) {
				assert.InDelta(t, candles[i+1].Open*1.001, row.Execution.Entry, 1e-9)
				checked = true
			}
		}
	}
	assert.True(t, checked)
}

func TestRunSeriesRerunIsIdempotent(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	b := newTestBacktester(store, candles)

	first, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)
	stored := store.Len()

	second, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)

	assert.Equal(t, stored, store.Len(), "replaying the same window must not duplicate records")
	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.Signals, second.Signals)
	assert.Equal(t, first.Performance, second.Performance)
}

func TestRunSeriesNoOverlappingPositions(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	b := newTestBacktester(store, candles)

	_, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)

	rows, _ := store.History(context.Background(), "BTCUSDT", domrepo.TF15m, 0)
	var lastExit time.Time
	for _, row := range rows {
		if row.Outcome == nil {
			continue
		}
		if !lastExit.IsZero() {
			assert.True(t, row.Signal.Key.Timestamp.After(lastExit),
				"a new position may only open after the previous one exited")
		}
		lastExit = row.Outcome.ExitTime
	}
}

func TestRunSeriesTooFewBarsIsEmptyReport(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 50)
	b := newTestBacktester(store, candles)

	report, err := b.RunSeries(context.Background(), "BTCUSDT", candles)
	require.NoError(t, err)
	assert.Zero(t, report.Signals)
	assert.Zero(t, report.Trades)
	assert.Equal(t, 10000.0, report.Performance.FinalEquity)
}

func TestSimulateStopWinsInsideOneBar(t *testing.T) {
	b := NewBacktester(nil, repository.NewMemoryRecordStore(), nil, nil, backtestConfig(), nil)

	entry, sl, tp1, tp2, qty := 100.0, 98.0, 102.0, 104.0, 1.0
	sig := &models.TradableSignal{
		Side: models.SideLong, Entry: &entry, SL: &sl, TP1: &tp1, TP2: &tp2, Qty: &qty, Valid: true,
	}
	candles := []models.Candle{
		{OpenTime: t0, Open: 100, High: 100.5, Low: 99.5, Close: 100},
		// entry bar touches both the stop and the target; stop wins
		{OpenTime: t0.Add(15 * time.Minute), Open: 100, High: 103, Low: 97, Close: 101},
	}

	tr, exitIdx, ok := b.simulate(candles, 0, sig)
	require.True(t, ok)
	assert.Equal(t, 1, exitIdx)
	assert.Equal(t, models.ExitStop, tr.exitReason)
	assert.InDelta(t, 98.0, tr.exitPrice, 1e-9)
	assert.InDelta(t, -2.0, tr.pnl, 1e-9)
	assert.InDelta(t, -1.0, tr.rMultiple, 1e-9)
}

func TestSimulateBarCloseFallback(t *testing.T) {
	b := NewBacktester(nil, repository.NewMemoryRecordStore(), nil, nil, backtestConfig(), nil)

	entry, sl, tp1, tp2, qty := 100.0, 98.0, 102.0, 104.0, 1.0
	sig := &models.TradableSignal{
		Side: models.SideLong, Entry: &entry, SL: &sl, TP1: &tp1, TP2: &tp2, Qty: &qty, Valid: true,
	}
	candles := []models.Candle{
		{OpenTime: t0, Open: 100, High: 100.5, Low: 99.5, Close: 100},
		{OpenTime: t0.Add(15 * time.Minute), Open: 100, High: 100.8, Low: 99.2, Close: 100.3},
		{OpenTime: t0.Add(30 * time.Minute), Open: 100.3, High: 101, Low: 99.6, Close: 100.6},
	}

	tr, exitIdx, ok := b.simulate(candles, 0, sig)
	require.True(t, ok)
	assert.Equal(t, 2, exitIdx)
	assert.Equal(t, models.ExitBarClose, tr.exitReason)
	assert.InDelta(t, 100.6, tr.exitPrice, 1e-9)
	assert.InDelta(t, 0.6, tr.pnl, 1e-9)
}

func TestSimulateShortStop(t *testing.T) {
	b := NewBacktester(nil, repository.NewMemoryRecordStore(), nil, nil, backtestConfig(), nil)

	entry, sl, tp1, tp2, qty := 100.0, 102.0, 98.0, 96.0, 1.0
	sig := &models.TradableSignal{
		Side: models.SideShort, Entry: &entry, SL: &sl, TP1: &tp1, TP2: &tp2, Qty: &qty, Valid: true,
	}
	candles := []models.Candle{
		{OpenTime: t0, Open: 100, High: 100.5, Low: 99.5, Close: 100},
		{OpenTime: t0.Add(15 * time.Minute), Open: 100, High: 102.5, Low: 99.8, Close: 102},
	}

	tr, _, ok := b.simulate(candles, 0, sig)
	require.True(t, ok)
	assert.Equal(t, models.ExitStop, tr.exitReason)
	assert.InDelta(t, 102.0, tr.exitPrice, 1e-9)
	assert.InDelta(t, -2.0, tr.pnl, 1e-9)
}

func TestRunBatchPartialFailure(t *testing.T) {
	store := repository.NewMemoryRecordStore()
	good := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	cs := &fakeCandleStore{
		data: map[string][]models.Candle{"BTCUSDT": good},
		errs: map[string]error{"BADUSDT": errProvider},
	}
	b := NewBacktester(cs, store, NewSignalPipeline(bullishProvider(), pipelineConfig(), nil), nil, backtestConfig(), nil)

	from := good[0].OpenTime
	to := good[len(good)-1].OpenTime
	reports, errs := b.RunBatch(context.Background(), []string{"BTCUSDT", "BADUSDT"}, from, to, 2)

	require.Contains(t, reports, "BTCUSDT")
	require.Contains(t, errs, "BADUSDT")
	assert.Positive(t, reports["BTCUSDT"].Trades)
}
