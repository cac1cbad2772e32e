package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	applogger "QuantPulse/pkg/logger"
)

// BacktestConfig tunes one backtest run. MinHistory is the indicator
// warmup before the first signal can fire.
type BacktestConfig struct {
	Timeframe   domrepo.Timeframe
	MinHistory  int
	StartEquity float64
	FeeRate     float64
	SlippageBps float64
	SpreadBps   float64
}

// BacktestReport is the per-symbol result of a run.
type BacktestReport struct {
	Symbol      string
	Timeframe   string
	Bars        int
	Signals     int
	Trades      int
	Performance Performance
	EquityCurve []float64
}

// Backtester replays the signal pipeline bar by bar over historical
// candles, simulates entries and exits under the first-touch model, and
// persists Signal/Execution/Outcome records through the append-only
// store. It is strictly sequential within one symbol; RunBatch runs
// symbols concurrently.
type Backtester struct {
	candles  domrepo.CandleStore
	records  domrepo.RecordStore
	pipeline *SignalPipeline
	metrics  domrepo.Metrics
	cfg      BacktestConfig
	l        *applogger.Logger
}

func NewBacktester(
	candles domrepo.CandleStore,
	records domrepo.RecordStore,
	pipeline *SignalPipeline,
	metrics domrepo.Metrics,
	cfg BacktestConfig,
	l *applogger.Logger,
) *Backtester {
	if cfg.MinHistory <= 0 {
		cfg.MinHistory = 100
	}
	if cfg.StartEquity <= 0 {
		cfg.StartEquity = 10000
	}
	return &Backtester{candles: candles, records: records, pipeline: pipeline, metrics: metrics, cfg: cfg, l: l}
}

// Run fetches the symbol's candles for the range and replays them.
func (b *Backtester) Run(ctx context.Context, symbol string, from, to time.Time) (*BacktestReport, error) {
	cs, err := b.candles.GetCandles(ctx, symbol, from, to, b.cfg.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	return b.RunSeries(ctx, symbol, cs)
}

// RunSeries replays an already-loaded candle sequence. A simulated
// entry always uses the next bar's open, never the signal bar's close,
// so the run is free of lookahead. Re-running the same window is
// deterministic and, through the idempotent store, duplicate-free.
func (b *Backtester) RunSeries(ctx context.Context, symbol string, candles []models.Candle) (*BacktestReport, error) {
	report := &BacktestReport{
		Symbol:    symbol,
		Timeframe: string(b.cfg.Timeframe),
		Bars:      len(candles),
	}

	var pnls []float64
	// index of the first bar at which a new position may be opened
	nextFree := 0

	for i := b.cfg.MinHistory - 1; i < len(candles)-1; i++ {
		if i < nextFree {
			continue
		}
		window := candles[:i+1]
		res, err := b.pipeline.Evaluate(ctx, PipelineInput{
			Symbol:    symbol,
			Timeframe: b.cfg.Timeframe,
			Candles:   window,
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline at bar %d: %w", i, err)
		}
		if res.Confluence == nil || res.Confluence.Label == models.LabelHold {
			continue
		}

		key := models.RecordKey{
			Symbol:    symbol,
			Timeframe: string(b.cfg.Timeframe),
			Timestamp: candles[i].OpenTime,
		}
		signalID := b.persistSignal(ctx, key, res)
		report.Signals++

		sig := res.Signal
		if sig == nil || !sig.Sized() {
			// no ATR, nothing to simulate for this signal
			continue
		}

		trade, exitIdx, ok := b.simulate(candles, i, sig)
		if !ok {
			continue
		}
		nextFree = exitIdx + 1

		b.persistExecution(ctx, signalID, key, trade)
		b.persistOutcome(ctx, signalID, key, trade)
		if b.metrics != nil {
			b.metrics.RecordBacktestTrade(symbol, trade.exitReason)
		}

		pnls = append(pnls, trade.pnl)
		report.Trades++
	}

	report.Performance, report.EquityCurve = ComputePerformance(b.cfg.StartEquity, pnls)

	if b.l != nil {
		b.l.Info("backtest finished",
			applogger.String("symbol", symbol),
			applogger.Int("bars", report.Bars),
			applogger.Int("signals", report.Signals),
			applogger.Int("trades", report.Trades),
			applogger.Float64("final_equity", report.Performance.FinalEquity),
		)
	}
	return report, nil
}

// RunBatch backtests symbols concurrently, bounded by workers. A failed
// symbol is reported in the error map, never aborting the batch.
func (b *Backtester) RunBatch(ctx context.Context, symbols []string, from, to time.Time, workers int) (map[string]*BacktestReport, map[string]error) {
	if workers <= 0 {
		workers = 2
	}
	reports := make(map[string]*BacktestReport, len(symbols))
	errs := make(map[string]error)
	var mu sync.Mutex
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rep, err := b.Run(ctx, symbol, from, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[symbol] = err
				return
			}
			reports[symbol] = rep
		}(sym)
	}
	wg.Wait()
	return reports, errs
}

// simTrade is the realized result of one simulated position.
type simTrade struct {
	side       models.Side
	entry      float64
	sl         float64
	tp1        float64
	tp2        float64
	qty        float64
	costs      models.Costs
	exitTime   time.Time
	exitPrice  float64
	exitReason string
	pnl        float64
	rMultiple  float64
}

// simulate enters at bar signalIdx+1's open adjusted for slippage and
// scans forward for the first touch of stop or target 1. When neither
// is touched before the series ends, the position exits at the last
// close with the bar-close reason. Stop wins over target inside a
// single bar.
func (b *Backtester) simulate(candles []models.Candle, signalIdx int, sig *models.TradableSignal) (simTrade, int, bool) {
	entryBar := candles[signalIdx+1]
	dist := *sig.Entry - *sig.SL
	if sig.Side == models.SideShort {
		dist = *sig.SL - *sig.Entry
	}
	if dist <= 0 {
		return simTrade{}, 0, false
	}

	slip := b.cfg.SlippageBps / 10000
	var entry float64
	if sig.Side == models.SideLong {
		entry = entryBar.Open * (1 + slip)
	} else {
		entry = entryBar.Open * (1 - slip)
	}

	tr := simTrade{side: sig.Side, entry: entry, qty: *sig.Qty}
	if sig.Side == models.SideLong {
		tr.sl = entry - dist
		tr.tp1 = entry + dist
		tr.tp2 = entry + 2*dist
	} else {
		tr.sl = entry + dist
		tr.tp1 = entry - dist
		tr.tp2 = entry - 2*dist
	}

	exitIdx := len(candles) - 1
	tr.exitPrice = candles[exitIdx].Close
	tr.exitReason = models.ExitBarClose
	for j := signalIdx + 1; j < len(candles); j++ {
		bar := candles[j]
		if sig.Side == models.SideLong {
			if bar.Low <= tr.sl {
				tr.exitPrice, tr.exitReason, exitIdx = tr.sl, models.ExitStop, j
				break
			}
			if bar.High >= tr.tp1 {
				tr.exitPrice, tr.exitReason, exitIdx = tr.tp1, models.ExitTarget, j
				break
			}
		} else {
			if bar.High >= tr.sl {
				tr.exitPrice, tr.exitReason, exitIdx = tr.sl, models.ExitStop, j
				break
			}
			if bar.Low <= tr.tp1 {
				tr.exitPrice, tr.exitReason, exitIdx = tr.tp1, models.ExitTarget, j
				break
			}
		}
	}
	tr.exitTime = candles[exitIdx].OpenTime

	notionalIn := tr.entry * tr.qty
	notionalOut := tr.exitPrice * tr.qty
	fees := b.cfg.FeeRate * (notionalIn + notionalOut)
	spreadCost := notionalIn * b.cfg.SpreadBps / 10000
	tr.costs = models.Costs{
		Fees:     fees,
		Slippage: notionalIn * b.cfg.SlippageBps / 10000,
		Spread:   spreadCost,
	}

	var gross float64
	if sig.Side == models.SideLong {
		gross = (tr.exitPrice - tr.entry) * tr.qty
	} else {
		gross = (tr.entry - tr.exitPrice) * tr.qty
	}
	tr.pnl = gross - fees - spreadCost
	tr.rMultiple = gross / (dist * tr.qty)
	return tr, exitIdx, true
}

// persistSignal writes the signal record; on failure it logs, counts
// the error and returns the deterministic id anyway so the run
// continues. Losing one record must not invalidate the rest.
func (b *Backtester) persistSignal(ctx context.Context, key models.RecordKey, res *models.ScreenResult) string {
	rec := models.SignalRecord{
		Key:    key,
		Label:  res.Confluence.Label,
		Score:  res.Confluence.Score,
		Regime: res.Confluence.Regime,
	}
	if res.HTF != nil {
		rec.Bias = res.HTF.Combined.Bias
	}
	id, err := b.records.InsertSignal(ctx, rec)
	if err != nil {
		b.recordError("persist_signal", key.Symbol, err)
		return key.ID()
	}
	return id
}

func (b *Backtester) persistExecution(ctx context.Context, signalID string, key models.RecordKey, tr simTrade) {
	err := b.records.InsertExecution(ctx, models.ExecutionRecord{
		SignalID: signalID,
		Key:      key,
		Side:     tr.side,
		Entry:    tr.entry,
		SL:       tr.sl,
		TP1:      tr.tp1,
		TP2:      tr.tp2,
		Qty:      tr.qty,
		Costs:    tr.costs,
	})
	if err != nil {
		b.recordError("persist_execution", key.Symbol, err)
	}
}

func (b *Backtester) persistOutcome(ctx context.Context, signalID string, key models.RecordKey, tr simTrade) {
	err := b.records.InsertOutcome(ctx, models.OutcomeRecord{
		SignalID:   signalID,
		Key:        key,
		ExitTime:   tr.exitTime,
		ExitPrice:  tr.exitPrice,
		ExitReason: tr.exitReason,
		PnL:        tr.pnl,
		RMultiple:  tr.rMultiple,
	})
	if err != nil {
		b.recordError("persist_outcome", key.Symbol, err)
	}
}

func (b *Backtester) recordError(kind, symbol string, err error) {
	if b.metrics != nil {
		b.metrics.RecordError(kind)
	}
	if b.l != nil {
		b.l.Error("record store write failed",
			applogger.String("kind", kind),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
}
