package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	icache "QuantPulse/internal/service/cache"
	"QuantPulse/internal/service/ratelimit"
	applogger "QuantPulse/pkg/logger"
)

// ScreenerConfig bounds the screening batch. Workers caps concurrent
// symbol pipelines to respect upstream data-source rate limits.
type ScreenerConfig struct {
	Timeframe     domrepo.Timeframe
	HistoryBars   int
	Workers       int
	SymbolTimeout time.Duration
	CacheTTL      time.Duration
	FetchRPS      float64
}

// Screener fans the signal pipeline out across many symbols. Each
// symbol is independent; a per-symbol failure is reported as a partial
// result and never aborts the batch.
type Screener struct {
	store    domrepo.CandleStore
	pipeline *SignalPipeline
	cache    icache.BytesCache
	pub      domrepo.Publisher
	metrics  domrepo.Metrics
	market   domsvc.MarketDataProvider
	limiter  *ratelimit.Limiter
	cfg      ScreenerConfig
	l        *applogger.Logger
}

func NewScreener(
	store domrepo.CandleStore,
	pipeline *SignalPipeline,
	cache icache.BytesCache,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	cfg ScreenerConfig,
	l *applogger.Logger,
) *Screener {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.HistoryBars <= 0 {
		cfg.HistoryBars = 200
	}
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = 15 * time.Second
	}
	return &Screener{
		store:    store,
		pipeline: pipeline,
		cache:    cache,
		pub:      pub,
		metrics:  metrics,
		limiter:  ratelimit.New(),
		cfg:      cfg,
		l:        l,
	}
}

// SetMarketData attaches an optional market-data collaborator. When
// present, each screened symbol also gets its top-of-book and
// derivatives context so the pipeline can run the feasibility check.
func (s *Screener) SetMarketData(p domsvc.MarketDataProvider) {
	s.market = p
}

// Screen runs the batch and returns one result per symbol, successes
// and failures alike, in input order.
func (s *Screener) Screen(ctx context.Context, symbols []string) []models.ScreenResult {
	results := make([]models.ScreenResult, len(symbols))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for i, sym := range symbols {
		wg.Add(1)
		go func(idx int, symbol string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = models.ScreenResult{Symbol: symbol, Timeframe: string(s.cfg.Timeframe), Err: ctx.Err().Error()}
				return
			}
			results[idx] = s.screenOne(ctx, symbol)
		}(i, sym)
	}
	wg.Wait()
	return results
}

func (s *Screener) screenOne(ctx context.Context, symbol string) models.ScreenResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SymbolTimeout)
	defer cancel()

	if cached, ok := s.cachedResult(symbol); ok {
		return *cached
	}

	if err := s.waitForToken(ctx); err != nil {
		return s.failed(symbol, fmt.Errorf("rate limit wait: %w", err))
	}

	candles, err := s.store.GetLatestNCandles(ctx, symbol, s.cfg.HistoryBars, s.cfg.Timeframe)
	if err != nil {
		return s.failed(symbol, fmt.Errorf("fetch candles: %w", err))
	}

	book, market := s.marketData(ctx, symbol)

	res, err := s.pipeline.Evaluate(ctx, PipelineInput{
		Symbol:    symbol,
		Timeframe: s.cfg.Timeframe,
		Candles:   candles,
		Book:      book,
		Market:    market,
	})
	if err != nil {
		return s.failed(symbol, fmt.Errorf("evaluate: %w", err))
	}

	if s.metrics != nil {
		s.metrics.RecordScreenDuration(symbol, time.Since(start).Seconds())
		if res.Confluence != nil {
			s.metrics.RecordSignal(symbol, string(res.Confluence.Label))
			s.metrics.RecordScore(symbol, res.Confluence.Score)
		}
	}

	s.cacheResult(symbol, res)
	s.publish(ctx, res)
	return *res
}

// marketData fetches the optional execution-check inputs. Failures
// degrade to a screen without the feasibility check rather than failing
// the symbol.
func (s *Screener) marketData(ctx context.Context, symbol string) (*models.OrderBookSnapshot, *models.MarketContext) {
	if s.market == nil {
		return nil, nil
	}
	book, err := s.market.OrderBook(ctx, symbol)
	if err != nil {
		if s.l != nil {
			s.l.Warn("order book fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
		return nil, nil
	}
	mc, err := s.market.Context(ctx, symbol)
	if err != nil {
		mc = nil
	}
	return book, mc
}

// cachedResult returns a fresh cached result for the symbol, if any.
func (s *Screener) cachedResult(symbol string) (*models.ScreenResult, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(s.cacheKey(symbol))
	if err != nil || !ok {
		return nil, false
	}
	var res models.ScreenResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, false
	}
	res.FromCache = true
	return &res, true
}

func (s *Screener) cacheResult(symbol string, res *models.ScreenResult) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.SetBytes(s.cacheKey(symbol), b, s.cfg.CacheTTL); err != nil && s.l != nil {
		s.l.Warn("cache write failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
}

func (s *Screener) cacheKey(symbol string) string {
	return fmt.Sprintf("screen:%s:%s", symbol, s.cfg.Timeframe)
}

// publish pushes actionable (non-HOLD) results downstream. Publish
// failures are logged, not propagated; losing a notification must not
// fail the screen.
func (s *Screener) publish(ctx context.Context, res *models.ScreenResult) {
	if s.pub == nil || res.Confluence == nil || res.Confluence.Label == models.LabelHold {
		return
	}
	if err := s.pub.PublishSignal(ctx, res); err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("publish")
		}
		if s.l != nil {
			s.l.Error("signal publish failed", applogger.String("symbol", res.Symbol), applogger.Error(err))
		}
	}
}

func (s *Screener) waitForToken(ctx context.Context) error {
	if s.cfg.FetchRPS <= 0 {
		return nil
	}
	for !s.limiter.Allow("candles", s.cfg.FetchRPS, s.cfg.FetchRPS) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

func (s *Screener) failed(symbol string, err error) models.ScreenResult {
	if s.metrics != nil {
		s.metrics.RecordError("screen")
	}
	if s.l != nil {
		s.l.Warn("symbol screen failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return models.ScreenResult{Symbol: symbol, Timeframe: string(s.cfg.Timeframe), Err: err.Error()}
}
