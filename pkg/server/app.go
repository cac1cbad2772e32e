package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/usecase"
	pkgch "QuantPulse/pkg/clickhouse"
	"QuantPulse/pkg/config"
	applogger "QuantPulse/pkg/logger"
	"QuantPulse/pkg/util"
)

const (
	ModeScreen   = "screen"
	ModeBacktest = "backtest"
)

// App wires the engine into a runnable process. In screen mode it runs
// the screener on a fixed interval until interrupted; in backtest mode
// it replays the configured range once and exits.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	screener   *usecase.Screener
	backtester *usecase.Backtester
	chClient   *pkgch.Client
	pub        domrepo.Publisher

	mode    string
	symbols []string
}

func New(
	cfg *config.Config,
	l *applogger.Logger,
	screener *usecase.Screener,
	backtester *usecase.Backtester,
	chClient *pkgch.Client,
	pub domrepo.Publisher,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		screener:   screener,
		backtester: backtester,
		chClient:   chClient,
		pub:        pub,
		mode:       ModeScreen,
	}
}

// SetMode selects screen or backtest mode and optionally narrows the
// symbol universe. An empty symbols slice keeps the configured set.
func (a *App) SetMode(mode string, symbols []string) {
	if mode != "" {
		a.mode = mode
	}
	if len(symbols) > 0 {
		a.symbols = symbols
	}
}

// Run starts the application and blocks until done or interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		a.l.Info("shutdown signal received")
		cancel()
	}()

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		metricsSrv = a.startMetricsServer()
	}

	var err error
	switch a.mode {
	case ModeBacktest:
		err = a.runBacktest(ctx)
	case ModeScreen:
		err = a.runScreenLoop(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", a.mode)
	}

	a.shutdown(metricsSrv)
	return err
}

func (a *App) runScreenLoop(ctx context.Context) error {
	symbols := a.symbolUniverse()
	interval := a.cfg.Screener.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	a.l.Info("screener started",
		applogger.Strings("symbols", symbols),
		applogger.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.screenOnce(ctx, symbols)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.screenOnce(ctx, symbols)
		}
	}
}

func (a *App) screenOnce(ctx context.Context, symbols []string) {
	start := time.Now()
	results := a.screener.Screen(ctx, symbols)

	var failures int
	for _, res := range results {
		if res.Failed() {
			failures++
			a.l.Warn("symbol screen failed",
				applogger.String("symbol", res.Symbol),
				applogger.String("error", res.Err),
			)
			continue
		}
		a.l.Info("signal",
			applogger.String("symbol", res.Symbol),
			applogger.String("label", string(res.Confluence.Label)),
			applogger.Float64("score", res.Confluence.Score),
			applogger.String("regime", string(res.Confluence.Regime)),
			applogger.Bool("cached", res.FromCache),
		)
	}
	a.l.Info("screen pass complete",
		applogger.Int("symbols", len(symbols)),
		applogger.Int("failures", failures),
		applogger.Duration("took", time.Since(start)),
	)
}

func (a *App) runBacktest(ctx context.Context) error {
	symbols := a.symbolUniverse()
	tf := domrepo.NormalizeTimeframe(a.cfg.Backtest.Timeframe)

	now := time.Now().UTC()
	from := util.ParseTimeDefault(a.cfg.Backtest.From, now.AddDate(0, -3, 0))
	to := util.ParseTimeDefault(a.cfg.Backtest.To, now)
	from, to = util.AlignFromTo(from, to, string(tf))

	a.l.Info("backtest started",
		applogger.Strings("symbols", symbols),
		applogger.String("timeframe", string(tf)),
		applogger.String("from", from.Format(time.RFC3339)),
		applogger.String("to", to.Format(time.RFC3339)),
	)

	reports, errs := a.backtester.RunBatch(ctx, symbols, from, to, a.cfg.Backtest.Workers)
	for sym, err := range errs {
		a.l.Error("backtest failed", applogger.String("symbol", sym), applogger.Error(err))
	}
	for sym, rep := range reports {
		p := rep.Performance
		a.l.Info("backtest report",
			applogger.String("symbol", sym),
			applogger.Int("bars", rep.Bars),
			applogger.Int("signals", rep.Signals),
			applogger.Int("trades", rep.Trades),
			applogger.Float64("hit_rate", p.HitRate),
			applogger.Float64("expectancy", p.Expectancy),
			applogger.Float64("sharpe", p.Sharpe),
			applogger.Float64("max_drawdown", p.MaxDrawdown),
			applogger.Float64("final_equity", p.FinalEquity),
		)
	}
	if len(errs) > 0 && len(reports) == 0 {
		return fmt.Errorf("backtest produced no reports across %d symbols", len(symbols))
	}
	return nil
}

func (a *App) symbolUniverse() []string {
	if len(a.symbols) > 0 {
		return a.symbols
	}
	return a.cfg.Screener.Symbols
}

func (a *App) startMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.l.Error("metrics server error", applogger.Error(err))
		}
	}()
	a.l.Info("metrics server started",
		applogger.Int("port", a.cfg.Metrics.Port),
		applogger.String("path", a.cfg.Metrics.Path),
	)
	return srv
}

func (a *App) shutdown(metricsSrv *http.Server) {
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(ctx); err != nil {
			a.l.Warn("metrics server shutdown error", applogger.Error(err))
		}
		cancel()
	}
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
