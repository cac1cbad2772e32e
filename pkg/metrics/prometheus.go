package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal   *prometheus.CounterVec
	backtestTrades *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastScore      *prometheus.GaugeVec
	screenLatency  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_signals_total",
				Help: "Total signals computed, by symbol and label",
			},
			[]string{"symbol", "label"},
		),
		backtestTrades: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_backtest_trades_total",
				Help: "Total simulated backtest trades, by exit reason",
			},
			[]string{"symbol", "reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantpulse_last_confluence_score",
				Help: "Last confluence score for a symbol",
			},
			[]string{"symbol"},
		),
		screenLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantpulse_screen_duration_seconds",
				Help:    "Duration of per-symbol screening in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
	}
}

// RecordSignal records one computed signal.
func (r *Recorder) RecordSignal(symbol, label string) {
	r.signalsTotal.WithLabelValues(symbol, label).Inc()
}

// RecordScreenDuration records per-symbol screening latency in seconds.
func (r *Recorder) RecordScreenDuration(symbol string, seconds float64) {
	r.screenLatency.WithLabelValues(symbol).Observe(seconds)
}

// RecordBacktestTrade records one simulated trade.
func (r *Recorder) RecordBacktestTrade(symbol, reason string) {
	r.backtestTrades.WithLabelValues(symbol, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordScore records the last confluence score for a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}
