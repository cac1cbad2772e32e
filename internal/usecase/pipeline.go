package usecase

import (
	"context"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/confluence"
	"QuantPulse/internal/services/htf"
	"QuantPulse/internal/services/indicators"
	"QuantPulse/internal/services/regime"
	"QuantPulse/internal/services/risk"
	applogger "QuantPulse/pkg/logger"
)

// PipelineConfig carries the risk parameters and execution profile the
// pipeline sizes signals with.
type PipelineConfig struct {
	Risk    risk.Params
	Profile risk.Profile
}

// PipelineInput is one symbol's full input set. HTF candle sequences
// and external layer scores are optional; missing pieces degrade the
// output to neutral rather than failing.
type PipelineInput struct {
	Symbol    string
	Timeframe domrepo.Timeframe
	Candles   []models.Candle
	H4Candles []models.Candle
	H1Candles []models.Candle
	External  map[models.Layer]models.LayerScore
	Book      *models.OrderBookSnapshot
	Market    *models.MarketContext
}

// SignalPipeline runs the synchronous per-symbol computation: indicator
// snapshot, regime classification, confluence aggregation, HTF
// modulation, risk sizing and execution feasibility. It holds no state
// between calls.
type SignalPipeline struct {
	layers domsvc.LayerProvider
	cfg    PipelineConfig
	l      *applogger.Logger
}

func NewSignalPipeline(layers domsvc.LayerProvider, cfg PipelineConfig, l *applogger.Logger) *SignalPipeline {
	return &SignalPipeline{layers: layers, cfg: cfg, l: l}
}

// Evaluate produces the full per-symbol result. It never returns an
// error for short candle windows; only the layer provider can fail.
func (p *SignalPipeline) Evaluate(ctx context.Context, in PipelineInput) (*models.ScreenResult, error) {
	now := time.Now().UTC()
	if len(in.Candles) > 0 {
		now = in.Candles[len(in.Candles)-1].OpenTime
	}
	res := &models.ScreenResult{
		Symbol:    in.Symbol,
		Timeframe: string(in.Timeframe),
		Timestamp: now,
	}

	snap := indicators.Compute(in.Candles)
	lastClose := models.LastClose(in.Candles)
	advice := regime.Classify(snap, lastClose)

	scores, err := p.layers.Scores(ctx, in.Symbol, in.Candles)
	if err != nil {
		return nil, err
	}
	for layer, ls := range in.External {
		scores[layer] = ls
	}

	conf := confluence.Aggregate(in.Symbol, scores, advice, snap, now)

	h4 := in.H4Candles
	h1 := in.H1Candles
	if h4 == nil {
		h4 = Resample(in.Candles, 4*time.Hour)
	}
	if h1 == nil {
		h1 = Resample(in.Candles, time.Hour)
	}
	bias := htf.Compute(h4, h1)
	conf = htf.Modulate(conf, confluence.StructureBias(scores), bias.Combined)

	sig := risk.BuildSignal(in.Symbol, conf.Label, lastClose, snap.ATR14, now, p.cfg.Risk)

	res.Confluence = &conf
	res.HTF = &bias
	res.Signal = &sig

	if in.Book != nil && sig.Side != models.SideNone {
		check := risk.CheckExecution(sig, *in.Book, in.Market, p.cfg.Profile)
		res.Execution = &check
	}

	if p.l != nil {
		p.l.Debug("pipeline evaluated",
			applogger.String("symbol", in.Symbol),
			applogger.String("regime", string(conf.Regime)),
			applogger.String("label", string(conf.Label)),
			applogger.Float64("score", conf.Score),
		)
	}
	return res, nil
}
