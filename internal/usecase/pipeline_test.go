package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	"QuantPulse/internal/services/layers"
	"QuantPulse/internal/services/risk"
)

func pipelineConfig() PipelineConfig {
	return PipelineConfig{
		Risk: risk.Params{
			AccountEquity:   10000,
			RiskPerTradePct: 1,
			ATRStopMultiple: 1.5,
			FeeRate:         0.0004,
		},
		Profile: risk.ProfileModerate,
	}
}

func TestEvaluateUptrendProducesBuy(t *testing.T) {
	p := NewSignalPipeline(layers.NewDerivedProvider(), pipelineConfig(), nil)
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)

	res, err := p.Evaluate(context.Background(), PipelineInput{
		Symbol:    "BTCUSDT",
		Timeframe: domrepo.TF15m,
		Candles:   candles,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Confluence)

	assert.Equal(t, models.RegimeTrending, res.Confluence.Regime, res.Confluence.Reason)
	assert.Equal(t, models.Thresholds{Buy: 60, Sell: 40}, res.Confluence.Thresholds)
	assert.Equal(t, models.LabelBuy, res.Confluence.Label)

	require.NotNil(t, res.Signal)
	assert.Equal(t, models.SideLong, res.Signal.Side)
	require.True(t, res.Signal.Sized(), "ATR is available, the signal must be sized")
	assert.Less(t, *res.Signal.SL, *res.Signal.Entry)
	assert.Greater(t, *res.Signal.TP1, *res.Signal.Entry)

	require.NotNil(t, res.HTF)
	assert.Equal(t, models.BiasBullish, res.HTF.H1.Bias, "1h view resampled from the window")
}

func TestEvaluateShortWindowHolds(t *testing.T) {
	p := NewSignalPipeline(layers.NewDerivedProvider(), pipelineConfig(), nil)

	res, err := p.Evaluate(context.Background(), PipelineInput{
		Symbol:    "BTCUSDT",
		Timeframe: domrepo.TF15m,
		Candles:   uptrendCandles("BTCUSDT", 100, 0.5, 10),
	})
	require.NoError(t, err)

	assert.Equal(t, models.LabelHold, res.Confluence.Label)
	assert.Equal(t, models.SideNone, res.Signal.Side)
	assert.False(t, res.Signal.Sized())
	assert.Nil(t, res.Execution)
}

func TestEvaluateExternalScoresOverrideDerived(t *testing.T) {
	p := NewSignalPipeline(layers.NewDerivedProvider(), pipelineConfig(), nil)
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)

	res, err := p.Evaluate(context.Background(), PipelineInput{
		Symbol:    "BTCUSDT",
		Timeframe: domrepo.TF15m,
		Candles:   candles,
		External: map[models.Layer]models.LayerScore{
			models.LayerTrend:     {Score: 5, Confidence: models.Conf(1)},
			models.LayerStructure: {Score: 10, Confidence: models.Conf(1)},
		},
	})
	require.NoError(t, err)

	var trendContribution *models.LayerContribution
	for i := range res.Confluence.Breakdown {
		if res.Confluence.Breakdown[i].Layer == models.LayerTrend {
			trendContribution = &res.Confluence.Breakdown[i]
		}
	}
	require.NotNil(t, trendContribution)
	assert.Equal(t, 5.0, trendContribution.Score, "external score replaces the derived one")
}

func TestEvaluateProviderErrorPropagates(t *testing.T) {
	p := NewSignalPipeline(&fixedLayerProvider{err: errProvider}, pipelineConfig(), nil)

	_, err := p.Evaluate(context.Background(), PipelineInput{
		Symbol:    "BTCUSDT",
		Timeframe: domrepo.TF15m,
		Candles:   uptrendCandles("BTCUSDT", 100, 0.5, 150),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errProvider)
}

func TestEvaluateRunsExecutionCheckWhenBookPresent(t *testing.T) {
	p := NewSignalPipeline(bullishProvider(), pipelineConfig(), nil)
	candles := uptrendCandles("BTCUSDT", 100, 0.5, 150)
	last := candles[len(candles)-1].Close

	res, err := p.Evaluate(context.Background(), PipelineInput{
		Symbol:    "BTCUSDT",
		Timeframe: domrepo.TF15m,
		Candles:   candles,
		Book:      &models.OrderBookSnapshot{BestBid: last - 0.01, BestAsk: last + 0.01},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Execution)
	assert.True(t, res.Execution.OK, "entry at last close against a tight book")
}
