package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantPulse/internal/domain/models"
)

func sizedSignal(side models.Side, entry, qty float64) models.TradableSignal {
	sl := entry * 0.97
	tp1 := entry * 1.03
	tp2 := entry * 1.06
	rr1, rr2 := 1.0, 2.0
	return models.TradableSignal{
		Symbol:    "BTCUSDT",
		Timestamp: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		Side:      side,
		Entry:     &entry,
		SL:        &sl,
		TP1:       &tp1,
		TP2:       &tp2,
		Qty:       &qty,
		RR1:       &rr1,
		RR2:       &rr2,
		Valid:     true,
	}
}

func tightBook() models.OrderBookSnapshot {
	return models.OrderBookSnapshot{BestBid: 99.99, BestAsk: 100.01}
}

func TestCheckExecutionFeasible(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100.005, 1)
	check := CheckExecution(sig, tightBook(), nil, ProfileModerate)

	assert.True(t, check.OK)
	assert.Empty(t, check.Reasons)
	assert.InDelta(t, 2.0, check.Metrics.SpreadBps, 0.01)
	assert.InDelta(t, 0.5, check.Metrics.SlippageBps, 0.01)
}

func TestCheckExecutionUnsizedSignalBlocks(t *testing.T) {
	check := CheckExecution(models.TradableSignal{Side: models.SideLong}, tightBook(), nil, ProfileModerate)
	assert.False(t, check.OK)
	assert.Contains(t, check.Reasons, "signal is not sized")
}

func TestCheckExecutionMissingBookBlocks(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100, 1)
	check := CheckExecution(sig, models.OrderBookSnapshot{}, nil, ProfileModerate)
	assert.False(t, check.OK)
	assert.Contains(t, check.Reasons, "order book unavailable")
}

func TestCheckExecutionWideSpreadBlocks(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100, 1)
	book := models.OrderBookSnapshot{BestBid: 99.85, BestAsk: 100.15} // 30bps spread
	check := CheckExecution(sig, book, nil, ProfileModerate)

	assert.False(t, check.OK, "30bps spread exceeds the moderate 25bps ceiling")
	assert.NotEmpty(t, check.Warnings, "spread past 20bps also warns")

	check = CheckExecution(sig, book, nil, ProfileAggressive)
	assert.True(t, check.OK, "aggressive ceiling is 40bps")
}

func TestCheckExecutionSlippageByProfile(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100.15, 1) // 15bps above mid
	book := tightBook()

	check := CheckExecution(sig, book, nil, ProfileConservative)
	assert.False(t, check.OK, "conservative slippage ceiling is 10bps")

	check = CheckExecution(sig, book, nil, ProfileModerate)
	assert.True(t, check.OK, "moderate slippage ceiling is 20bps")
}

func TestCheckExecutionLongBelowBestBidBlocks(t *testing.T) {
	sig := sizedSignal(models.SideLong, 99.9, 1)
	check := CheckExecution(sig, tightBook(), nil, ProfileModerate)
	assert.False(t, check.OK)
	assert.Contains(t, check.Reasons, "long priced below best bid")
}

func TestCheckExecutionShortAboveBestAskBlocks(t *testing.T) {
	sig := sizedSignal(models.SideShort, 100.1, 1)
	check := CheckExecution(sig, tightBook(), nil, ProfileModerate)
	assert.False(t, check.OK)
	assert.Contains(t, check.Reasons, "short priced above best ask")
}

func TestCheckExecutionOpenInterestThresholds(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100.005, 1)

	oi := 25.0
	check := CheckExecution(sig, tightBook(), &models.MarketContext{OIChangePct: &oi}, ProfileModerate)
	assert.False(t, check.OK, "OI swing past 20%% blocks")

	oi = 15.0
	check = CheckExecution(sig, tightBook(), &models.MarketContext{OIChangePct: &oi}, ProfileModerate)
	assert.True(t, check.OK, "10-20%% OI swing only warns")
	assert.NotEmpty(t, check.Warnings)
}

func TestCheckExecutionExtremeFundingWarns(t *testing.T) {
	sig := sizedSignal(models.SideLong, 100.005, 1)
	funding := 0.01
	check := CheckExecution(sig, tightBook(), &models.MarketContext{FundingRate: &funding}, ProfileModerate)

	assert.True(t, check.OK, "funding never blocks")
	require.NotEmpty(t, check.Warnings)
	assert.Contains(t, check.Warnings[0], "funding")
}

func TestCheckExecutionThinLiquidityWarns(t *testing.T) {
	askSize := 5.0
	book := tightBook()
	book.AskSize = &askSize

	sig := sizedSignal(models.SideLong, 100.005, 1) // 1 > 0.5 = 10% of ask size
	check := CheckExecution(sig, book, nil, ProfileModerate)

	assert.True(t, check.OK)
	assert.Contains(t, check.Warnings, "order size exceeds 10% of visible liquidity")
}
