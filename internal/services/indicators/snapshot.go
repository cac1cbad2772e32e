package indicators

import "QuantPulse/internal/domain/models"

// Standard lookbacks used across the engine. These mirror the common
// charting defaults and are referenced by the regime classifier and the
// backtester's warmup requirement.
const (
	EMAFastPeriod   = 20
	EMASlowPeriod   = 50
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	BollingerPeriod = 20
	BollingerStdDev = 2.0
	ATRPeriod       = 14
	ADXPeriod       = 14
	CCIPeriod       = 20
	StochKPeriod    = 14
	StochDPeriod    = 3
	SARStep         = 0.02
	SARMax          = 0.2
)

// Snapshot is the last-value view of every indicator for one candle
// window. It is derived on demand and never persisted; fields without
// enough history are NaN.
type Snapshot struct {
	EMA20      float64
	EMA50      float64
	RSI14      float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	BBMid      float64
	BBUpper    float64
	BBLower    float64
	BBWidthPct float64
	ATR14      float64
	ADX14      float64
	PlusDI     float64
	MinusDI    float64
	CCI20      float64
	StochK     float64
	StochD     float64
	SAR        float64
}

// Compute derives a Snapshot from a candle sequence. Candles must be in
// ascending time order; a short sequence yields NaN fields, never an
// error.
func Compute(candles []models.Candle) Snapshot {
	n := len(candles)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	macd := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	bb := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	adx := ADX(highs, lows, closes, ADXPeriod)
	stoch := Stochastic(highs, lows, closes, StochKPeriod, StochDPeriod)

	return Snapshot{
		EMA20:      Last(EMA(closes, EMAFastPeriod)),
		EMA50:      Last(EMA(closes, EMASlowPeriod)),
		RSI14:      Last(RSI(closes, RSIPeriod)),
		MACD:       Last(macd.Line),
		MACDSignal: Last(macd.Signal),
		MACDHist:   Last(macd.Histogram),
		BBMid:      Last(bb.Mid),
		BBUpper:    Last(bb.Upper),
		BBLower:    Last(bb.Lower),
		BBWidthPct: Last(bb.WidthPct),
		ATR14:      Last(ATR(highs, lows, closes, ATRPeriod)),
		ADX14:      Last(adx.ADX),
		PlusDI:     Last(adx.PlusDI),
		MinusDI:    Last(adx.MinusDI),
		CCI20:      Last(CCI(highs, lows, closes, CCIPeriod)),
		StochK:     Last(stoch.K),
		StochD:     Last(stoch.D),
		SAR:        Last(ParabolicSAR(highs, lows, SARStep, SARMax)),
	}
}
