package models

// BiasDirection is a higher-timeframe directional lean.
type BiasDirection string

const (
	BiasBullish BiasDirection = "bullish"
	BiasBearish BiasDirection = "bearish"
	BiasNeutral BiasDirection = "neutral"
)

// TimeframeBias is the bias computed independently for one higher
// timeframe. Strength is 0-10 and monotonic in the trend slope
// magnitude.
type TimeframeBias struct {
	Bias     BiasDirection
	Strength int
	EMATrend string
}

// CombinedBias merges the 4h and 1h views into one directional lean.
type CombinedBias struct {
	Bias     BiasDirection
	Strength int
}

// HTFBias is the full higher-timeframe bias report.
type HTFBias struct {
	H4       TimeframeBias
	H1       TimeframeBias
	Combined CombinedBias
}
