package models

// RegimeKind labels the classified market regime.
type RegimeKind string

const (
	RegimeTrending RegimeKind = "trending"
	RegimeRanging  RegimeKind = "ranging"
	RegimeVolatile RegimeKind = "volatile"
	RegimeQuiet    RegimeKind = "quiet"
)

// Thresholds holds the buy/sell cutoffs for labeling a confluence score.
type Thresholds struct {
	Buy  float64
	Sell float64
}

// RegimeAdvice is the regime classifier's full output: the label, a
// human-readable reason, and the regime-specific scoring policy. It is a
// pure function of the indicator snapshot and price series.
type RegimeAdvice struct {
	Regime     RegimeKind
	Reason     string
	Thresholds Thresholds
	Weights    map[Layer]float64
}

// WeightFor returns the regime weight modifier for a layer, defaulting
// to 1.0 for layers the regime table does not mention.
func (a RegimeAdvice) WeightFor(l Layer) float64 {
	if w, ok := a.Weights[l]; ok {
		return w
	}
	return 1.0
}
