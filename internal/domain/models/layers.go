package models

// Layer identifies one external analysis layer feeding the confluence
// aggregator.
type Layer string

const (
	LayerStructure    Layer = "structure"
	LayerOrderFlow    Layer = "orderflow"
	LayerPriceAction  Layer = "priceaction"
	LayerTrend        Layer = "trend"
	LayerMomentum     Layer = "momentum"
	LayerFunding      Layer = "funding"
	LayerOpenInterest Layer = "openinterest"
	LayerRetracement  Layer = "retracement"
)

// AllLayers lists every known layer in a stable order.
func AllLayers() []Layer {
	return []Layer{
		LayerStructure,
		LayerOrderFlow,
		LayerPriceAction,
		LayerTrend,
		LayerMomentum,
		LayerFunding,
		LayerOpenInterest,
		LayerRetracement,
	}
}

// LayerScore is one layer's vote: a 0-100 score and an optional
// confidence. A nil confidence means the layer had nothing to say and is
// excluded from aggregation, not treated as zero.
type LayerScore struct {
	Score      float64
	Confidence *float64
}

// Conf is a convenience constructor for a confidence pointer.
func Conf(v float64) *float64 { return &v }
