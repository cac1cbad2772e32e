package models

// OrderBookSnapshot is the top-of-book view supplied by an external
// market-data collaborator.
type OrderBookSnapshot struct {
	BestBid float64
	BestAsk float64
	Mid     float64
	BidSize *float64
	AskSize *float64
}

// MarketContext carries optional derivatives context used only for
// feasibility checks.
type MarketContext struct {
	FundingRate *float64
	OIChangePct *float64
}

// ExecutionMetrics are the measured frictions behind a feasibility
// verdict, all in basis points.
type ExecutionMetrics struct {
	SpreadBps   float64
	SlippageBps float64
	ImpactBps   float64
}

// ExecutionCheck is the feasibility verdict for a tradable signal.
// OK is true exactly when Reasons is empty; Warnings never affect OK.
type ExecutionCheck struct {
	OK       bool
	Reasons  []string
	Warnings []string
	Metrics  ExecutionMetrics
}
