package models

import "time"

// Candle represents one OHLCV bar. Sequences are always ordered by
// strictly increasing OpenTime; the engine tolerates short sequences by
// producing neutral outputs, never errors.
type Candle struct {
	OpenTime time.Time
	Symbol   string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Closes extracts the close series from a candle sequence.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty sequence.
func LastClose(cs []Candle) float64 {
	if len(cs) == 0 {
		return 0
	}
	return cs[len(cs)-1].Close
}
