package models

import "time"

// ScreenResult is one symbol's outcome inside a screening batch. A
// failed symbol carries Err and nil analysis fields; it never aborts the
// batch.
type ScreenResult struct {
	Symbol     string
	Timeframe  string
	Timestamp  time.Time
	Confluence *ConfluenceResult
	HTF        *HTFBias
	Signal     *TradableSignal
	Execution  *ExecutionCheck
	FromCache  bool
	Err        string
}

// Failed reports whether the symbol errored out of the batch.
func (r ScreenResult) Failed() bool { return r.Err != "" }
