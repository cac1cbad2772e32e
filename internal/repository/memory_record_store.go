package repository

import (
	"context"
	"sort"
	"sync"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
)

// MemoryRecordStore is an arena-style append-only record store keyed by
// the natural (symbol, timeframe, ts) key. It backs in-process
// backtests and tests; concurrent writers are distinguished by the key,
// so duplicate inserts are no-ops without external locking.
type MemoryRecordStore struct {
	mu         sync.RWMutex
	signals    map[string]models.SignalRecord
	order      []string
	executions map[string]models.ExecutionRecord
	outcomes   map[string]models.OutcomeRecord
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		signals:    make(map[string]models.SignalRecord),
		executions: make(map[string]models.ExecutionRecord),
		outcomes:   make(map[string]models.OutcomeRecord),
	}
}

var _ domrepo.RecordStore = (*MemoryRecordStore)(nil)

func (s *MemoryRecordStore) InsertSignal(_ context.Context, rec models.SignalRecord) (string, error) {
	id := rec.Key.ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.signals[id]; ok {
		return id, nil
	}
	s.signals[id] = rec
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryRecordStore) InsertExecution(_ context.Context, rec models.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executions[rec.SignalID]; ok {
		return nil
	}
	s.executions[rec.SignalID] = rec
	return nil
}

func (s *MemoryRecordStore) InsertOutcome(_ context.Context, rec models.OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outcomes[rec.SignalID]; ok {
		return nil
	}
	s.outcomes[rec.SignalID] = rec
	return nil
}

func (s *MemoryRecordStore) History(_ context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.TradeHistoryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]models.TradeHistoryRow, 0, limit)
	for _, id := range s.order {
		sig := s.signals[id]
		if sig.Key.Symbol != symbol || sig.Key.Timeframe != string(tf) {
			continue
		}
		row := models.TradeHistoryRow{Signal: sig}
		if exec, ok := s.executions[id]; ok {
			e := exec
			row.Execution = &e
		}
		if out, ok := s.outcomes[id]; ok {
			o := out
			row.Outcome = &o
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Signal.Key.Timestamp.Before(rows[j].Signal.Key.Timestamp)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (s *MemoryRecordStore) Summary(_ context.Context) ([]models.TradeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg := make(map[string]*models.TradeSummary)
	var keys []string
	for id, out := range s.outcomes {
		sig, ok := s.signals[id]
		if !ok {
			continue
		}
		k := sig.Key.Symbol + ":" + sig.Key.Timeframe
		sum, ok := agg[k]
		if !ok {
			sum = &models.TradeSummary{Symbol: sig.Key.Symbol, Timeframe: sig.Key.Timeframe}
			agg[k] = sum
			keys = append(keys, k)
		}
		sum.Trades++
		if out.PnL > 0 {
			sum.Wins++
		}
		sum.TotalPnL += out.PnL
	}
	sort.Strings(keys)
	out := make([]models.TradeSummary, 0, len(keys))
	for _, k := range keys {
		sum := agg[k]
		if sum.Trades > 0 {
			sum.HitRate = float64(sum.Wins) / float64(sum.Trades)
			sum.AvgPnL = sum.TotalPnL / float64(sum.Trades)
		}
		out = append(out, *sum)
	}
	return out, nil
}

// Len returns the number of stored signals.
func (s *MemoryRecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.signals)
}
