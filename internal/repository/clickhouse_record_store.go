package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	pkgch "QuantPulse/pkg/clickhouse"
	applogger "QuantPulse/pkg/logger"
)

// Schema statements for the three append-only record tables. Ordered by
// the natural key so replays land on the same rows.
var RecordSchema = []string{
	"CREATE DATABASE IF NOT EXISTS quantpulse",
	`CREATE TABLE IF NOT EXISTS quantpulse.bt_signals (
        ts DateTime, symbol String, timeframe String,
        label String, score Float64, regime String, bias String
    ) ENGINE=ReplacingMergeTree ORDER BY (symbol, timeframe, ts)`,
	`CREATE TABLE IF NOT EXISTS quantpulse.bt_executions (
        signal_id String, ts DateTime, symbol String, timeframe String,
        side String, entry Float64, sl Float64, tp1 Float64, tp2 Float64,
        qty Float64, fees Float64, slippage Float64, spread Float64
    ) ENGINE=ReplacingMergeTree ORDER BY (symbol, timeframe, ts)`,
	`CREATE TABLE IF NOT EXISTS quantpulse.bt_outcomes (
        signal_id String, ts DateTime, symbol String, timeframe String,
        exit_ts DateTime, exit_price Float64, exit_reason String,
        pnl Float64, r_multiple Float64
    ) ENGINE=ReplacingMergeTree ORDER BY (symbol, timeframe, ts)`,
}

// CHRecordStore implements the append-only RecordStore on ClickHouse.
// Idempotency rides on an existence check against the natural key plus
// the ReplacingMergeTree key; records are never updated or deleted.
type CHRecordStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHRecordStore(ch *pkgch.Client) *CHRecordStore {
	return &CHRecordStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHRecordStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.RecordStore = (*CHRecordStore)(nil)

func (s *CHRecordStore) InsertSignal(ctx context.Context, rec models.SignalRecord) (string, error) {
	id := rec.Key.ID()
	exists, err := s.exists(ctx, "quantpulse.bt_signals", rec.Key)
	if err != nil {
		return "", fmt.Errorf("signal exists check: %w", err)
	}
	if exists {
		return id, nil
	}
	const q = `INSERT INTO quantpulse.bt_signals (ts, symbol, timeframe, label, score, regime, bias) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		rec.Key.Timestamp, rec.Key.Symbol, rec.Key.Timeframe,
		string(rec.Label), rec.Score, string(rec.Regime), string(rec.Bias),
	)
	if err != nil {
		return "", fmt.Errorf("insert signal: %w", err)
	}
	return id, nil
}

func (s *CHRecordStore) InsertExecution(ctx context.Context, rec models.ExecutionRecord) error {
	exists, err := s.exists(ctx, "quantpulse.bt_executions", rec.Key)
	if err != nil {
		return fmt.Errorf("execution exists check: %w", err)
	}
	if exists {
		return nil
	}
	const q = `INSERT INTO quantpulse.bt_executions
        (signal_id, ts, symbol, timeframe, side, entry, sl, tp1, tp2, qty, fees, slippage, spread)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		rec.SignalID, rec.Key.Timestamp, rec.Key.Symbol, rec.Key.Timeframe,
		string(rec.Side), rec.Entry, rec.SL, rec.TP1, rec.TP2, rec.Qty,
		rec.Costs.Fees, rec.Costs.Slippage, rec.Costs.Spread,
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

func (s *CHRecordStore) InsertOutcome(ctx context.Context, rec models.OutcomeRecord) error {
	exists, err := s.exists(ctx, "quantpulse.bt_outcomes", rec.Key)
	if err != nil {
		return fmt.Errorf("outcome exists check: %w", err)
	}
	if exists {
		return nil
	}
	const q = `INSERT INTO quantpulse.bt_outcomes
        (signal_id, ts, symbol, timeframe, exit_ts, exit_price, exit_reason, pnl, r_multiple)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		rec.SignalID, rec.Key.Timestamp, rec.Key.Symbol, rec.Key.Timeframe,
		rec.ExitTime, rec.ExitPrice, rec.ExitReason, rec.PnL, rec.RMultiple,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *CHRecordStore) History(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.TradeHistoryRow, error) {
	start := time.Now()
	const q = `
        SELECT s.ts, s.symbol, s.timeframe, s.label, s.score, s.regime, s.bias,
               e.side, e.entry, e.sl, e.tp1, e.tp2, e.qty,
               o.exit_ts, o.exit_price, o.exit_reason, o.pnl, o.r_multiple
        FROM quantpulse.bt_signals s
        LEFT JOIN quantpulse.bt_executions e
            ON e.symbol = s.symbol AND e.timeframe = s.timeframe AND e.ts = s.ts
        LEFT JOIN quantpulse.bt_outcomes o
            ON o.symbol = s.symbol AND o.timeframe = s.timeframe AND o.ts = s.ts
        WHERE s.symbol = ? AND s.timeframe = ?
        ORDER BY s.ts ASC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), limit)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	out := make([]models.TradeHistoryRow, 0, limit)
	for rows.Next() {
		var (
			row        models.TradeHistoryRow
			label      string
			regime     string
			bias       string
			side       sql.NullString
			entry      sql.NullFloat64
			sl, tp1    sql.NullFloat64
			tp2, qty   sql.NullFloat64
			exitTS     sql.NullTime
			exitPrice  sql.NullFloat64
			exitReason sql.NullString
			pnl        sql.NullFloat64
			rMult      sql.NullFloat64
		)
		if err := rows.Scan(
			&row.Signal.Key.Timestamp, &row.Signal.Key.Symbol, &row.Signal.Key.Timeframe,
			&label, &row.Signal.Score, &regime, &bias,
			&side, &entry, &sl, &tp1, &tp2, &qty,
			&exitTS, &exitPrice, &exitReason, &pnl, &rMult,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		row.Signal.Label = models.SignalLabel(label)
		row.Signal.Regime = models.RegimeKind(regime)
		row.Signal.Bias = models.BiasDirection(bias)
		if side.Valid && side.String != "" {
			row.Execution = &models.ExecutionRecord{
				SignalID: row.Signal.Key.ID(),
				Key:      row.Signal.Key,
				Side:     models.Side(side.String),
				Entry:    entry.Float64,
				SL:       sl.Float64,
				TP1:      tp1.Float64,
				TP2:      tp2.Float64,
				Qty:      qty.Float64,
			}
		}
		if exitReason.Valid && exitReason.String != "" {
			row.Outcome = &models.OutcomeRecord{
				SignalID:   row.Signal.Key.ID(),
				Key:        row.Signal.Key,
				ExitTime:   exitTS.Time,
				ExitPrice:  exitPrice.Float64,
				ExitReason: exitReason.String,
				PnL:        pnl.Float64,
				RMultiple:  rMult.Float64,
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse history ok",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHRecordStore) Summary(ctx context.Context) ([]models.TradeSummary, error) {
	const q = `
        SELECT symbol, timeframe, count() AS trades,
               countIf(pnl > 0) AS wins,
               avg(pnl) AS avg_pnl, sum(pnl) AS total_pnl
        FROM quantpulse.bt_outcomes
        GROUP BY symbol, timeframe
        ORDER BY symbol, timeframe
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	var out []models.TradeSummary
	for rows.Next() {
		var sum models.TradeSummary
		var trades, wins uint64
		if err := rows.Scan(&sum.Symbol, &sum.Timeframe, &trades, &wins, &sum.AvgPnL, &sum.TotalPnL); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		sum.Trades = int(trades)
		sum.Wins = int(wins)
		if sum.Trades > 0 {
			sum.HitRate = float64(sum.Wins) / float64(sum.Trades)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary rows: %w", err)
	}
	return out, nil
}

func (s *CHRecordStore) exists(ctx context.Context, table string, key models.RecordKey) (bool, error) {
	q := fmt.Sprintf("SELECT count() FROM %s WHERE symbol = ? AND timeframe = ? AND ts = ?", table)
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, key.Symbol, key.Timeframe, key.Timestamp).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
