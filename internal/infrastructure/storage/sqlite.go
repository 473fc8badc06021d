package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
)

// SQLiteStore journals completed strategy runs. It is an audit log for
// the operator; the engine never reads it back into a run.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			leverage INTEGER NOT NULL,
			margin_usdt TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			entry_price TEXT NOT NULL,
			rollover_count INTEGER NOT NULL,
			interval_pct TEXT NOT NULL,
			contract_size INTEGER NOT NULL,
			entry_order_id INTEGER NOT NULL,
			executed_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_levels (
			run_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			trigger_price TEXT NOT NULL,
			contract_size INTEGER NOT NULL,
			margin_required TEXT NOT NULL,
			order_id INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// Prices and margins are stored as TEXT so the decimal values survive
// the round trip exactly.

func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (symbol, leverage, margin_usdt, entry_type, entry_price, rollover_count, interval_pct, contract_size, entry_order_id, executed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Params.Symbol, run.Params.Leverage, run.Params.MarginUSDT.String(),
		string(run.Params.EntryType), run.Result.EntryPrice.String(),
		run.Params.RolloverCount, run.Params.IntervalPercent.String(),
		run.Result.ContractSize, run.Result.EntryOrderID,
		run.Result.ExecutedAt, run.CreatedAt)
	if err != nil {
		return err
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = runID

	for _, l := range run.Result.Levels {
		errText := ""
		if l.Err != nil {
			errText = l.Err.Error()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_levels (run_id, idx, trigger_price, contract_size, margin_required, order_id, status, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, l.Index, l.TriggerPrice.String(), l.ContractSize,
			l.MarginRequired.String(), l.OrderID, string(l.Status), errText); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, leverage, margin_usdt, entry_type, entry_price, rollover_count, interval_pct, contract_size, entry_order_id, executed_at, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.RunRecord
	for rows.Next() {
		var (
			r                              domain.RunRecord
			marginStr, priceStr, intervStr string
			entryType                      string
		)
		if err := rows.Scan(&r.ID, &r.Params.Symbol, &r.Params.Leverage, &marginStr,
			&entryType, &priceStr, &r.Params.RolloverCount, &intervStr,
			&r.Result.ContractSize, &r.Result.EntryOrderID,
			&r.Result.ExecutedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.Params.MarginUSDT, err = decimal.NewFromString(marginStr); err != nil {
			return nil, err
		}
		if r.Result.EntryPrice, err = decimal.NewFromString(priceStr); err != nil {
			return nil, err
		}
		if r.Params.IntervalPercent, err = decimal.NewFromString(intervStr); err != nil {
			return nil, err
		}
		r.Params.EntryType = domain.EntryType(entryType)
		if r.Params.EntryType == domain.EntryLimit {
			r.Params.EntryPrice = r.Result.EntryPrice
		}
		r.Result.Symbol = r.Params.Symbol
		r.Result.EntryType = r.Params.EntryType

		levels, err := s.loadLevels(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Result.Levels = levels
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) loadLevels(ctx context.Context, runID int64) ([]*domain.RolloverLevel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, trigger_price, contract_size, margin_required, order_id, status, error
		 FROM run_levels WHERE run_id = ? ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []*domain.RolloverLevel{}
	for rows.Next() {
		var (
			l                domain.RolloverLevel
			priceStr, mrgStr string
			status, errText  string
		)
		if err := rows.Scan(&l.Index, &priceStr, &l.ContractSize, &mrgStr, &l.OrderID, &status, &errText); err != nil {
			return nil, err
		}
		if l.TriggerPrice, err = decimal.NewFromString(priceStr); err != nil {
			return nil, err
		}
		if l.MarginRequired, err = decimal.NewFromString(mrgStr); err != nil {
			return nil, err
		}
		l.Status = domain.LevelStatus(status)
		if errText != "" {
			l.Err = fmt.Errorf("%s", errText)
		}
		levels = append(levels, &l)
	}
	return levels, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ domain.RunRepository = (*SQLiteStore)(nil)
