package engine_v1

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/barsim/internal/logger"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
	"go.uber.org/zap"
)

// Ledger persists every fill and closed trade of a run into an in-memory
// DuckDB database. It is a passive audit log: the simulator remains the
// source of truth for account state, the ledger answers aggregate queries
// and exports the run to Parquet.
type Ledger struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewLedger opens an in-memory DuckDB ledger.
func NewLedger(logger *logger.Logger) *Ledger {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return nil
	}

	return &Ledger{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Initialize creates the fills and trades tables. It can be called again to
// reset the ledger between runs.
func (l *Ledger) Initialize() error {
	_, err := l.db.Exec(`DROP TABLE IF EXISTS fills`)
	if err != nil {
		return fmt.Errorf("failed to drop fills table: %w", err)
	}

	_, err = l.db.Exec(`DROP TABLE IF EXISTS trades`)
	if err != nil {
		return fmt.Errorf("failed to drop trades table: %w", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE fills (
			bar_index INTEGER,
			intent TEXT,
			price DOUBLE,
			size DOUBLE,
			timestamp TIMESTAMP,
			strategy_name TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fills table: %w", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE trades (
			trade_id TEXT PRIMARY KEY,
			direction TEXT,
			entry_index INTEGER,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			exit_index INTEGER,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			size DOUBLE,
			pnl DOUBLE,
			commission DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	return nil
}

// RecordFill appends one executed fill.
func (l *Ledger) RecordFill(intent types.OrderIntent, index int, bar types.Bar, size float64, strategyName string) error {
	query := l.sq.
		Insert("fills").
		Columns("bar_index", "intent", "price", "size", "timestamp", "strategy_name").
		Values(index, string(intent), bar.Close, size, bar.Time, strategyName).
		RunWith(l.db)

	if _, err := query.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerFailed, "failed to record fill", err)
	}

	return nil
}

// RecordTrade appends one closed trade.
func (l *Ledger) RecordTrade(trade types.Trade) error {
	query := l.sq.
		Insert("trades").
		Columns("trade_id", "direction", "entry_index", "entry_time", "entry_price",
			"exit_index", "exit_time", "exit_price", "size", "pnl", "commission").
		Values(trade.ID, string(trade.Direction), trade.EntryIndex, trade.EntryTime, trade.EntryPrice,
			trade.ExitIndex, trade.ExitTime, trade.ExitPrice, trade.Size, trade.PnL, trade.Commission).
		RunWith(l.db)

	if _, err := query.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerFailed, "failed to record trade", err)
	}

	return nil
}

// TradeSummary is the ledger's aggregate view of a run.
type TradeSummary struct {
	Total           int
	Winning         int
	Losing          int
	TotalCommission float64
}

// Summary aggregates the recorded trades with a single SQL pass.
func (l *Ledger) Summary() (TradeSummary, error) {
	query := l.sq.
		Select(
			"COUNT(*)",
			"COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(CASE WHEN pnl < 0 THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(commission), 0)",
		).
		From("trades").
		RunWith(l.db)

	var summary TradeSummary

	err := query.QueryRow().Scan(&summary.Total, &summary.Winning, &summary.Losing, &summary.TotalCommission)
	if err != nil {
		return TradeSummary{}, errors.Wrap(errors.ErrCodeLedgerFailed, "failed to summarize trades", err)
	}

	return summary, nil
}

// Write exports the fills and trades tables to Parquet files under path.
func (l *Ledger) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Raw SQL as Squirrel doesn't support COPY.
	tradesPath := filepath.Join(path, "trades.parquet")
	if _, err := l.db.Exec(fmt.Sprintf(`COPY trades TO '%s' (FORMAT PARQUET)`, tradesPath)); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerFailed, "failed to export trades to Parquet", err)
	}

	fillsPath := filepath.Join(path, "fills.parquet")
	if _, err := l.db.Exec(fmt.Sprintf(`COPY fills TO '%s' (FORMAT PARQUET)`, fillsPath)); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerFailed, "failed to export fills to Parquet", err)
	}

	return nil
}

// Cleanup closes the underlying database.
func (l *Ledger) Cleanup() error {
	if l.db == nil {
		return nil
	}

	return l.db.Close()
}
