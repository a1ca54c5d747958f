// Package results persists finished simulation runs. Results accumulate in an
// in-memory DuckDB database and can be exported per run as Parquet files plus
// a YAML report. The simulation engine itself never touches this package; the
// caller decides what to keep.
package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantfolio/stockdash-engine/internal/backtest/engine"
	"github.com/quantfolio/stockdash-engine/internal/logger"
	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// Store holds simulation results in DuckDB.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewStore opens an in-memory store.
func NewStore(log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to open results database", err)
	}

	store := &Store{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			run_id TEXT,
			strategy_name TEXT,
			bar_index INTEGER,
			signal_bar_index INTEGER,
			time TIMESTAMP,
			side TEXT,
			quantity DOUBLE,
			fill_price DOUBLE,
			cost DOUBLE,
			realized_pnl DOUBLE,
			reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS equity_curve (
			run_id TEXT,
			bar_index INTEGER,
			time TIMESTAMP,
			equity DOUBLE,
			cash DOUBLE,
			quantity DOUBLE,
			close DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS rejections (
			run_id TEXT,
			bar_index INTEGER,
			time TIMESTAMP,
			side TEXT,
			reason TEXT,
			message TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results tables", err)
		}
	}

	return nil
}

// Save inserts one run's trades, equity curve, and rejections. All inserts
// for the run share a transaction.
func (s *Store) Save(result engine.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, trade := range result.Trades {
		query, args, buildErr := s.sq.Insert("trades").
			Columns("id", "run_id", "strategy_name", "bar_index", "signal_bar_index",
				"time", "side", "quantity", "fill_price", "cost", "realized_pnl", "reason").
			Values(trade.ID, result.RunID, trade.StrategyName, trade.BarIndex, trade.SignalBarIndex,
				trade.Time, string(trade.Side), trade.Quantity, trade.FillPrice, trade.Cost,
				trade.RealizedPnL, trade.Reason).
			ToSql()
		if buildErr != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to build trade insert", buildErr)

			return err
		}

		if _, err = tx.Exec(query, args...); err != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert trade", err)

			return err
		}
	}

	for i, point := range result.EquityCurve {
		query, args, buildErr := s.sq.Insert("equity_curve").
			Columns("run_id", "bar_index", "time", "equity", "cash", "quantity", "close").
			Values(result.RunID, i, point.Time, point.Equity, point.Cash, point.Quantity, point.Close).
			ToSql()
		if buildErr != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to build equity insert", buildErr)

			return err
		}

		if _, err = tx.Exec(query, args...); err != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert equity point", err)

			return err
		}
	}

	for _, rejection := range result.Rejections {
		query, args, buildErr := s.sq.Insert("rejections").
			Columns("run_id", "bar_index", "time", "side", "reason", "message").
			Values(result.RunID, rejection.BarIndex, rejection.Time, string(rejection.Side),
				rejection.Reason, rejection.Message).
			ToSql()
		if buildErr != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to build rejection insert", buildErr)

			return err
		}

		if _, err = tx.Exec(query, args...); err != nil {
			err = errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert rejection", err)

			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to commit run", err)
	}

	s.log.Info("run saved",
		zap.String("run_id", result.RunID),
		zap.String("strategy", result.StrategyName),
		zap.Int("trades", len(result.Trades)),
	)

	return nil
}

// TradeCount returns the number of stored trades for a run.
func (s *Store) TradeCount(runID string) (int, error) {
	query, args, err := s.sq.Select("COUNT(*)").
		From("trades").
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to build trade count query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// Trades returns the stored trades of a run in fill order.
func (s *Store) Trades(runID string) ([]types.Trade, error) {
	query, args, err := s.sq.Select("id", "strategy_name", "bar_index", "signal_bar_index",
		"time", "side", "quantity", "fill_price", "cost", "realized_pnl", "reason").
		From("trades").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("bar_index ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to build trades query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		var side string

		if err := rows.Scan(&trade.ID, &trade.StrategyName, &trade.BarIndex, &trade.SignalBarIndex,
			&trade.Time, &side, &trade.Quantity, &trade.FillPrice, &trade.Cost,
			&trade.RealizedPnL, &trade.Reason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to scan trade", err)
		}

		trade.Side = types.ActionSide(side)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to read trades", err)
	}

	return trades, nil
}

// FinalEquity returns the last equity value of a run.
func (s *Store) FinalEquity(runID string) (float64, error) {
	query, args, err := s.sq.Select("equity").
		From("equity_curve").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("bar_index DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to build equity query", err)
	}

	var equity float64
	if err := s.db.QueryRow(query, args...).Scan(&equity); err != nil {
		return 0, errors.Wrap(errors.ErrCodeResultsQueryFailed, "failed to read final equity", err)
	}

	return equity, nil
}

// Export writes one run to folder as Parquet files plus the YAML report.
// The folder is created if missing.
func (s *Store) Export(folder string, result engine.Result) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results folder", err)
	}

	// Squirrel does not support COPY, so raw SQL it is. DuckDB's COPY takes
	// no placeholders in the target path either.
	exports := map[string]string{
		"trades.parquet":       "trades",
		"equity_curve.parquet": "equity_curve",
		"rejections.parquet":   "rejections",
	}

	for file, table := range exports {
		target := filepath.Join(folder, file)

		statement := fmt.Sprintf(`COPY (SELECT * FROM %s WHERE run_id = '%s') TO '%s' (FORMAT PARQUET)`,
			table, result.RunID, target)
		if _, err := s.db.Exec(statement); err != nil {
			return errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to export %s", table)
		}
	}

	reportPath := filepath.Join(folder, "report.yaml")
	if err := types.WriteReport(reportPath, result.Report); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write report", err)
	}

	s.log.Info("run exported",
		zap.String("run_id", result.RunID),
		zap.String("folder", folder),
	)

	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
