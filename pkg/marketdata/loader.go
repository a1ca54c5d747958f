// Package marketdata loads OHLCV bar series from CSV and Parquet files.
// DuckDB does the parsing, so anything its readers accept works: quoted
// fields, ISO or date-only timestamps, gzip-compressed CSV.
package marketdata

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantfolio/stockdash-engine/internal/logger"
	"github.com/quantfolio/stockdash-engine/internal/types"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// timeColumns are the column names accepted for the bar timestamp, in
// preference order.
var timeColumns = []string{"time", "date", "timestamp", "datetime"}

// Loader reads bar series through an embedded DuckDB instance.
type Loader struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewLoader opens an in-memory DuckDB instance for reading data files.
func NewLoader(log *logger.Logger) (*Loader, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to open data loader database", err)
	}

	return &Loader{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Load reads the file at path into a validated, time-ordered bar series.
// The format is picked by extension: .parquet uses the Parquet reader,
// everything else goes through CSV auto-detection.
func (l *Loader) Load(path string) (types.BarSeries, error) {
	reader := "read_csv_auto"
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		reader = "read_parquet"
	}

	if _, err := l.db.Exec(`DROP VIEW IF EXISTS bars`); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to reset loader view", err)
	}

	// CREATE VIEW takes no placeholders; the path is quoted for DuckDB.
	statement := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s')`,
		reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := l.db.Exec(statement); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to read %s", path)
	}

	timeColumn, err := l.findTimeColumn()
	if err != nil {
		return nil, err
	}

	query, args, err := l.sq.Select(
		timeColumn, "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy(timeColumn + " ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to build bar query", err)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err,
			"%s is missing one of the open/high/low/close/volume columns", path)
	}
	defer rows.Close()

	var series types.BarSeries

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan bar", err)
		}

		series = append(series, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to read bars", err)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	l.log.Info("series loaded",
		zap.String("path", path),
		zap.Int("bars", len(series)),
		zap.Time("first", series[0].Time),
		zap.Time("last", series[len(series)-1].Time),
	)

	return series, nil
}

// findTimeColumn locates the timestamp column of the loaded view.
func (l *Loader) findTimeColumn() (string, error) {
	rows, err := l.db.Query(
		`SELECT lower(column_name) FROM information_schema.columns WHERE table_name = 'bars'`)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDataParseFailed, "failed to inspect columns", err)
	}
	defer rows.Close()

	available := make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan column name", err)
		}

		available[name] = true
	}

	if err := rows.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeDataParseFailed, "failed to list columns", err)
	}

	for _, candidate := range timeColumns {
		if available[candidate] {
			return candidate, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeDataParseFailed,
		"no timestamp column found, expected one of %v", timeColumns)
}

// Close releases the loader's database.
func (l *Loader) Close() error {
	return l.db.Close()
}
