package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/market"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBCandleSource serves candles from a parquet file through a DuckDB view.
// The parquet file needs the columns time, symbol, resolution, open, high, low, close and volume.
type DuckDBCandleSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBCandleSource opens a DuckDB database at path (":memory:" for an in-memory database).
// Call Initialize to attach the parquet data before querying.
func NewDuckDBCandleSource(path string, logger *logger.Logger) (*DuckDBCandleSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBCandleSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the candles view over the parquet file at path. Globs are accepted.
func (d *DuckDBCandleSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB candle source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS candles;`)
	if err != nil {
		return fmt.Errorf("failed to drop existing view: %w", err)
	}

	// squirrel has no CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW candles AS
		SELECT * FROM read_parquet('%s');
	`, path)

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet %s", path)
	}

	return nil
}

// GetCandles implements CandleSource.
func (d *DuckDBCandleSource) GetCandles(ctx context.Context, symbol string, resolution Resolution, date string) ([]types.Candle, error) {
	start, end, err := market.RegularSession(date)
	if err != nil {
		return nil, err
	}

	query, args, err := d.buildGetCandlesQuery(symbol, resolution, start, end)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query candles for %s on %s", symbol, date)
	}
	defer rows.Close()

	candles := make([]types.Candle, 0, 390)

	for rows.Next() {
		var (
			timestamp              time.Time
			open, high, low, close float64
			volume                 float64
		)

		err := rows.Scan(&timestamp, &open, &high, &low, &close, &volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		candles = append(candles, types.Candle{
			Timestamp: timestamp.Unix(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    int64(volume),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	d.logger.Debug("Loaded candles",
		zap.String("symbol", symbol),
		zap.String("resolution", string(resolution)),
		zap.String("date", date),
		zap.Int("count", len(candles)),
	)

	return candles, nil
}

// Close implements CandleSource.
func (d *DuckDBCandleSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBCandleSource) buildGetCandlesQuery(symbol string, resolution Resolution, start, end time.Time) (string, []any, error) {
	query, args, err := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("candles").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.Eq{"resolution": string(resolution)},
			squirrel.GtOrEq{"time": start.UTC()},
			squirrel.LtOrEq{"time": end.UTC()},
		}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}

	return query, args, nil
}
