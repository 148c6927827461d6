package writer

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// DuckDBWriter stages candles in an in-memory DuckDB table and exports them to a
// parquet file readable by the candle source.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	resolution string
}

// NewDuckDBWriter creates a writer that labels every row with resolution.
func NewDuckDBWriter(outputPath string, resolution string) CandleWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
		resolution: resolution,
	}
}

// Initialize creates the candles table, begins a transaction and prepares the insert.
// Calling it on an initialized writer is a no-op.
func (w *DuckDBWriter) Initialize() (err error) {
	if w.db != nil {
		return nil
	}

	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			time TIMESTAMP,
			symbol TEXT,
			resolution TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.closeDB()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.closeDB()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO candles (time, symbol, resolution, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.tx = nil
		w.closeDB()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts one candle inside the open transaction.
func (w *DuckDBWriter) Write(symbol string, candle types.Candle) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		time.Unix(candle.Timestamp, 0).UTC(),
		symbol,
		w.resolution,
		candle.Open,
		candle.High,
		candle.Low,
		candle.Close,
		float64(candle.Volume),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert candle", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table to parquet ordered by time.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or already finalized")
	}

	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if err := w.tx.Commit(); err != nil {
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	path := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM candles ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to parquet", err)
	}

	return w.outputPath, nil
}

// Close rolls back an unfinished transaction and closes the connection.
func (w *DuckDBWriter) Close() error {
	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}

	return w.closeDB()
}

// GetOutputPath implements CandleWriter.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func (w *DuckDBWriter) closeDB() error {
	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close db connection", err)
	}

	return nil
}
