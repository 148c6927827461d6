package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// 2023-01-23 09:30:00 America/New_York
const sessionOpen int64 = 1674484200

type parquetRow struct {
	symbol     string
	resolution Resolution
	candle     types.Candle
}

type DuckDBCandleSourceTestSuite struct {
	suite.Suite
	source *DuckDBCandleSource
	tmpDir string
}

func TestDuckDBCandleSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBCandleSourceTestSuite))
}

func (suite *DuckDBCandleSourceTestSuite) SetupTest() {
	suite.tmpDir = suite.T().TempDir()

	var rows []parquetRow

	// pre-market, one full hour of session candles, post-market
	rows = append(rows, parquetRow{"SPY", Resolution1m, candleAt(sessionOpen - 30*60)})
	for i := 0; i < 60; i++ {
		rows = append(rows, parquetRow{"SPY", Resolution1m, candleAt(sessionOpen + int64(i)*60)})
	}

	rows = append(rows,
		parquetRow{"SPY", Resolution1m, candleAt(sessionOpen + 390*60)},
		parquetRow{"QQQ", Resolution1m, candleAt(sessionOpen)},
		parquetRow{"SPY", Resolution5m, candleAt(sessionOpen)},
		// the last second of the session belongs to it
		parquetRow{"SPY", Resolution1h, candleAt(sessionOpen + 390*60 - 1)},
	)

	path := filepath.Join(suite.tmpDir, "candles.parquet")
	suite.Require().NoError(writeCandlesToParquet(rows, path))

	source, err := NewDuckDBCandleSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(source.Initialize(path))
	suite.source = source
}

func (suite *DuckDBCandleSourceTestSuite) TearDownTest() {
	if suite.source != nil {
		suite.source.Close()
	}
}

func candleAt(timestamp int64) types.Candle {
	price := 396.0 + float64(timestamp-sessionOpen)/6000

	return types.Candle{
		Timestamp: timestamp,
		Open:      price,
		High:      price + 0.25,
		Low:       price - 0.25,
		Close:     price + 0.1,
		Volume:    12000,
	}
}

func writeCandlesToParquet(rows []parquetRow, filePath string) error {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE candles (
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
		return err
	}

	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO candles VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			time.Unix(r.candle.Timestamp, 0).UTC(), r.symbol, string(r.resolution),
			r.candle.Open, r.candle.High, r.candle.Low, r.candle.Close, float64(r.candle.Volume))
		if err != nil {
			return err
		}
	}

	_, err = db.Exec(fmt.Sprintf(`COPY candles TO '%s' (FORMAT PARQUET)`, filePath))

	return err
}

func (suite *DuckDBCandleSourceTestSuite) TestGetCandlesWithinSession() {
	candles, err := suite.source.GetCandles(context.Background(), "SPY", Resolution1m, "2023-01-23")
	suite.Require().NoError(err)
	suite.Require().Len(candles, 60)

	suite.Equal(candleAt(sessionOpen), candles[0])
	suite.Equal(sessionOpen+59*60, candles[59].Timestamp)

	for i := 1; i < len(candles); i++ {
		suite.Greater(candles[i].Timestamp, candles[i-1].Timestamp)
	}
}

func (suite *DuckDBCandleSourceTestSuite) TestGetCandlesFiltersSymbolAndResolution() {
	candles, err := suite.source.GetCandles(context.Background(), "QQQ", Resolution1m, "2023-01-23")
	suite.Require().NoError(err)
	suite.Len(candles, 1)

	candles, err = suite.source.GetCandles(context.Background(), "SPY", Resolution5m, "2023-01-23")
	suite.Require().NoError(err)
	suite.Len(candles, 1)

	candles, err = suite.source.GetCandles(context.Background(), "SPY", Resolution1h, "2023-01-23")
	suite.Require().NoError(err)
	suite.Require().Len(candles, 1)
	suite.Equal(sessionOpen+390*60-1, candles[0].Timestamp)
}

func (suite *DuckDBCandleSourceTestSuite) TestGetCandlesEmptyDay() {
	candles, err := suite.source.GetCandles(context.Background(), "SPY", Resolution1m, "2023-01-24")
	suite.Require().NoError(err)
	suite.Empty(candles)
}

func (suite *DuckDBCandleSourceTestSuite) TestGetCandlesInvalidDate() {
	_, err := suite.source.GetCandles(context.Background(), "SPY", Resolution1m, "23-01-2023")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDate))
}

func (suite *DuckDBCandleSourceTestSuite) TestInitializeMissingFile() {
	source, err := NewDuckDBCandleSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	defer source.Close()

	err = source.Initialize(filepath.Join(suite.tmpDir, "missing.parquet"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *DuckDBCandleSourceTestSuite) TestResolutionMinutes() {
	minutes, err := Resolution15m.Minutes()
	suite.NoError(err)
	suite.Equal(15, minutes)

	_, err = Resolution("2d").Minutes()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
