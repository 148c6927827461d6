package datasource_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CachedCandleSourceTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	underlying *mocks.MockCandleSource
	cached     *datasource.CachedCandleSource
}

func TestCachedCandleSourceSuite(t *testing.T) {
	suite.Run(t, new(CachedCandleSourceTestSuite))
}

func (suite *CachedCandleSourceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.underlying = mocks.NewMockCandleSource(suite.ctrl)
	suite.cached = datasource.NewCachedCandleSource(suite.underlying)
}

func (suite *CachedCandleSourceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CachedCandleSourceTestSuite) TestRepeatedCallsHitUnderlyingOnce() {
	day := []types.Candle{{Timestamp: 1674484200, Open: 396.25, High: 396.5, Low: 396, Close: 396.4, Volume: 100}}

	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-23").
		Return(day, nil).
		Times(1)

	for i := 0; i < 3; i++ {
		candles, err := suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, "2023-01-23")
		suite.Require().NoError(err)
		suite.Equal(day, candles)
	}
}

func (suite *CachedCandleSourceTestSuite) TestDistinctKeys() {
	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-23").
		Return([]types.Candle{}, nil).
		Times(1)
	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution5m, "2023-01-23").
		Return([]types.Candle{}, nil).
		Times(1)
	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-24").
		Return([]types.Candle{}, nil).
		Times(1)

	ctx := context.Background()
	_, _ = suite.cached.GetCandles(ctx, "SPY", datasource.Resolution1m, "2023-01-23")
	_, _ = suite.cached.GetCandles(ctx, "SPY", datasource.Resolution5m, "2023-01-23")
	_, _ = suite.cached.GetCandles(ctx, "SPY", datasource.Resolution1m, "2023-01-24")
	_, _ = suite.cached.GetCandles(ctx, "SPY", datasource.Resolution1m, "2023-01-23")
}

func (suite *CachedCandleSourceTestSuite) TestErrorsAreNotCached() {
	gomock.InOrder(
		suite.underlying.EXPECT().
			GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-23").
			Return(nil, fmt.Errorf("connection reset")),
		suite.underlying.EXPECT().
			GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-23").
			Return([]types.Candle{{Timestamp: 1674484200}}, nil),
	)

	_, err := suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, "2023-01-23")
	suite.Error(err)

	candles, err := suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, "2023-01-23")
	suite.NoError(err)
	suite.Len(candles, 1)
}

func (suite *CachedCandleSourceTestSuite) TestClearCache() {
	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, "2023-01-23").
		Return([]types.Candle{}, nil).
		Times(2)

	_, _ = suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, "2023-01-23")
	suite.cached.ClearCache()
	_, _ = suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, "2023-01-23")
}

func (suite *CachedCandleSourceTestSuite) TestConcurrentAccess() {
	suite.underlying.EXPECT().
		GetCandles(gomock.Any(), "SPY", datasource.Resolution1m, gomock.Any()).
		Return([]types.Candle{{Timestamp: 1674484200}}, nil).
		Times(5)

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			date := fmt.Sprintf("2023-01-%02d", 23+idx%5)
			candles, err := suite.cached.GetCandles(context.Background(), "SPY", datasource.Resolution1m, date)
			suite.NoError(err)
			suite.Len(candles, 1)
		}(i)
	}

	wg.Wait()
}

func (suite *CachedCandleSourceTestSuite) TestClose() {
	suite.underlying.EXPECT().Close().Return(nil)
	suite.NoError(suite.cached.Close())
}
