package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	apperrors "github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockWriter is a simple mock implementation of CandleWriter for testing.
type mockWriter struct {
	initialized       bool
	initializeErr     error
	writeErr          error
	writeErrAfterN    int // Return writeErr after N successful writes (0 means immediate error)
	finalizeErr       error
	outputPath        string
	symbols           []string
	writtenData       []types.Candle
	writeCallCount    int
	finalizeCallCount int
}

func (m *mockWriter) Initialize() error {
	if m.initializeErr != nil {
		return m.initializeErr
	}
	m.initialized = true
	return nil
}

func (m *mockWriter) Write(symbol string, candle types.Candle) error {
	m.writeCallCount++
	if m.writeErr != nil && (m.writeErrAfterN == 0 || m.writeCallCount > m.writeErrAfterN) {
		return m.writeErr
	}
	m.symbols = append(m.symbols, symbol)
	m.writtenData = append(m.writtenData, candle)
	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	m.finalizeCallCount++
	if m.finalizeErr != nil {
		return "", m.finalizeErr
	}
	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	return nil
}

func (m *mockWriter) GetOutputPath() string {
	return m.outputPath
}

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	callCount     int
	intervals     []string
	startTimes    []int64
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

type mockBinanceKlinesService struct {
	client *mockBinanceAPIClient
}

func (m *mockBinanceKlinesService) Symbol(string) BinanceKlinesService {
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.client.intervals = append(m.client.intervals, interval)
	return m
}

func (m *mockBinanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	m.client.startTimes = append(m.client.startTimes, startTime)
	return m
}

func (m *mockBinanceKlinesService) EndTime(int64) BinanceKlinesService {
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++

	var err error
	if idx < len(m.client.errorsPerCall) {
		err = m.client.errorsPerCall[idx]
	}

	if idx < len(m.client.klinesPerCall) {
		return m.client.klinesPerCall[idx], err
	}

	return nil, err
}

// minuteKlines builds n one-minute klines starting at startMillis.
func minuteKlines(startMillis int64, n int) []*binance.Kline {
	klines := make([]*binance.Kline, n)
	for i := range klines {
		open := startMillis + int64(i)*60_000
		klines[i] = &binance.Kline{
			OpenTime:  open,
			Open:      "42000.50",
			High:      "42500.00",
			Low:       "41800.00",
			Close:     "42300.00",
			Volume:    "1000.5",
			CloseTime: open + 59_999,
		}
	}

	return klines
}

type BinanceClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient()
	suite.Require().NoError(err)

	binanceClient, ok := client.(*BinanceClient)
	suite.Require().True(ok)

	_, ok = binanceClient.apiClient.(*binanceClientWrapper)
	suite.True(ok, "apiClient should be a binanceClientWrapper")
	suite.Nil(binanceClient.writer)
}

func (suite *BinanceClientTestSuite) TestDownloadWithoutWriter() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "writer is not configured")
}

func (suite *BinanceClientTestSuite) TestDownloadWithInvalidResolution() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})
	client.ConfigWriter(&mockWriter{})

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution("3d"), nil)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidParameter))
}

func (suite *BinanceClientTestSuite) TestDownloadWriterInitializationError() {
	client := NewBinanceClientWithAPI(&mockBinanceAPIClient{})
	client.ConfigWriter(&mockWriter{initializeErr: errors.New("init failed")})

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to initialize writer")
}

func (suite *BinanceClientTestSuite) TestDownloadSuccess() {
	startMillis := suite.start.UnixMilli()
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{minuteKlines(startMillis, 2)}}
	w := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	path, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution5m, nil)
	suite.Require().NoError(err)
	suite.Equal("/tmp/test.parquet", path)
	suite.True(w.initialized)
	suite.Equal(1, w.finalizeCallCount)
	suite.Equal([]string{"5m"}, api.intervals)

	suite.Require().Len(w.writtenData, 2)
	suite.Equal(types.Candle{
		Timestamp: startMillis / 1000,
		Open:      42000.50,
		High:      42500.00,
		Low:       41800.00,
		Close:     42300.00,
		Volume:    1000,
	}, w.writtenData[0])
	suite.Equal(startMillis/1000+60, w.writtenData[1].Timestamp)
	suite.Equal([]string{"BTCUSDT", "BTCUSDT"}, w.symbols)
}

func (suite *BinanceClientTestSuite) TestDownloadPagination() {
	startMillis := suite.start.UnixMilli()
	firstPage := minuteKlines(startMillis, binancePageSize)
	secondPageStart := firstPage[len(firstPage)-1].CloseTime + 1
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{
		firstPage,
		minuteKlines(secondPageStart, 10),
	}}
	w := &mockWriter{outputPath: "/tmp/test.parquet"}

	var progress []float64

	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m,
		func(current float64, total float64, _ string) {
			progress = append(progress, current/total)
		})
	suite.Require().NoError(err)

	suite.Equal(2, api.callCount)
	suite.Equal([]int64{startMillis, secondPageStart}, api.startTimes)
	suite.Len(w.writtenData, binancePageSize+10)
	suite.Require().NotEmpty(progress)
	suite.Equal(1.0, progress[len(progress)-1])
}

func (suite *BinanceClientTestSuite) TestDownloadAPIError() {
	api := &mockBinanceAPIClient{errorsPerCall: []error{errors.New("rate limited")}}
	w := &mockWriter{}

	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m, nil)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMarketDataFetchFailed))
	suite.Equal(0, w.finalizeCallCount)
}

func (suite *BinanceClientTestSuite) TestDownloadWriteError() {
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{minuteKlines(suite.start.UnixMilli(), 3)}}
	w := &mockWriter{writeErr: errors.New("disk full"), writeErrAfterN: 1}

	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to process klines")
	suite.Len(w.writtenData, 1)
}

func (suite *BinanceClientTestSuite) TestDownloadFinalizeError() {
	api := &mockBinanceAPIClient{klinesPerCall: [][]*binance.Kline{minuteKlines(suite.start.UnixMilli(), 1)}}
	w := &mockWriter{finalizeErr: errors.New("export failed")}

	client := NewBinanceClientWithAPI(api)
	client.ConfigWriter(w)

	_, err := client.Download(context.Background(), "BTCUSDT", suite.start, suite.end, datasource.Resolution1m, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to finalize writer")
}

func (suite *BinanceClientTestSuite) TestWriteKlinesWithInvalidNumbers() {
	klines := minuteKlines(suite.start.UnixMilli(), 1)
	klines[0].High = "not-a-number"

	err := writeKlines(&mockWriter{}, "BTCUSDT", klines)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMarketDataFetchFailed))
}

func (suite *BinanceClientTestSuite) TestNewMarketDataProvider() {
	provider, err := NewMarketDataProvider(ProviderBinance, "")
	suite.NoError(err)
	suite.IsType(&BinanceClient{}, provider)

	provider, err = NewMarketDataProvider(ProviderPolygon, "key")
	suite.NoError(err)
	suite.IsType(&PolygonClient{}, provider)

	_, err = NewMarketDataProvider(ProviderPolygon, "")
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingParameter))

	_, err = NewMarketDataProvider(ProviderType("kraken"), "")
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidProvider))
}
