package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata/writer"
)

// binancePageSize is the number of klines binance returns per request by default.
const binancePageSize = 500

// BinanceKlinesService is the part of the binance klines service the downloader uses.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the part of the binance client the downloader uses.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service = w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service = w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.CandleWriter
}

// NewBinanceClient creates a client for the public binance market data API.
func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		apiClient: &binanceClientWrapper{client: binance.NewClient("", "")},
		writer:    nil,
	}, nil
}

// NewBinanceClientWithAPI creates a client on top of an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.CandleWriter) {
	c.writer = w
}

// Download pages through the klines of ticker. Progress is reported in milliseconds
// since startDate.
func (c *BinanceClient) Download(
	ctx context.Context,
	ticker string,
	startDate time.Time,
	endDate time.Time,
	resolution datasource.Resolution,
	onProgress OnDownloadProgress,
) (path string, err error) {
	if _, err := resolution.Minutes(); err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	startMillis := startDate.UnixMilli()
	endMillis := endDate.UnixMilli()
	total := float64(endMillis - startMillis)
	message := fmt.Sprintf("Downloading %s klines from Binance", ticker)

	current := startMillis

	for current < endMillis {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(string(resolution)).
			StartTime(current).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err)
		}

		if err := writeKlines(c.writer, ticker, klines); err != nil {
			return "", fmt.Errorf("failed to process klines: %w", err)
		}

		if len(klines) < binancePageSize {
			break
		}

		current = klines[len(klines)-1].CloseTime + 1
		reportProgress(onProgress, float64(current-startMillis), total, message)
	}

	reportProgress(onProgress, total, total, message)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// writeKlines converts binance klines to candles keyed by their open time.
func writeKlines(w writer.CandleWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "invalid kline value %q at %d", raw, k.OpenTime)
			}

			values[i] = v
		}

		candle := types.Candle{
			Timestamp: time.UnixMilli(k.OpenTime).Unix(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    int64(values[4]),
		}

		if err := w.Write(ticker, candle); err != nil {
			return err
		}
	}

	return nil
}
