package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata/writer"
)

// PolygonAggsIterator is the part of the polygon aggregate iterator the client uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the polygon REST client the downloader uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.CandleWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return &PolygonClient{
		apiClient: &polygonClientWrapper{client: polygon.New(apiKey)},
		writer:    nil,
	}, nil
}

// NewPolygonClientWithAPI creates a client on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.CandleWriter) {
	c.writer = w
}

// Download pages through the polygon aggregates of ticker. Progress is reported in
// days since startDate.
func (c *PolygonClient) Download(
	ctx context.Context,
	ticker string,
	startDate time.Time,
	endDate time.Time,
	resolution datasource.Resolution,
	onProgress OnDownloadProgress,
) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured for PolygonClient. Call ConfigWriter first")
	}

	minutes, err := resolution.Minutes()
	if err != nil {
		return "", err
	}

	if err := c.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	totalDays := endDate.Sub(startDate).Hours() / 24
	message := fmt.Sprintf("Downloading %s", ticker)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: minutes,
		Timespan:   models.Minute,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	aggs := c.apiClient.ListAggs(ctx, params)

	for aggs.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		agg := aggs.Item()
		candle := types.Candle{
			Timestamp: time.Time(agg.Timestamp).Unix(),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    int64(agg.Volume),
		}

		if err := c.writer.Write(ticker, candle); err != nil {
			return "", fmt.Errorf("failed to write data: %w", err)
		}

		reportProgress(onProgress, time.Time(agg.Timestamp).Sub(startDate).Hours()/24, totalDays, message)
	}

	if err := aggs.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "error iterating polygon aggregates", err)
	}

	reportProgress(onProgress, totalDays, totalDays, message)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}
