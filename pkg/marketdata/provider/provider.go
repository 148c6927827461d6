package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports how far a download has come. current and total share a
// unit chosen by the provider.
type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures where downloaded candles are written.
	ConfigWriter(writer writer.CandleWriter)
	// Download fetches the candles of ticker between startDate and endDate and returns
	// the path written by the writer. The context can be used to cancel the download.
	// example:
	// Download(ctx, "SPY", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), datasource.Resolution1m, onProgress)
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, resolution datasource.Resolution, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
