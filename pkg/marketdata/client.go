package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/market"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata/provider"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata/writer"
	"go.uber.org/zap"
)

type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=duckdb"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
// EndDate is exclusive.
type DownloadParams struct {
	Ticker     string                `validate:"required"`
	StartDate  time.Time             `validate:"required"`
	EndDate    time.Time             `validate:"required,gtfield=StartDate"`
	Resolution datasource.Resolution `validate:"required,oneof=1m 5m 15m 30m 1h"`
}

// Client downloads candles from a provider into parquet files the candle source can read.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, onProgress, log), nil
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, log *logger.Logger) *Client {
	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
		log:        log,
	}
}

// Download fetches the candles described by params and returns the parquet path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := marketWriter.Close(); err != nil {
			c.log.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(marketWriter)

	c.log.Info("Downloading candles",
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("resolution", string(params.Resolution)),
	)

	path, err := c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, params.Resolution, c.onProgress)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	c.log.Info("Download finished", zap.String("path", path))

	return path, nil
}

// OutputFileName is TICKER_START_END_RESOLUTION.parquet with the inclusive date range.
func OutputFileName(params DownloadParams) string {
	return fmt.Sprintf("%s_%s_%s_%s.parquet",
		params.Ticker,
		params.StartDate.Format(market.DateLayout),
		params.EndDate.AddDate(0, 0, -1).Format(market.DateLayout),
		params.Resolution)
}

func (c *Client) setupWriter(params DownloadParams) (writer.CandleWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create data folder", err)
		}

		outputPath := filepath.Join(c.config.DataPath, OutputFileName(params))

		return writer.NewDuckDBWriter(outputPath, string(params.Resolution)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeMarketDataWriteFailed, "unsupported writer type: %s", c.config.WriterType)
	}
}
