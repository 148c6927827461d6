package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical candles into a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "First date in `YYYY-MM-DD` format",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "end",
				Aliases:  []string{"e"},
				Usage:    "Last date in `YYYY-MM-DD` format, inclusive",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s or %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "resolution",
				Aliases: []string{"r"},
				Usage:   "Candle resolution (1m, 5m, 15m, 30m, 1h)",
				Value:   string(datasource.Resolution1m),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Polygon.io API key, defaults to $POLYGON_API_KEY",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	base := marketdata.BaseDownloadConfig{
		Ticker:     cmd.String("ticker"),
		StartDate:  cmd.String("start"),
		EndDate:    cmd.String("end"),
		Resolution: datasource.Resolution(cmd.String("resolution")),
	}

	apiKey := cmd.String("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("POLYGON_API_KEY")
	}

	clientConfig, err := downloadClientConfig(marketdata.ProviderType(cmd.String("provider")), base, apiKey, cmd.String("data"))
	if err != nil {
		return err
	}

	params, err := base.ToDownloadParams()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onProgress := func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
			)
		}

		bar.Describe(message)
		_ = bar.Set(int(current))
	}

	client, err := marketdata.NewClient(clientConfig, onProgress, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := client.Download(ctx, params)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Println(TitleStyle.Render("Downloaded " + path))

	return nil
}

// downloadClientConfig validates the provider specific config and turns it into a client config.
func downloadClientConfig(providerType marketdata.ProviderType, base marketdata.BaseDownloadConfig, apiKey string, dataPath string) (marketdata.ClientConfig, error) {
	switch providerType {
	case marketdata.ProviderPolygon:
		config := marketdata.PolygonDownloadConfig{BaseDownloadConfig: base, ApiKey: apiKey}
		if err := config.Validate(); err != nil {
			return marketdata.ClientConfig{}, err
		}

		return config.ToClientConfig(dataPath), nil
	case marketdata.ProviderBinance:
		config := marketdata.BinanceDownloadConfig{BaseDownloadConfig: base}
		if err := config.Validate(); err != nil {
			return marketdata.ClientConfig{}, err
		}

		return config.ToClientConfig(dataPath), nil
	default:
		return marketdata.ClientConfig{}, fmt.Errorf("unsupported provider %q, expected one of %v", providerType, marketdata.GetSupportedProviders())
	}
}
