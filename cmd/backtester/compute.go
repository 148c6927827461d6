package main

import (
	"context"
	"fmt"

	enginev1 "github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/urfave/cli/v3"
)

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compute",
		Usage: "Show the direction windows of one date for a single indicator setting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the sweep configuration `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "date",
				Usage:    "Trading date in `YYYY-MM-DD` format",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet file or glob overriding the data_path of the config",
			},
			&cli.IntFlag{
				Name:  "periods",
				Usage: "Supertrend ATR periods",
			},
			&cli.FloatFlag{
				Name:  "multiplier",
				Usage: "Supertrend ATR multiplier",
			},
			&cli.IntFlag{
				Name:  "vwap-ema-fast",
				Usage: "Fast EMA periods over VWAP",
			},
			&cli.IntFlag{
				Name:  "vwap-ema-slow",
				Usage: "Slow EMA periods over VWAP",
			},
			&cli.IntFlag{
				Name:  "ema-fast",
				Usage: "Fast EMA periods over close",
			},
			&cli.IntFlag{
				Name:  "ema-slow",
				Usage: "Slow EMA periods over close",
			},
		},
		Action: computeAction,
	}
}

func computeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	file, err := loadSweepFile(cmd.String("config"))
	if err != nil {
		return err
	}

	settings, err := computeSettings(file.Config, cmd)
	if err != nil {
		return err
	}

	source, err := openCandleSource(file.Config, cmd.String("data"), log)
	if err != nil {
		return err
	}
	defer source.Close()

	backtester := enginev1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.Initialize(file.Raw); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := backtester.SetDataSource(source); err != nil {
		return err
	}

	result, err := backtester.Compute(ctx, cmd.String("date"), settings)
	if err != nil {
		return fmt.Errorf("compute failed: %w", err)
	}

	fmt.Println(RenderCompute(result))

	return nil
}

// computeSettings starts from the first setting of the configured grid and applies
// any indicator flag given on the command line.
func computeSettings(config enginev1.SweepConfig, cmd *cli.Command) (types.IndicatorSettings, error) {
	grid, err := config.IndicatorSettingsGrid()
	if err != nil {
		return types.IndicatorSettings{}, err
	}

	if len(grid) == 0 {
		return types.IndicatorSettings{}, fmt.Errorf("indicator grid of %s is empty", config.Strategy)
	}

	settings := grid[0]

	switch settings.Type {
	case types.IndicatorTypeSupertrend:
		if cmd.IsSet("periods") {
			settings.Supertrend.Periods = int(cmd.Int("periods"))
		}

		if cmd.IsSet("multiplier") {
			settings.Supertrend.Multiplier = cmd.Float("multiplier")
		}
	case types.IndicatorTypeVwapMvwapEmaCrossover:
		crossover := &settings.VwapMvwapEmaCrossover
		if cmd.IsSet("vwap-ema-fast") {
			crossover.VwapEmaFastPeriods = int(cmd.Int("vwap-ema-fast"))
		}

		if cmd.IsSet("vwap-ema-slow") {
			crossover.VwapEmaSlowPeriods = int(cmd.Int("vwap-ema-slow"))
		}

		if cmd.IsSet("ema-fast") {
			crossover.EmaFastPeriods = int(cmd.Int("ema-fast"))
		}

		if cmd.IsSet("ema-slow") {
			crossover.EmaSlowPeriods = int(cmd.Int("ema-slow"))
		}
	}

	return settings, nil
}
