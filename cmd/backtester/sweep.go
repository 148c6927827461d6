package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Run every indicator and risk combination and rank them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the sweep configuration `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory receiving report.yaml and the parquet results",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet file or glob overriding the data_path of the config",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of ranked combinations kept in the report",
				Value: enginev1.DefaultReportTopN,
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
		},
		Action: sweepAction,
	}
}

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	file, err := loadSweepFile(cmd.String("config"))
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

	if err := backtester.SetResultsFolder(cmd.String("output")); err != nil {
		return err
	}

	if err := backtester.SetReportTopN(int(cmd.Int("top"))); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := &sweepProgress{enabled: !cmd.Bool("no-progress"), log: log}

	ranked, err := backtester.Run(ctx, progress.callbacks())
	progress.finish()

	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if len(ranked) == 0 {
		fmt.Println(HelpStyle.Render("No combination produced a result."))

		return nil
	}

	fmt.Println(RenderCombination("Best combination", ranked[0]))
	fmt.Println(HelpStyle.Render(fmt.Sprintf("%d combinations ranked, results in %s", len(ranked), cmd.String("output"))))

	return nil
}

// openCandleSource opens the parquet data for the config, preferring the override path.
func openCandleSource(config enginev1.SweepConfig, override string, log *logger.Logger) (*datasource.CachedCandleSource, error) {
	path := config.DataPath
	if override != "" {
		path = override
	}

	if path == "" {
		return nil, fmt.Errorf("no data path: set data_path in the config or pass --data")
	}

	source, err := datasource.NewDuckDBCandleSource(":memory:", log)
	if err != nil {
		return nil, fmt.Errorf("failed to open candle data: %w", err)
	}

	if err := source.Initialize(path); err != nil {
		_ = source.Close()

		return nil, fmt.Errorf("failed to load candle data: %w", err)
	}

	return datasource.NewCachedCandleSource(source), nil
}

// sweepProgress drives a progress bar from the engine lifecycle. The bar is created
// once the sweep size is known.
type sweepProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
	log     *logger.Logger
}

func (p *sweepProgress) callbacks() engine.LifecycleCallbacks {
	onStart := engine.OnSweepStartCallback(func(totalCombinations int, totalDates int) error {
		p.log.Info("Sweeping combinations",
			zap.Int("combinations", totalCombinations),
			zap.Int("dates", totalDates),
		)

		if p.enabled {
			p.bar = progressbar.NewOptions(totalCombinations,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("sweeping"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("combinations"),
			)
		}

		return nil
	})

	onDone := engine.OnCombinationDoneCallback(func(completed int, total int, result types.CombinationResult) {
		p.advance()
	})

	onFailed := engine.OnCombinationFailedCallback(func(indicator types.IndicatorSettings, risk types.BacktestSettings, err error) {
		p.advance()
	})

	return engine.LifecycleCallbacks{
		OnSweepStart:        &onStart,
		OnCombinationDone:   &onDone,
		OnCombinationFailed: &onFailed,
	}
}

func (p *sweepProgress) advance() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *sweepProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}
