package main

import (
	"context"
	"fmt"
	"log"
	"os"

	enginev1 "github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/version"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// sweepFile is a sweep configuration read from disk. Raw is handed to the engine
// as-is, Config is decoded locally to find the data path and grid defaults.
type sweepFile struct {
	Raw    string
	Config enginev1.SweepConfig
}

func loadSweepFile(path string) (sweepFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sweepFile{}, fmt.Errorf("failed to read config: %w", err)
	}

	config := enginev1.DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return sweepFile{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return sweepFile{Raw: string(data), Config: config}, nil
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return log, nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtester",
		Usage:   "Sweep intraday signal strategies over historical candles",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			sweepCommand(),
			computeCommand(),
			downloadCommand(),
			schemaCommand(),
			initCommand(),
			showCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(ErrorStyle.Render(err.Error()))
	}
}
