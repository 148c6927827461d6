package main

import (
	"context"
	"fmt"

	enginev1 "github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/internal/version"
	"github.com/rxtech-lab/intraday-backtester/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the sweep configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Print the download config schema of this provider instead",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var (
				schema string
				err    error
			)

			if provider := cmd.String("provider"); provider != "" {
				schema, err = marketdata.GetDownloadConfigSchema(provider)
			} else {
				schema, err = enginev1.NewBacktestEngineV1().GetConfigSchema()
			}

			if err != nil {
				return err
			}

			fmt.Println(schema)

			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Summarize a sweep report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "report",
				Aliases:  []string{"r"},
				Usage:    "Path to report.yaml",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report, err := loadReport(cmd.String("report"), version.GetVersion())
			if err != nil {
				return err
			}

			fmt.Println(RenderReport(report))

			return nil
		},
	}
}

// loadReport reads a report and refuses one written by an incompatible binary.
func loadReport(path string, binaryVersion string) (types.SweepReport, error) {
	report, err := types.ReadSweepReport(path)
	if err != nil {
		return types.SweepReport{}, err
	}

	if err := version.CheckReportCompatibility(binaryVersion, report.EngineVersion); err != nil {
		return types.SweepReport{}, err
	}

	return report, nil
}
