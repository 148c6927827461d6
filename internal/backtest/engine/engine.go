package engine

import (
	"context"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// Lifecycle callback types for sweep phases
// All callbacks with error return can abort execution if they return an error

// OnSweepStartCallback is called once the grid is expanded, before any candles are loaded.
type OnSweepStartCallback func(totalCombinations int, totalDates int) error

// OnSweepEndCallback is called when the sweep completes (always called via defer).
type OnSweepEndCallback func(err error)

// OnDayLoadedCallback is called after the candles of a date are loaded. Days without
// candles are reported with numCandles 0 and then skipped.
type OnDayLoadedCallback func(date string, numCandles int) error

// OnCombinationDoneCallback is called after a combination is scored.
// It runs on worker goroutines and must be safe for concurrent use.
type OnCombinationDoneCallback func(completed int, total int, result types.CombinationResult)

// OnCombinationFailedCallback is called when a combination is excluded from the ranking.
// It runs on worker goroutines and must be safe for concurrent use.
type OnCombinationFailedCallback func(indicator types.IndicatorSettings, risk types.BacktestSettings, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the sweep engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnSweepStart        *OnSweepStartCallback
	OnSweepEnd          *OnSweepEndCallback
	OnDayLoaded         *OnDayLoadedCallback
	OnCombinationDone   *OnCombinationDoneCallback
	OnCombinationFailed *OnCombinationFailedCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML sweep configuration.
	Initialize(config string) error
	// SetDataSource sets the candle source for the engine.
	SetDataSource(source datasource.CandleSource) error
	// SetResultsFolder sets the output directory. When empty, Run keeps results in memory only.
	// Otherwise the folder receives report.yaml, combinations.parquet and trades.parquet.
	SetResultsFolder(folder string) error
	// SetReportTopN sets how many ranked combinations the report keeps.
	SetReportTopN(n int) error
	// Run sweeps every indicator and risk combination over the configured dates and
	// returns the results ranked by portfolio value change, best first.
	// The context can be used to cancel the sweep between combinations.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]types.CombinationResult, error)
	// Compute runs the signal pipeline for a single date and indicator setting.
	Compute(ctx context.Context, date string, settings types.IndicatorSettings) (types.ComputeResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
