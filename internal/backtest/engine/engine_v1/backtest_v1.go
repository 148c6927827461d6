package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/results"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/indicator"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/internal/version"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	// ReportFileName is the sweep summary written to the results folder.
	ReportFileName = "report.yaml"
	// StatisticsFileName holds the statistics of the best combination.
	StatisticsFileName = "statistics.yaml"
	// DefaultReportTopN is the number of ranked combinations kept in the report.
	DefaultReportTopN = 20
)

// tradingDay is one date of candles loaded ahead of the simulation.
type tradingDay struct {
	date    string
	candles []types.Candle
}

// combinationSlot is the parallel-map slot a worker writes its result into.
type combinationSlot struct {
	result types.CombinationResult
	ok     bool
}

type BacktestEngineV1 struct {
	config            SweepConfig
	initialized       bool
	resultsFolder     string
	reportTopN        int
	log               *logger.Logger
	indicatorRegistry indicator.IndicatorRegistry
	datasource        datasource.CandleSource
	cache             cache.Cache
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:            EmptyConfig(),
		initialized:       false,
		resultsFolder:     "",
		reportTopN:        DefaultReportTopN,
		log:               nil,
		indicatorRegistry: nil,
		datasource:        nil,
		cache:             cache.NewSignalCache(),
	}
}

// NewBacktestEngineV1WithLogger creates an engine that logs to the given logger
// instead of building a production one on Initialize.
func NewBacktestEngineV1WithLogger(log *logger.Logger) engine.Engine {
	e := NewBacktestEngineV1().(*BacktestEngineV1)
	e.log = log

	return e
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if b.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return err
		}

		b.log = log
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(config), &cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse sweep config", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	b.config = cfg
	b.indicatorRegistry = indicator.NewDefaultIndicatorRegistry()
	b.cache.Reset()
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", cfg.Symbol),
		zap.String("resolution", string(cfg.Resolution)),
		zap.String("strategy", string(cfg.Strategy)),
		zap.String("start_date", cfg.StartDate),
		zap.String("end_date", cfg.EndDate),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(source datasource.CandleSource) error {
	b.datasource = source

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// SetReportTopN implements engine.Engine.
func (b *BacktestEngineV1) SetReportTopN(n int) error {
	if n < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "top n must not be negative, got %d", n)
	}

	b.reportTopN = n

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (ranked []types.CombinationResult, err error) {
	defer func() {
		if callbacks.OnSweepEnd != nil {
			(*callbacks.OnSweepEnd)(err)
		}
	}()

	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	indicatorGrid, err := b.config.IndicatorSettingsGrid()
	if err != nil {
		return nil, err
	}

	riskGrid, err := b.config.BacktestSettingsGrid()
	if err != nil {
		return nil, err
	}

	for _, risk := range riskGrid {
		if risk.EntryMode == types.EntryModeMultiple {
			return nil, errors.New(errors.ErrCodeUnsupportedEntryMode, "multiple entry backtest mode is not supported")
		}
	}

	dates, err := b.config.TradingDates()
	if err != nil {
		return nil, err
	}

	total := len(indicatorGrid) * len(riskGrid)
	if total == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoCombinations, "the sweep grid has no combinations")
	}

	if callbacks.OnSweepStart != nil {
		if err := (*callbacks.OnSweepStart)(total, len(dates)); err != nil {
			return nil, fmt.Errorf("sweep start callback failed: %w", err)
		}
	}

	b.log.Info("Sweep started",
		zap.Int("combinations", total),
		zap.Int("indicator_settings", len(indicatorGrid)),
		zap.Int("risk_settings", len(riskGrid)),
		zap.Int("dates", len(dates)),
	)

	days, err := b.loadDays(ctx, dates, callbacks)
	if err != nil {
		return nil, err
	}

	ranked, numFailed, err := b.sweep(ctx, days, indicatorGrid, riskGrid, callbacks)
	if err != nil {
		return nil, err
	}

	b.log.Info("Sweep finished",
		zap.Int("ranked", len(ranked)),
		zap.Int("failed", numFailed),
		zap.Int("days_with_candles", len(days)),
		zap.Int("cached_days", b.cache.Len()),
	)

	if b.resultsFolder != "" {
		if err := b.writeResults(days, ranked, numFailed); err != nil {
			return nil, err
		}
	}

	return ranked, nil
}

// sweep scores every combination on a bounded worker pool and ranks the results.
func (b *BacktestEngineV1) sweep(
	ctx context.Context,
	days []tradingDay,
	indicatorGrid []types.IndicatorSettings,
	riskGrid []types.BacktestSettings,
	callbacks engine.LifecycleCallbacks,
) ([]types.CombinationResult, int, error) {
	total := len(indicatorGrid) * len(riskGrid)
	slots := make([]combinationSlot, total)
	progress := newProgressTracker(total, b.config.ProgressEvery, b.log)

	var numFailed atomic.Int64

	workers := b.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ind := range indicatorGrid {
		for j, risk := range riskGrid {
			if gctx.Err() != nil {
				break
			}

			slot := &slots[i*len(riskGrid)+j]

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				result, _, err := b.safeRunCombination(days, ind, risk, false)
				if err != nil {
					numFailed.Add(1)
					b.log.Warn("Combination excluded from ranking",
						zap.String("indicator", ind.String()),
						zap.Float64("profit_limit_pct", risk.ProfitLimitPct),
						zap.Float64("stop_loss_pct", risk.StopLossPct),
						zap.Error(err),
					)

					if callbacks.OnCombinationFailed != nil {
						(*callbacks.OnCombinationFailed)(ind, risk, err)
					}

					progress.Done()

					return nil
				}

				slot.result = result
				slot.ok = true
				completed := progress.Done()

				if callbacks.OnCombinationDone != nil {
					(*callbacks.OnCombinationDone)(completed, total, result)
				}

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("sweep stopped after %d of %d combinations: %w", progress.Completed(), total, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("sweep stopped after %d of %d combinations: %w", progress.Completed(), total, err)
	}

	ranked := make([]types.CombinationResult, 0, total)
	for _, slot := range slots {
		if slot.ok {
			ranked = append(ranked, slot.result)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Statistics.PortfolioValueChangePct > ranked[j].Statistics.PortfolioValueChangePct
	})

	return ranked, int(numFailed.Load()), nil
}

// loadDays reads the candles of every date in order. Days without candles are skipped.
func (b *BacktestEngineV1) loadDays(ctx context.Context, dates []string, callbacks engine.LifecycleCallbacks) ([]tradingDay, error) {
	days := make([]tradingDay, 0, len(dates))

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candles, err := b.datasource.GetCandles(ctx, b.config.Symbol, b.config.Resolution, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load candles for %s: %w", date, err)
		}

		if callbacks.OnDayLoaded != nil {
			if err := (*callbacks.OnDayLoaded)(date, len(candles)); err != nil {
				return nil, fmt.Errorf("day loaded callback failed: %w", err)
			}
		}

		if len(candles) == 0 {
			b.log.Warn("No candles for date, skipping", zap.String("date", date))

			continue
		}

		b.log.Debug("Candles loaded", zap.String("date", date), zap.Int("candles", len(candles)))
		days = append(days, tradingDay{date: date, candles: candles})
	}

	return days, nil
}

// safeRunCombination turns a panic inside one combination into an error. Invariant
// violations are re-raised.
func (b *BacktestEngineV1) safeRunCombination(
	days []tradingDay,
	ind types.IndicatorSettings,
	risk types.BacktestSettings,
	collectTrades bool,
) (result types.CombinationResult, trades []types.TradeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if IsInvariantViolation(r) {
				panic(r)
			}

			err = errors.Newf(errors.ErrCodeCombinationFailed, "combination %s panicked: %v", ind, r)
		}
	}()

	result, trades, err = b.runCombination(days, ind, risk, collectTrades)
	if err != nil {
		return result, nil, errors.Wrapf(errors.ErrCodeCombinationFailed, err, "combination %s failed", ind)
	}

	return result, trades, nil
}

// runCombination simulates one combination over every loaded day. Trades are only
// returned when collectTrades is set.
func (b *BacktestEngineV1) runCombination(
	days []tradingDay,
	ind types.IndicatorSettings,
	risk types.BacktestSettings,
	collectTrades bool,
) (types.CombinationResult, []types.TradeResult, error) {
	slip := slippage.GetSlippageHandler(b.config.RiskGrid.SlippageModel, risk.SlippagePct)

	var trades []types.TradeResult

	for _, day := range days {
		entry, err := b.signalEntry(day, ind, risk.WarmupIndex, risk.SlippagePct, slip)
		if err != nil {
			return types.CombinationResult{}, nil, err
		}

		dayTrades, err := SimulateTrades(entry.Snapshots, entry.Projections, risk, slip)
		if err != nil {
			return types.CombinationResult{}, nil, err
		}

		trades = append(trades, dayTrades...)
	}

	result := types.CombinationResult{
		IndicatorSettings: ind,
		RiskSettings:      risk,
		Statistics:        CalculateStatistics(len(days), trades, b.config.StartingPortfolioValue()),
	}

	if !collectTrades {
		return result, nil, nil
	}

	return result, trades, nil
}

// signalEntry returns the snapshots, windows and projections of one day, building
// them once per key.
func (b *BacktestEngineV1) signalEntry(
	day tradingDay,
	ind types.IndicatorSettings,
	warmupIndex int,
	slippagePct float64,
	slip slippage.Slippage,
) (cache.Entry, error) {
	key := cache.Key{
		Date:        day.date,
		Indicator:   ind,
		WarmupIndex: warmupIndex,
		SlippagePct: slippagePct,
	}

	return b.cache.GetOrBuild(key, func() (cache.Entry, error) {
		adapter, err := b.indicatorRegistry.GetIndicator(ind.Type)
		if err != nil {
			return cache.Entry{}, err
		}

		snapshots, err := indicator.SignalSnapshots(adapter, day.candles, ind)
		if err != nil {
			b.log.Debug("Indicator fell back to flat",
				zap.String("date", day.date),
				zap.String("indicator", ind.String()),
				zap.Error(err),
			)
		}

		windows := BuildDirectionWindows(snapshots, warmupIndex)

		return cache.Entry{
			Snapshots:   snapshots,
			Windows:     windows,
			Projections: ProjectWindows(snapshots, windows, slip),
		}, nil
	})
}

// writeResults exports the ranking, the trades of the best combination and the report.
func (b *BacktestEngineV1) writeResults(days []tradingDay, ranked []types.CombinationResult, numFailed int) error {
	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results folder", err)
	}

	writer, err := results.NewResultWriter(b.log)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.AddCombinations(ranked); err != nil {
		return err
	}

	var (
		best           *types.CombinationResult
		statisticsPath string
	)

	if len(ranked) > 0 {
		best = &ranked[0]

		_, trades, err := b.safeRunCombination(days, best.IndicatorSettings, best.RiskSettings, true)
		if err != nil {
			return fmt.Errorf("failed to replay best combination: %w", err)
		}

		if err := writer.AddTrades(trades); err != nil {
			return err
		}

		statisticsPath = filepath.Join(b.resultsFolder, StatisticsFileName)
		if err := types.WriteStatistics(statisticsPath, best.Statistics); err != nil {
			return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write best combination statistics", err)
		}
	}

	combinationsPath, tradesPath, err := writer.Write(b.resultsFolder)
	if err != nil {
		return err
	}

	top := ranked
	if len(top) > b.reportTopN {
		top = top[:b.reportTopN]
	}

	report := types.SweepReport{
		ID:                   uuid.New().String(),
		Timestamp:            time.Now().UTC(),
		EngineVersion:        version.GetVersion(),
		Symbol:               b.config.Symbol,
		Resolution:           string(b.config.Resolution),
		StartDate:            b.config.StartDate,
		EndDate:              b.config.EndDate,
		NumCombinations:      len(ranked),
		NumFailed:            numFailed,
		Best:                 best,
		Top:                  top,
		CombinationsFilePath: combinationsPath,
		TradesFilePath:       tradesPath,
		StatisticsFilePath:   statisticsPath,
	}

	reportPath := filepath.Join(b.resultsFolder, ReportFileName)
	if err := types.WriteSweepReport(reportPath, report); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write sweep report", err)
	}

	b.log.Info("Results written",
		zap.String("report", reportPath),
		zap.String("combinations", combinationsPath),
		zap.String("trades", tradesPath),
	)

	return nil
}

// Compute implements engine.Engine.
func (b *BacktestEngineV1) Compute(ctx context.Context, date string, settings types.IndicatorSettings) (types.ComputeResult, error) {
	if err := b.preRunCheck(); err != nil {
		return types.ComputeResult{}, err
	}

	candles, err := b.datasource.GetCandles(ctx, b.config.Symbol, b.config.Resolution, date)
	if err != nil {
		return types.ComputeResult{}, fmt.Errorf("failed to load candles for %s: %w", date, err)
	}

	adapter, err := b.indicatorRegistry.GetIndicator(settings.Type)
	if err != nil {
		return types.ComputeResult{}, err
	}

	result := types.ComputeResult{
		Date:           date,
		Indicator:      settings,
		NumCandles:     len(candles),
		LatestWindow:   optional.None[types.DirectionWindow](),
		LatestSnapshot: optional.None[types.SignalSnapshot](),
	}

	snapshots, err := indicator.SignalSnapshots(adapter, candles, settings)
	if err != nil {
		result.IndicatorError = err.Error()
	}

	result.Windows = BuildDirectionWindows(snapshots, b.config.RiskGrid.WarmupIndex)

	if latest, ok := LatestDirectionWindow(result.Windows); ok {
		result.LatestWindow = optional.Some(latest)
		result.LatestSnapshot = optional.Some(snapshots[latest.StartIndex])
	}

	return result, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}
