package results

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"go.uber.org/zap"
)

const (
	CombinationsFileName = "combinations.parquet"
	TradesFileName       = "trades.parquet"
)

var combinationColumns = []string{
	"combination_rank", "indicator", "indicator_type",
	"supertrend_periods", "supertrend_multiplier",
	"vwap_ema_fast_periods", "vwap_ema_slow_periods", "ema_fast_periods", "ema_slow_periods",
	"slippage_pct", "profit_limit_pct", "stop_loss_pct", "warmup_index", "entry_mode",
	"total_profit_loss_pct", "total_win_profit_loss_pct", "total_loss_profit_loss_pct",
	"num_trades", "num_dates", "num_profit_limits", "num_stop_losses", "num_direction_changes",
	"num_wins", "num_losses", "num_breakevens",
	"num_trades_per_day", "win_loss_ratio", "win_rate",
	"starting_portfolio_value", "final_portfolio_value", "portfolio_value_change", "portfolio_value_change_pct",
}

var tradeColumns = []string{
	"trade_index", "direction", "outcome",
	"entry_time", "exit_time", "peak_time", "trough_time",
	"open_price", "exit_price", "profit_limit_price", "stop_loss_price",
	"profit_loss", "profit_loss_pct", "duration_seconds", "peak_pl_pct", "trough_pl_pct",
}

// ResultWriter stages sweep results in an in-memory DuckDB database and exports them to parquet.
type ResultWriter struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewResultWriter(logger *logger.Logger) (*ResultWriter, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open result database", err)
	}

	w := &ResultWriter{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := w.Initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return w, nil
}

// Initialize creates the combinations and trades tables.
func (w *ResultWriter) Initialize() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS combinations (
			combination_rank INTEGER,
			indicator TEXT,
			indicator_type TEXT,
			supertrend_periods INTEGER,
			supertrend_multiplier DOUBLE,
			vwap_ema_fast_periods INTEGER,
			vwap_ema_slow_periods INTEGER,
			ema_fast_periods INTEGER,
			ema_slow_periods INTEGER,
			slippage_pct DOUBLE,
			profit_limit_pct DOUBLE,
			stop_loss_pct DOUBLE,
			warmup_index INTEGER,
			entry_mode TEXT,
			total_profit_loss_pct DOUBLE,
			total_win_profit_loss_pct DOUBLE,
			total_loss_profit_loss_pct DOUBLE,
			num_trades INTEGER,
			num_dates INTEGER,
			num_profit_limits INTEGER,
			num_stop_losses INTEGER,
			num_direction_changes INTEGER,
			num_wins INTEGER,
			num_losses INTEGER,
			num_breakevens INTEGER,
			num_trades_per_day DOUBLE,
			win_loss_ratio DOUBLE,
			win_rate DOUBLE,
			starting_portfolio_value DOUBLE,
			final_portfolio_value DOUBLE,
			portfolio_value_change DOUBLE,
			portfolio_value_change_pct DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create combinations table: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_index INTEGER,
			direction TEXT,
			outcome TEXT,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			peak_time TIMESTAMP,
			trough_time TIMESTAMP,
			open_price DOUBLE,
			exit_price DOUBLE,
			profit_limit_price DOUBLE,
			stop_loss_price DOUBLE,
			profit_loss DOUBLE,
			profit_loss_pct DOUBLE,
			duration_seconds BIGINT,
			peak_pl_pct DOUBLE,
			trough_pl_pct DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	return nil
}

// AddCombinations appends ranked results. Rank starts at 1 for the first element.
func (w *ResultWriter) AddCombinations(ranked []types.CombinationResult) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, result := range ranked {
		ind := result.IndicatorSettings
		risk := result.RiskSettings
		stats := result.Statistics

		_, err := w.sq.Insert("combinations").
			Columns(combinationColumns...).
			Values(
				i+1, ind.String(), string(ind.Type),
				ind.Supertrend.Periods, ind.Supertrend.Multiplier,
				ind.VwapMvwapEmaCrossover.VwapEmaFastPeriods, ind.VwapMvwapEmaCrossover.VwapEmaSlowPeriods,
				ind.VwapMvwapEmaCrossover.EmaFastPeriods, ind.VwapMvwapEmaCrossover.EmaSlowPeriods,
				risk.SlippagePct, risk.ProfitLimitPct, risk.StopLossPct, risk.WarmupIndex, string(risk.EntryMode),
				stats.TotalProfitLossPct, stats.TotalWinProfitLossPct, stats.TotalLossProfitLossPct,
				stats.NumTrades, stats.NumDates, stats.NumProfitLimits, stats.NumStopLosses, stats.NumDirectionChanges,
				stats.NumWins, stats.NumLosses, stats.NumBreakevens,
				finiteOrNull(stats.NumTradesPerDay), finiteOrNull(stats.WinLossRatio), finiteOrNull(stats.WinRate),
				stats.StartingPortfolioValue, stats.FinalPortfolioValue, stats.PortfolioValueChange, stats.PortfolioValueChangePct,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to insert combination %s", ind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit combinations: %w", err)
	}

	return nil
}

// AddTrades appends trades in the order given.
func (w *ResultWriter) AddTrades(trades []types.TradeResult) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, trade := range trades {
		_, err := w.sq.Insert("trades").
			Columns(tradeColumns...).
			Values(
				i, string(trade.Direction), string(trade.Outcome),
				unixTime(trade.EntrySnapshot), unixTime(trade.ExitSnapshot),
				unixTime(trade.PeakSnapshot), unixTime(trade.TroughSnapshot),
				trade.OpenPrice, trade.ExitPrice, trade.ProfitLimitPrice, trade.StopLossPrice,
				trade.ProfitLoss, trade.ProfitLossPct, trade.Duration, trade.PeakPLPct, trade.TroughPLPct,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to insert trade %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}

	return nil
}

// Count returns the number of rows staged in table.
func (w *ResultWriter) Count(table string) (int, error) {
	query, args, err := w.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := w.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return count, nil
}

// Write exports both tables into dir and returns the paths of the parquet files.
func (w *ResultWriter) Write(dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create directory: %w", err)
	}

	// squirrel has no COPY
	combinationsPath := filepath.Join(dir, CombinationsFileName)
	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM combinations ORDER BY combination_rank) TO '%s' (FORMAT PARQUET)`, combinationsPath))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to export combinations to parquet", err)
	}

	tradesPath := filepath.Join(dir, TradesFileName)
	_, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM trades ORDER BY trade_index) TO '%s' (FORMAT PARQUET)`, tradesPath))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to export trades to parquet", err)
	}

	w.logger.Info("Exported sweep results to parquet",
		zap.String("combinations", combinationsPath),
		zap.String("trades", tradesPath),
	)

	return combinationsPath, tradesPath, nil
}

// Close releases the database.
func (w *ResultWriter) Close() error {
	return w.db.Close()
}

// finiteOrNull maps NaN and infinities to SQL NULL.
func finiteOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return v
}

func unixTime(snapshot types.SignalSnapshot) time.Time {
	return time.Unix(snapshot.Candle.Timestamp, 0).UTC()
}
