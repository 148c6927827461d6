package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/market"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/rxtech-lab/intraday-backtester/pkg/utils"
)

// FloatRange is an inclusive range stepped in exact decimal arithmetic.
type FloatRange struct {
	Min  float64 `yaml:"min" json:"min" jsonschema:"title=Min,description=First value of the range"`
	Max  float64 `yaml:"max" json:"max" jsonschema:"title=Max,description=Last value of the range (inclusive)"`
	Step float64 `yaml:"step" json:"step" jsonschema:"title=Step,description=Distance between values,exclusiveMinimum=0"`
}

// Values expands the range.
func (r FloatRange) Values() ([]float64, error) {
	return utils.DecimalRange(r.Min, r.Max, r.Step)
}

type IntRange struct {
	Min  int `yaml:"min" json:"min" jsonschema:"title=Min,description=First value of the range"`
	Max  int `yaml:"max" json:"max" jsonschema:"title=Max,description=Last value of the range (inclusive)"`
	Step int `yaml:"step" json:"step" jsonschema:"title=Step,description=Distance between values,minimum=1"`
}

func (r IntRange) Values() ([]int, error) {
	return utils.IntRange(r.Min, r.Max, r.Step)
}

type SupertrendGrid struct {
	Periods    IntRange   `yaml:"periods" json:"periods" jsonschema:"title=Periods,description=ATR periods to sweep"`
	Multiplier FloatRange `yaml:"multiplier" json:"multiplier" jsonschema:"title=Multiplier,description=ATR band multipliers to sweep"`
}

type VwapMvwapEmaCrossoverGrid struct {
	VwapEmaFastPeriods []int `yaml:"vwap_ema_fast_periods" json:"vwap_ema_fast_periods" jsonschema:"title=VWAP EMA Fast Periods"`
	VwapEmaSlowPeriods []int `yaml:"vwap_ema_slow_periods" json:"vwap_ema_slow_periods" jsonschema:"title=VWAP EMA Slow Periods"`
	EmaFastPeriods     []int `yaml:"ema_fast_periods" json:"ema_fast_periods" jsonschema:"title=EMA Fast Periods"`
	EmaSlowPeriods     []int `yaml:"ema_slow_periods" json:"ema_slow_periods" jsonschema:"title=EMA Slow Periods"`
}

type IndicatorGrid struct {
	Supertrend            SupertrendGrid            `yaml:"supertrend" json:"supertrend" jsonschema:"title=Supertrend"`
	VwapMvwapEmaCrossover VwapMvwapEmaCrossoverGrid `yaml:"vwap_mvwap_ema_crossover" json:"vwap_mvwap_ema_crossover" jsonschema:"title=VWAP/MVWAP/EMA Crossover"`
}

type RiskGrid struct {
	SlippageModel  slippage.Model  `yaml:"slippage_model" json:"slippage_model" jsonschema:"title=Slippage Model,description=How fills are adjusted against the trader" validate:"required,oneof=percentage zero"`
	SlippagePct    float64         `yaml:"slippage_pct" json:"slippage_pct" jsonschema:"title=Slippage,description=Fraction of price lost on entry and on exit,minimum=0" validate:"gte=0,lt=1"`
	ProfitLimitPct FloatRange      `yaml:"profit_limit_pct" json:"profit_limit_pct" jsonschema:"title=Profit Limit,description=Positive profit-limit fractions to sweep"`
	StopLossPct    FloatRange      `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss,description=Negative stop-loss fractions to sweep"`
	WarmupIndex    int             `yaml:"warmup_index" json:"warmup_index" jsonschema:"title=Warm-up Index,description=Candles skipped at the start of each day,minimum=0" validate:"gte=0"`
	EntryMode      types.EntryMode `yaml:"entry_mode" json:"entry_mode" jsonschema:"title=Entry Mode" validate:"required,oneof=single_entry multiple_entry"`
}

// SweepConfig describes one parameter sweep over a date range.
type SweepConfig struct {
	Symbol          string                   `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Ticker to backtest,required" validate:"required"`
	Resolution      datasource.Resolution    `yaml:"resolution" json:"resolution" jsonschema:"title=Resolution,description=Candle resolution" validate:"required,oneof=1m 5m 15m 30m 1h"`
	DataPath        string                   `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=Parquet file or glob holding the candles"`
	StartDate       string                   `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=First trading date (YYYY-MM-DD),required" validate:"required,datetime=2006-01-02"`
	EndDate         string                   `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Last trading date (YYYY-MM-DD),required" validate:"required,datetime=2006-01-02"`
	Holidays        []string                 `yaml:"holidays" json:"holidays" jsonschema:"title=Holidays,description=Dates excluded from the range" validate:"dive,datetime=2006-01-02"`
	Strategy        types.IndicatorType      `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Indicator family to sweep" validate:"required,oneof=supertrend vwap_mvwap_ema_crossover"`
	IndicatorGrid   IndicatorGrid            `yaml:"indicator_grid" json:"indicator_grid" jsonschema:"title=Indicator Grid"`
	RiskGrid        RiskGrid                 `yaml:"risk_grid" json:"risk_grid" jsonschema:"title=Risk Grid"`
	Workers         int                      `yaml:"workers" json:"workers" jsonschema:"title=Workers,description=Concurrent combinations (0 uses every CPU),minimum=0" validate:"gte=0"`
	ProgressEvery   int                      `yaml:"progress_every" json:"progress_every" jsonschema:"title=Progress Interval,description=Log progress every N combinations (0 disables),minimum=0" validate:"gte=0"`
	StartingBalance optional.Option[float64] `yaml:"starting_balance" json:"starting_balance" jsonschema:"title=Starting Balance,description=Portfolio value before the first trade"`
}

// UnmarshalYAML implements custom unmarshaling for SweepConfig. Fields missing from
// the document keep the value they had before decoding.
func (c *SweepConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type rawConfig struct {
		Symbol          string                `yaml:"symbol"`
		Resolution      datasource.Resolution `yaml:"resolution"`
		DataPath        string                `yaml:"data_path"`
		StartDate       string                `yaml:"start_date"`
		EndDate         string                `yaml:"end_date"`
		Holidays        []string              `yaml:"holidays"`
		Strategy        types.IndicatorType   `yaml:"strategy"`
		IndicatorGrid   IndicatorGrid         `yaml:"indicator_grid"`
		RiskGrid        RiskGrid              `yaml:"risk_grid"`
		Workers         int                   `yaml:"workers"`
		ProgressEvery   int                   `yaml:"progress_every"`
		StartingBalance *float64              `yaml:"starting_balance"`
	}

	raw := rawConfig{
		Symbol:        c.Symbol,
		Resolution:    c.Resolution,
		DataPath:      c.DataPath,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Holidays:      c.Holidays,
		Strategy:      c.Strategy,
		IndicatorGrid: c.IndicatorGrid,
		RiskGrid:      c.RiskGrid,
		Workers:       c.Workers,
		ProgressEvery: c.ProgressEvery,
	}

	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.Symbol = raw.Symbol
	c.Resolution = raw.Resolution
	c.DataPath = raw.DataPath
	c.StartDate = raw.StartDate
	c.EndDate = raw.EndDate
	c.Holidays = raw.Holidays
	c.Strategy = raw.Strategy
	c.IndicatorGrid = raw.IndicatorGrid
	c.RiskGrid = raw.RiskGrid
	c.Workers = raw.Workers
	c.ProgressEvery = raw.ProgressEvery

	if raw.StartingBalance != nil {
		c.StartingBalance = optional.Some(*raw.StartingBalance)
	}

	return nil
}

// MarshalYAML writes StartingBalance as a plain number and leaves it out when unset.
func (c SweepConfig) MarshalYAML() (any, error) {
	type rawConfig struct {
		Symbol          string                `yaml:"symbol"`
		Resolution      datasource.Resolution `yaml:"resolution"`
		DataPath        string                `yaml:"data_path"`
		StartDate       string                `yaml:"start_date"`
		EndDate         string                `yaml:"end_date"`
		Holidays        []string              `yaml:"holidays"`
		Strategy        types.IndicatorType   `yaml:"strategy"`
		IndicatorGrid   IndicatorGrid         `yaml:"indicator_grid"`
		RiskGrid        RiskGrid              `yaml:"risk_grid"`
		Workers         int                   `yaml:"workers"`
		ProgressEvery   int                   `yaml:"progress_every"`
		StartingBalance *float64              `yaml:"starting_balance,omitempty"`
	}

	raw := rawConfig{
		Symbol:        c.Symbol,
		Resolution:    c.Resolution,
		DataPath:      c.DataPath,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Holidays:      c.Holidays,
		Strategy:      c.Strategy,
		IndicatorGrid: c.IndicatorGrid,
		RiskGrid:      c.RiskGrid,
		Workers:       c.Workers,
		ProgressEvery: c.ProgressEvery,
	}

	if balance, err := c.StartingBalance.Take(); err == nil {
		raw.StartingBalance = &balance
	}

	return raw, nil
}

// Validate checks the struct tags and the sign conventions of the risk grid.
func (c *SweepConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid sweep config", err)
	}

	start, err := market.ParseDate(c.StartDate)
	if err != nil {
		return err
	}

	end, err := market.ParseDate(c.EndDate)
	if err != nil {
		return err
	}

	if end.Before(start) {
		return errors.Newf(errors.ErrCodeInvalidDate, "end date %s is before start date %s", c.EndDate, c.StartDate)
	}

	if c.RiskGrid.ProfitLimitPct.Min <= 0 {
		return errors.Newf(errors.ErrCodeInvalidProfitLimit, "profit limit must be positive, got min %v", c.RiskGrid.ProfitLimitPct.Min)
	}

	if c.RiskGrid.StopLossPct.Max >= 0 {
		return errors.Newf(errors.ErrCodeInvalidStopLoss, "stop loss must be negative, got max %v", c.RiskGrid.StopLossPct.Max)
	}

	if c.StartingBalance.IsSome() && c.StartingBalance.Unwrap() <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "starting balance must be positive, got %v", c.StartingBalance.Unwrap())
	}

	if _, err := c.IndicatorSettingsGrid(); err != nil {
		return err
	}

	if _, err := c.BacktestSettingsGrid(); err != nil {
		return err
	}

	return nil
}

// StartingPortfolioValue returns the configured starting balance or the default.
func (c *SweepConfig) StartingPortfolioValue() float64 {
	return c.StartingBalance.TakeOr(DefaultStartingPortfolioValue)
}

// TradingDates expands the configured date range.
func (c *SweepConfig) TradingDates() ([]string, error) {
	return market.TradingDates(c.StartDate, c.EndDate, c.Holidays)
}

// IndicatorSettingsGrid expands the grid of the configured strategy.
func (c *SweepConfig) IndicatorSettingsGrid() ([]types.IndicatorSettings, error) {
	switch c.Strategy {
	case types.IndicatorTypeSupertrend:
		grid := c.IndicatorGrid.Supertrend
		if grid.Periods.Min <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "supertrend periods must be positive, got min %d", grid.Periods.Min)
		}

		if grid.Multiplier.Min <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidMultiplier, "supertrend multiplier must be positive, got min %v", grid.Multiplier.Min)
		}

		periods, err := grid.Periods.Values()
		if err != nil {
			return nil, err
		}

		multipliers, err := grid.Multiplier.Values()
		if err != nil {
			return nil, err
		}

		settings := make([]types.IndicatorSettings, 0, len(periods)*len(multipliers))
		for _, period := range periods {
			for _, multiplier := range multipliers {
				settings = append(settings, types.NewSupertrendSettings(period, multiplier))
			}
		}

		return settings, nil
	case types.IndicatorTypeVwapMvwapEmaCrossover:
		grid := c.IndicatorGrid.VwapMvwapEmaCrossover
		for _, periods := range [][]int{grid.VwapEmaFastPeriods, grid.VwapEmaSlowPeriods, grid.EmaFastPeriods, grid.EmaSlowPeriods} {
			if len(periods) == 0 {
				return nil, errors.New(errors.ErrCodeMissingParameter, "every vwap_mvwap_ema_crossover period list needs at least one value")
			}

			for _, period := range periods {
				if period <= 0 {
					return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "vwap_mvwap_ema_crossover periods must be positive, got %d", period)
				}
			}
		}

		var settings []types.IndicatorSettings

		for _, vwapFast := range grid.VwapEmaFastPeriods {
			for _, vwapSlow := range grid.VwapEmaSlowPeriods {
				for _, emaFast := range grid.EmaFastPeriods {
					for _, emaSlow := range grid.EmaSlowPeriods {
						settings = append(settings, types.NewVwapMvwapEmaCrossoverSettings(vwapFast, vwapSlow, emaFast, emaSlow))
					}
				}
			}
		}

		return settings, nil
	default:
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "unknown strategy %q", c.Strategy)
	}
}

// BacktestSettingsGrid expands the risk grid, profit limit outermost.
func (c *SweepConfig) BacktestSettingsGrid() ([]types.BacktestSettings, error) {
	profitLimits, err := c.RiskGrid.ProfitLimitPct.Values()
	if err != nil {
		return nil, err
	}

	stopLosses, err := c.RiskGrid.StopLossPct.Values()
	if err != nil {
		return nil, err
	}

	settings := make([]types.BacktestSettings, 0, len(profitLimits)*len(stopLosses))
	for _, profitLimit := range profitLimits {
		for _, stopLoss := range stopLosses {
			settings = append(settings, types.BacktestSettings{
				SlippagePct:    c.RiskGrid.SlippagePct,
				ProfitLimitPct: profitLimit,
				StopLossPct:    stopLoss,
				WarmupIndex:    c.RiskGrid.WarmupIndex,
				EntryMode:      c.RiskGrid.EntryMode,
			})
		}
	}

	return settings, nil
}

// GenerateSchema generates a JSON schema for the SweepConfig
func (c *SweepConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t.String() == "optional.Option[float64]":
				return &jsonschema.Schema{Type: "number", ExclusiveMinimum: json.Number("0")}
			case strings.Contains(t.String(), "datasource.Resolution"):
				return &jsonschema.Schema{Type: "string", Enum: datasource.AllResolutions}
			case strings.Contains(t.String(), "slippage.Model"):
				return &jsonschema.Schema{Type: "string", Enum: slippage.AllModels}
			case strings.Contains(t.String(), "types.IndicatorType"):
				return &jsonschema.Schema{Type: "string", Enum: types.AllIndicatorTypes}
			case strings.Contains(t.String(), "types.EntryMode"):
				return &jsonschema.Schema{Type: "string", Enum: types.AllEntryModes}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "intraday-sweep-config"
	schema.Description = "Configuration schema for the intraday parameter sweep"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the SweepConfig
func (c *SweepConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the grid the sweep was originally tuned with.
func DefaultConfig() SweepConfig {
	return SweepConfig{
		Symbol:     "SPY",
		Resolution: datasource.Resolution1m,
		Holidays:   market.DefaultHolidays,
		Strategy:   types.IndicatorTypeSupertrend,
		IndicatorGrid: IndicatorGrid{
			Supertrend: SupertrendGrid{
				Periods:    IntRange{Min: 5, Max: 29, Step: 1},
				Multiplier: FloatRange{Min: 0.25, Max: 4.0, Step: 0.25},
			},
			VwapMvwapEmaCrossover: VwapMvwapEmaCrossoverGrid{
				VwapEmaFastPeriods: []int{1},
				VwapEmaSlowPeriods: []int{21},
				EmaFastPeriods:     []int{7},
				EmaSlowPeriods:     []int{25},
			},
		},
		RiskGrid: RiskGrid{
			SlippageModel:  slippage.ModelPercentage,
			SlippagePct:    0.00025,
			ProfitLimitPct: FloatRange{Min: 0.0005, Max: 0.01, Step: 0.0005},
			StopLossPct:    FloatRange{Min: -0.01, Max: -0.0005, Step: 0.0005},
			WarmupIndex:    10,
			EntryMode:      types.EntryModeSingle,
		},
		Workers:         0,
		ProgressEvery:   1000,
		StartingBalance: optional.None[float64](),
	}
}

// EmptyConfig returns a SweepConfig with every field at its zero value.
func EmptyConfig() SweepConfig {
	return SweepConfig{
		StartingBalance: optional.None[float64](),
	}
}
