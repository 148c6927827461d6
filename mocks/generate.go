package mocks

//go:generate mockgen -destination=./mock_candle_source.go -package=mocks github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/datasource CandleSource
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/intraday-backtester/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/intraday-backtester/internal/indicator IndicatorRegistry
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/intraday-backtester/pkg/marketdata/provider Provider
