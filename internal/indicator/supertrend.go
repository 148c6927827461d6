package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// Supertrend follows an ATR band around the bar midpoint. The trend flips when
// the close crosses the opposite band; a down trend is Short, anything else Long.
type Supertrend struct{}

// NewSupertrend creates a new Supertrend indicator.
func NewSupertrend() Indicator {
	return &Supertrend{}
}

// Name returns the name of the indicator.
func (s *Supertrend) Name() types.IndicatorType {
	return types.IndicatorTypeSupertrend
}

// Lookback is the ATR period: the first ATR value lands on index Periods.
func (s *Supertrend) Lookback(settings types.IndicatorSettings) int {
	return settings.Supertrend.Periods
}

// Directions implements Indicator.
func (s *Supertrend) Directions(candles []types.Candle, settings types.IndicatorSettings) ([]types.Direction, error) {
	if settings.Type != types.IndicatorTypeSupertrend {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "supertrend cannot compute %s", settings.Type)
	}

	cfg := settings.Supertrend
	if cfg.Periods <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "supertrend periods must be positive, got %d", cfg.Periods)
	}

	if cfg.Multiplier <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidMultiplier, "supertrend multiplier must be positive, got %g", cfg.Multiplier)
	}

	if len(candles) <= cfg.Periods {
		return nil, errors.NewInsufficientDataError(settings.String(), cfg.Periods+1, len(candles))
	}

	highs, lows, closes := splitCandles(candles)
	atr := talib.Atr(highs, lows, closes, cfg.Periods)
	directions := flatDirections(len(candles))

	var upper, lower float64

	trend := 1

	for i := cfg.Periods; i < len(candles); i++ {
		mid := (highs[i] + lows[i]) / 2
		basicUpper := mid + cfg.Multiplier*atr[i]
		basicLower := mid - cfg.Multiplier*atr[i]

		if i == cfg.Periods {
			upper, lower = basicUpper, basicLower
		} else {
			// final bands only tighten unless the previous close broke through them
			if basicUpper < upper || closes[i-1] > upper {
				upper = basicUpper
			}

			if basicLower > lower || closes[i-1] < lower {
				lower = basicLower
			}
		}

		switch {
		case trend == -1 && closes[i] > upper:
			trend = 1
		case trend == 1 && closes[i] < lower:
			trend = -1
		}

		if trend == -1 {
			directions[i] = types.DirectionShort
		} else {
			directions[i] = types.DirectionLong
		}
	}

	return directions, nil
}
