package indicator

import (
	"fmt"

	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// Indicator turns a day of candles into one direction per candle.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Lookback returns how many leading candles can never carry a signal
	Lookback(settings types.IndicatorSettings) int
	// Directions returns one direction per candle, Flat where the indicator is not ready
	Directions(candles []types.Candle, settings types.IndicatorSettings) ([]types.Direction, error)
}

// SignalSnapshots pairs every candle with its direction. The adapter is total: when
// the indicator fails every snapshot is Flat and the failure is returned for logging.
func SignalSnapshots(indicator Indicator, candles []types.Candle, settings types.IndicatorSettings) ([]types.SignalSnapshot, error) {
	directions, err := indicator.Directions(candles, settings)
	if err == nil && len(directions) != len(candles) {
		err = errors.Newf(errors.ErrCodeIndicatorCalculation,
			"%s returned %d directions for %d candles", indicator.Name(), len(directions), len(candles))
	}

	snapshots := make([]types.SignalSnapshot, len(candles))
	for i, candle := range candles {
		direction := types.DirectionFlat
		if err == nil {
			direction = directions[i]
		}

		snapshots[i] = types.SignalSnapshot{Candle: candle, Direction: direction}
	}

	if err != nil {
		return snapshots, fmt.Errorf("failed to compute %s: %w", settings, err)
	}

	return snapshots, nil
}

func flatDirections(n int) []types.Direction {
	directions := make([]types.Direction, n)
	for i := range directions {
		directions[i] = types.DirectionFlat
	}

	return directions
}

func splitCandles(candles []types.Candle) ([]float64, []float64, []float64) {
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))

	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	return highs, lows, closes
}
