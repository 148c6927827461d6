package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// VwapMvwapEmaCrossover compares two EMAs of the session VWAP and two EMAs of the
// close. The bar is Long while the fast VWAP EMA and both close EMAs sit at or
// above the slow VWAP EMA (the MVWAP), Short otherwise.
type VwapMvwapEmaCrossover struct{}

// NewVwapMvwapEmaCrossover creates a new VWAP/MVWAP/EMA crossover indicator.
func NewVwapMvwapEmaCrossover() Indicator {
	return &VwapMvwapEmaCrossover{}
}

func (v *VwapMvwapEmaCrossover) Name() types.IndicatorType {
	return types.IndicatorTypeVwapMvwapEmaCrossover
}

func (v *VwapMvwapEmaCrossover) Lookback(settings types.IndicatorSettings) int {
	return maxPeriod(settings.VwapMvwapEmaCrossover) - 1
}

func (v *VwapMvwapEmaCrossover) Directions(candles []types.Candle, settings types.IndicatorSettings) ([]types.Direction, error) {
	if settings.Type != types.IndicatorTypeVwapMvwapEmaCrossover {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "vwap_mvwap_ema_crossover cannot compute %s", settings.Type)
	}

	cfg := settings.VwapMvwapEmaCrossover
	for _, period := range []int{cfg.VwapEmaFastPeriods, cfg.VwapEmaSlowPeriods, cfg.EmaFastPeriods, cfg.EmaSlowPeriods} {
		if period <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "vwap_mvwap_ema_crossover periods must be positive, got %s", settings)
		}
	}

	required := maxPeriod(cfg)
	if len(candles) < required {
		return nil, errors.NewInsufficientDataError(settings.String(), required, len(candles))
	}

	_, _, closes := splitCandles(candles)
	vwap := sessionVwap(candles)

	vwapFast := talib.Ema(vwap, cfg.VwapEmaFastPeriods)
	mvwap := talib.Ema(vwap, cfg.VwapEmaSlowPeriods)
	emaFast := talib.Ema(closes, cfg.EmaFastPeriods)
	emaSlow := talib.Ema(closes, cfg.EmaSlowPeriods)

	directions := flatDirections(len(candles))
	for i := required - 1; i < len(candles); i++ {
		if vwapFast[i] >= mvwap[i] && emaFast[i] >= mvwap[i] && emaSlow[i] >= mvwap[i] {
			directions[i] = types.DirectionLong
		} else {
			directions[i] = types.DirectionShort
		}
	}

	return directions, nil
}

// sessionVwap is the running volume weighted typical price since the first candle.
// Until any volume trades it falls back to the typical price.
func sessionVwap(candles []types.Candle) []float64 {
	vwap := make([]float64, len(candles))

	var cumulativePV, cumulativeVolume float64

	for i, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		cumulativePV += typical * float64(c.Volume)
		cumulativeVolume += float64(c.Volume)

		if cumulativeVolume == 0 {
			vwap[i] = typical

			continue
		}

		vwap[i] = cumulativePV / cumulativeVolume
	}

	return vwap
}

func maxPeriod(cfg types.VwapMvwapEmaCrossoverSettings) int {
	return max(cfg.VwapEmaFastPeriods, cfg.VwapEmaSlowPeriods, cfg.EmaFastPeriods, cfg.EmaSlowPeriods)
}
