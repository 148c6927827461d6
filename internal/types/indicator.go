package types

import "fmt"

type IndicatorType string

const (
	IndicatorTypeSupertrend            IndicatorType = "supertrend"
	IndicatorTypeVwapMvwapEmaCrossover IndicatorType = "vwap_mvwap_ema_crossover"
)

var AllIndicatorTypes = []any{
	IndicatorTypeSupertrend,
	IndicatorTypeVwapMvwapEmaCrossover,
}

type SupertrendSettings struct {
	Periods    int     `yaml:"periods" json:"periods"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

type VwapMvwapEmaCrossoverSettings struct {
	VwapEmaFastPeriods int `yaml:"vwap_ema_fast_periods" json:"vwap_ema_fast_periods"`
	VwapEmaSlowPeriods int `yaml:"vwap_ema_slow_periods" json:"vwap_ema_slow_periods"`
	EmaFastPeriods     int `yaml:"ema_fast_periods" json:"ema_fast_periods"`
	EmaSlowPeriods     int `yaml:"ema_slow_periods" json:"ema_slow_periods"`
}

// IndicatorSettings is a tagged union over the indicator families. Only the
// field matching Type is meaningful. The struct is comparable so it can key caches.
type IndicatorSettings struct {
	Type                  IndicatorType                 `yaml:"type" json:"type"`
	Supertrend            SupertrendSettings            `yaml:"supertrend,omitempty" json:"supertrend,omitempty"`
	VwapMvwapEmaCrossover VwapMvwapEmaCrossoverSettings `yaml:"vwap_mvwap_ema_crossover,omitempty" json:"vwap_mvwap_ema_crossover,omitempty"`
}

func NewSupertrendSettings(periods int, multiplier float64) IndicatorSettings {
	return IndicatorSettings{
		Type: IndicatorTypeSupertrend,
		Supertrend: SupertrendSettings{
			Periods:    periods,
			Multiplier: multiplier,
		},
	}
}

func NewVwapMvwapEmaCrossoverSettings(vwapEmaFast, vwapEmaSlow, emaFast, emaSlow int) IndicatorSettings {
	return IndicatorSettings{
		Type: IndicatorTypeVwapMvwapEmaCrossover,
		VwapMvwapEmaCrossover: VwapMvwapEmaCrossoverSettings{
			VwapEmaFastPeriods: vwapEmaFast,
			VwapEmaSlowPeriods: vwapEmaSlow,
			EmaFastPeriods:     emaFast,
			EmaSlowPeriods:     emaSlow,
		},
	}
}

func (s IndicatorSettings) String() string {
	switch s.Type {
	case IndicatorTypeSupertrend:
		return fmt.Sprintf("supertrend(periods=%d, multiplier=%g)", s.Supertrend.Periods, s.Supertrend.Multiplier)
	case IndicatorTypeVwapMvwapEmaCrossover:
		c := s.VwapMvwapEmaCrossover

		return fmt.Sprintf("vwap_mvwap_ema_crossover(vwap_ema_fast=%d, vwap_ema_slow=%d, ema_fast=%d, ema_slow=%d)",
			c.VwapEmaFastPeriods, c.VwapEmaSlowPeriods, c.EmaFastPeriods, c.EmaSlowPeriods)
	default:
		return string(s.Type)
	}
}
