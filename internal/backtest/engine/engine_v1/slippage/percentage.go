package slippage

import "github.com/rxtech-lab/intraday-backtester/internal/types"

// PercentageSlippage moves every fill by a fixed fraction of the price.
// Longs buy higher and sell lower, shorts sell lower and buy back higher.
type PercentageSlippage struct {
	pct float64
}

func NewPercentageSlippage(pct float64) Slippage {
	return &PercentageSlippage{pct: pct}
}

func (s *PercentageSlippage) Entry(direction types.Direction, price float64) float64 {
	slip := price * s.pct
	if direction == types.DirectionLong {
		return price + slip
	}

	return price - slip
}

func (s *PercentageSlippage) Exit(direction types.Direction, price float64) float64 {
	slip := price * s.pct
	if direction == types.DirectionLong {
		return price - slip
	}

	return price + slip
}
