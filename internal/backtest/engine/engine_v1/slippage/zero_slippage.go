package slippage

import "github.com/rxtech-lab/intraday-backtester/internal/types"

// ZeroSlippage fills at the requested price.
type ZeroSlippage struct{}

func NewZeroSlippage() Slippage {
	return &ZeroSlippage{}
}

func (s *ZeroSlippage) Entry(_ types.Direction, price float64) float64 {
	return price
}

func (s *ZeroSlippage) Exit(_ types.Direction, price float64) float64 {
	return price
}
