package slippage

import "github.com/rxtech-lab/intraday-backtester/internal/types"

// Slippage adjusts fill prices against the trader.
type Slippage interface {
	// Entry returns the fill price for opening a position in direction at price
	Entry(direction types.Direction, price float64) float64
	// Exit returns the fill price for closing a position in direction at price
	Exit(direction types.Direction, price float64) float64
}

type Model string

const (
	ModelPercentage Model = "percentage"
	ModelZero       Model = "zero"
)

var AllModels = []any{
	ModelPercentage,
	ModelZero,
}

// GetSlippageHandler returns the slippage for the model. pct is ignored by the zero model.
func GetSlippageHandler(model Model, pct float64) Slippage {
	switch model {
	case ModelPercentage:
		return NewPercentageSlippage(pct)
	case ModelZero:
		return NewZeroSlippage()
	default:
		return NewPercentageSlippage(pct)
	}
}
