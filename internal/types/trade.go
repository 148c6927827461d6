package types

// DirectionWindow is a contiguous run of snapshots sharing one direction.
// The run covers [StartIndex, EndIndex).
type DirectionWindow struct {
	StartIndex int `yaml:"start_index" json:"start_index"`
	EndIndex   int `yaml:"end_index" json:"end_index"`
}

// Len returns the number of snapshots covered by the window.
func (w DirectionWindow) Len() int {
	return w.EndIndex - w.StartIndex
}

// TradePerformanceSnapshot is the best and worst exit a single candle allows,
// measured against the window's open price. Index points into the day's snapshots.
type TradePerformanceSnapshot struct {
	Index                  int     `yaml:"index" json:"index"`
	PeakPrice              float64 `yaml:"peak_price" json:"peak_price"`
	TroughPrice            float64 `yaml:"trough_price" json:"trough_price"`
	BestCaseExitPrice      float64 `yaml:"best_case_exit_price" json:"best_case_exit_price"`
	BestCaseProfitLoss     float64 `yaml:"best_case_profit_loss" json:"best_case_profit_loss"`
	BestCaseProfitLossPct  float64 `yaml:"best_case_profit_loss_pct" json:"best_case_profit_loss_pct"`
	WorstCaseExitPrice     float64 `yaml:"worst_case_exit_price" json:"worst_case_exit_price"`
	WorstCaseProfitLoss    float64 `yaml:"worst_case_profit_loss" json:"worst_case_profit_loss"`
	WorstCaseProfitLossPct float64 `yaml:"worst_case_profit_loss_pct" json:"worst_case_profit_loss_pct"`
}

// WindowProjection holds the per-candle projections of one tradable window.
type WindowProjection struct {
	Window      DirectionWindow            `yaml:"window" json:"window"`
	Direction   Direction                  `yaml:"direction" json:"direction"`
	OpenPrice   float64                    `yaml:"open_price" json:"open_price"`
	Projections []TradePerformanceSnapshot `yaml:"projections" json:"projections"`
}

type Outcome string

const (
	// OutcomeProfitLimit the profit limit price was reached first
	OutcomeProfitLimit Outcome = "profit_limit"
	// OutcomeStopLoss the stop loss price was reached first, or on the same candle as the profit limit
	OutcomeStopLoss Outcome = "stop_loss"
	// OutcomeDirectionChange neither threshold was reached before the window closed
	OutcomeDirectionChange Outcome = "direction_change"
)

// TradeResult is the realized outcome of one direction window.
type TradeResult struct {
	Direction        Direction      `yaml:"direction" json:"direction"`
	EntrySnapshot    SignalSnapshot `yaml:"entry_snapshot" json:"entry_snapshot"`
	ExitSnapshot     SignalSnapshot `yaml:"exit_snapshot" json:"exit_snapshot"`
	PeakSnapshot     SignalSnapshot `yaml:"peak_snapshot" json:"peak_snapshot"`
	TroughSnapshot   SignalSnapshot `yaml:"trough_snapshot" json:"trough_snapshot"`
	Outcome          Outcome        `yaml:"outcome" json:"outcome"`
	OpenPrice        float64        `yaml:"open_price" json:"open_price"`
	ExitPrice        float64        `yaml:"exit_price" json:"exit_price"`
	ProfitLimitPrice float64        `yaml:"profit_limit_price" json:"profit_limit_price"`
	StopLossPrice    float64        `yaml:"stop_loss_price" json:"stop_loss_price"`
	ProfitLoss       float64        `yaml:"profit_loss" json:"profit_loss"`
	ProfitLossPct    float64        `yaml:"profit_loss_pct" json:"profit_loss_pct"`
	// Duration in seconds between the entry and exit candles.
	Duration    int64   `yaml:"duration" json:"duration"`
	PeakPLPct   float64 `yaml:"peak_pl_pct" json:"peak_pl_pct"`
	TroughPLPct float64 `yaml:"trough_pl_pct" json:"trough_pl_pct"`
}
