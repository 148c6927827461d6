package types

import (
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

type EntryMode string

const (
	// EntryModeSingle opens at most one trade per direction window
	EntryModeSingle EntryMode = "single_entry"
	// EntryModeMultiple re-enters after every exit inside a window. Not supported yet.
	EntryModeMultiple EntryMode = "multiple_entry"
)

var AllEntryModes = []any{
	EntryModeSingle,
	EntryModeMultiple,
}

// BacktestSettings are the risk parameters of one simulation pass.
type BacktestSettings struct {
	SlippagePct    float64   `yaml:"slippage_pct" json:"slippage_pct"`
	ProfitLimitPct float64   `yaml:"profit_limit_pct" json:"profit_limit_pct"`
	StopLossPct    float64   `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	WarmupIndex    int       `yaml:"warmup_index" json:"warmup_index"`
	EntryMode      EntryMode `yaml:"entry_mode" json:"entry_mode"`
}

// Validate checks the sign conventions of the thresholds.
func (s BacktestSettings) Validate() error {
	if s.ProfitLimitPct <= 0 {
		return errors.Newf(errors.ErrCodeInvalidProfitLimit, "profit limit must be positive, got %v", s.ProfitLimitPct)
	}

	if s.StopLossPct >= 0 {
		return errors.Newf(errors.ErrCodeInvalidStopLoss, "stop loss must be negative, got %v", s.StopLossPct)
	}

	if s.SlippagePct < 0 || s.SlippagePct >= 1 {
		return errors.Newf(errors.ErrCodeInvalidSlippage, "slippage must be in [0, 1), got %v", s.SlippagePct)
	}

	if s.WarmupIndex < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "warmup index must not be negative, got %d", s.WarmupIndex)
	}

	switch s.EntryMode {
	case EntryModeSingle, EntryModeMultiple:
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown entry mode %q", s.EntryMode)
	}

	return nil
}
