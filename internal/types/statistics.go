package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BacktestStatistics is the portfolio rollup of one combination.
// WinLossRatio is +Inf when there are wins but no losses and NaN when there are neither.
type BacktestStatistics struct {
	TotalProfitLossPct     float64 `yaml:"total_profit_loss_pct" json:"total_profit_loss_pct"`
	TotalWinProfitLossPct  float64 `yaml:"total_win_profit_loss_pct" json:"total_win_profit_loss_pct"`
	TotalLossProfitLossPct float64 `yaml:"total_loss_profit_loss_pct" json:"total_loss_profit_loss_pct"`

	NumTrades           int `yaml:"num_trades" json:"num_trades"`
	NumDates            int `yaml:"num_dates" json:"num_dates"`
	NumProfitLimits     int `yaml:"num_profit_limits" json:"num_profit_limits"`
	NumStopLosses       int `yaml:"num_stop_losses" json:"num_stop_losses"`
	NumDirectionChanges int `yaml:"num_direction_changes" json:"num_direction_changes"`
	NumWins             int `yaml:"num_wins" json:"num_wins"`
	NumLosses           int `yaml:"num_losses" json:"num_losses"`
	NumBreakevens       int `yaml:"num_breakevens" json:"num_breakevens"`

	NumTradesPerDay float64 `yaml:"num_trades_per_day" json:"num_trades_per_day"`
	WinLossRatio    float64 `yaml:"win_loss_ratio" json:"win_loss_ratio"`
	WinRate         float64 `yaml:"win_rate" json:"win_rate"`

	StartingPortfolioValue  float64 `yaml:"starting_portfolio_value" json:"starting_portfolio_value"`
	FinalPortfolioValue     float64 `yaml:"final_portfolio_value" json:"final_portfolio_value"`
	PortfolioValueChange    float64 `yaml:"portfolio_value_change" json:"portfolio_value_change"`
	PortfolioValueChangePct float64 `yaml:"portfolio_value_change_pct" json:"portfolio_value_change_pct"`
}

// WriteStatistics writes the statistics to a YAML file
func WriteStatistics(path string, stats BacktestStatistics) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics to file: %w", err)
	}

	return nil
}
