package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle for the left column of summaries.
	LabelStyle = lipgloss.NewStyle().Faint(true).Width(22)

	// BoxStyle frames a summary.
	BoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// FormatPct formats a fraction as a signed percentage with a trend marker.
func FormatPct(fraction float64) string {
	pctStr := fmt.Sprintf("%+.3f%%", fraction*100)

	if fraction > 0 {
		return pctStr + " ▲"
	} else if fraction < 0 {
		return pctStr + " ▼"
	}

	return pctStr
}

func row(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), fmt.Sprint(value))
}

// RenderCombination renders the settings and statistics of one ranked combination.
func RenderCombination(title string, result types.CombinationResult) string {
	stats := result.Statistics
	risk := result.RiskSettings

	rows := []string{
		TitleStyle.Render(title),
		row("Indicator", result.IndicatorSettings.String()),
		row("Profit limit", FormatPct(risk.ProfitLimitPct)),
		row("Stop loss", FormatPct(risk.StopLossPct)),
		row("Slippage", fmt.Sprintf("%.3f%%", risk.SlippagePct*100)),
		row("Warm-up", risk.WarmupIndex),
		"",
		row("Portfolio change", FormatPct(stats.PortfolioValueChangePct)),
		row("Final value", fmt.Sprintf("%.2f (from %.2f)", stats.FinalPortfolioValue, stats.StartingPortfolioValue)),
		row("Trades", fmt.Sprintf("%d over %d days (%.2f/day)", stats.NumTrades, stats.NumDates, stats.NumTradesPerDay)),
		row("Wins / losses / even", fmt.Sprintf("%d / %d / %d", stats.NumWins, stats.NumLosses, stats.NumBreakevens)),
		row("Win rate", fmt.Sprintf("%.1f%%", stats.WinRate*100)),
		row("Exits", fmt.Sprintf("%d profit, %d stop, %d direction", stats.NumProfitLimits, stats.NumStopLosses, stats.NumDirectionChanges)),
	}

	return BoxStyle.Render(strings.Join(rows, "\n"))
}

// RenderReport renders the header of a sweep report followed by its ranking.
func RenderReport(report types.SweepReport) string {
	header := []string{
		TitleStyle.Render(fmt.Sprintf("Sweep %s", report.ID)),
		row("Symbol", fmt.Sprintf("%s %s", report.Symbol, report.Resolution)),
		row("Dates", fmt.Sprintf("%s to %s", report.StartDate, report.EndDate)),
		row("Finished", report.Timestamp.Format(time.RFC3339)),
		row("Engine version", report.EngineVersion),
		row("Combinations", fmt.Sprintf("%d ranked, %d failed", report.NumCombinations, report.NumFailed)),
		row("Combinations file", report.CombinationsFilePath),
		row("Trades file", report.TradesFilePath),
	}

	sections := []string{BoxStyle.Render(strings.Join(header, "\n"))}

	if report.Best != nil {
		sections = append(sections, RenderCombination("Best combination", *report.Best))
	}

	if len(report.Top) > 0 {
		lines := []string{TitleStyle.Render(fmt.Sprintf("Top %d", len(report.Top)))}
		for i, result := range report.Top {
			lines = append(lines, fmt.Sprintf("%3d. %-16s %s  pl=%g sl=%g",
				i+1,
				FormatPct(result.Statistics.PortfolioValueChangePct),
				result.IndicatorSettings.String(),
				result.RiskSettings.ProfitLimitPct,
				result.RiskSettings.StopLossPct,
			))
		}

		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n")
}

// RenderCompute renders the direction windows of one date.
func RenderCompute(result types.ComputeResult) string {
	rows := []string{
		TitleStyle.Render(fmt.Sprintf("%s on %s", result.Indicator.String(), result.Date)),
		row("Candles", result.NumCandles),
		row("Windows", len(result.Windows)),
	}

	if result.IndicatorError != "" {
		rows = append(rows, row("Indicator error", result.IndicatorError))
	}

	window, err := result.LatestWindow.Take()
	if err != nil {
		rows = append(rows, HelpStyle.Render("no direction changes yet"))

		return BoxStyle.Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, row("Latest window", fmt.Sprintf("[%d, %d)", window.StartIndex, window.EndIndex)))

	if snapshot, err := result.LatestSnapshot.Take(); err == nil {
		rows = append(rows,
			row("Direction", snapshot.Direction),
			row("Since", snapshot.Candle.Time().Format(time.RFC3339)),
			row("Open price", fmt.Sprintf("%.4f", snapshot.Candle.Open)),
		)
	}

	return BoxStyle.Render(strings.Join(rows, "\n"))
}
