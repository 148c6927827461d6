package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CombinationResult is the unit ranked by a sweep.
type CombinationResult struct {
	IndicatorSettings IndicatorSettings  `yaml:"indicator_settings" json:"indicator_settings"`
	RiskSettings      BacktestSettings   `yaml:"risk_settings" json:"risk_settings"`
	Statistics        BacktestStatistics `yaml:"statistics" json:"statistics"`
}

// SweepReport summarizes one sweep run on disk.
type SweepReport struct {
	// ID is the unique identifier for this sweep run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this sweep run finished.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// EngineVersion is the version of the binary that produced the report.
	EngineVersion string `yaml:"engine_version" json:"engine_version"`
	Symbol        string `yaml:"symbol" json:"symbol"`
	Resolution    string `yaml:"resolution" json:"resolution"`
	StartDate     string `yaml:"start_date" json:"start_date"`
	EndDate       string `yaml:"end_date" json:"end_date"`
	// NumCombinations counts the combinations that were ranked.
	NumCombinations int `yaml:"num_combinations" json:"num_combinations"`
	// NumFailed counts the combinations excluded from ranking because they failed.
	NumFailed int                 `yaml:"num_failed" json:"num_failed"`
	Best      *CombinationResult  `yaml:"best,omitempty" json:"best,omitempty"`
	Top       []CombinationResult `yaml:"top" json:"top"`
	// CombinationsFilePath is the path to the ranked combinations parquet file.
	CombinationsFilePath string `yaml:"combinations_file_path" json:"combinations_file_path"`
	// TradesFilePath is the path to the best combination's trades parquet file.
	TradesFilePath string `yaml:"trades_file_path" json:"trades_file_path"`
	// StatisticsFilePath is the path to the best combination's statistics, empty when nothing ranked.
	StatisticsFilePath string `yaml:"statistics_file_path,omitempty" json:"statistics_file_path,omitempty"`
}

// WriteSweepReport writes the report to a YAML file
func WriteSweepReport(path string, report SweepReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sweep report to file: %w", err)
	}

	return nil
}

// ReadSweepReport reads a report written by WriteSweepReport
func ReadSweepReport(path string) (SweepReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed to read sweep report: %w", err)
	}

	var report SweepReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return SweepReport{}, fmt.Errorf("failed to parse sweep report: %w", err)
	}

	return report, nil
}
