package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	enginev1 "github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName       = "sweep-config.json"
	sampleConfigFileName = "sweep.yaml"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the config schema and a sample sweep config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory receiving the files",
				Value: "config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")
			schemaPath := filepath.Join(dir, schemaFileName)
			samplePath := filepath.Join(dir, sampleConfigFileName)

			config := enginev1.DefaultConfig()

			if err := generateSchemaFile(config, schemaPath); err != nil {
				return err
			}

			fmt.Println(HelpStyle.Render("Schema written to " + schemaPath))

			written, err := generateSampleConfig(config, samplePath, schemaFileName)
			if err != nil {
				return err
			}

			if written {
				fmt.Println(HelpStyle.Render("Sample config written to " + samplePath))
			}

			return nil
		},
	}
}

func generateSchemaFile(config enginev1.SweepConfig, schemaPath string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes config to samplePath unless the file already exists.
// It reports whether the file was written.
func generateSampleConfig(config enginev1.SweepConfig, samplePath string, schemaName string) (bool, error) {
	if err := validateSchemaName(schemaName); err != nil {
		return false, err
	}

	if _, err := os.Stat(samplePath); err == nil {
		return false, nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return false, fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(samplePath), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return false, fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return true, nil
}

func validateSchemaName(schemaName string) error {
	if schemaName == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(schemaName, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", schemaName)
	}

	return nil
}

// getSchemaReference is the modeline that points YAML editors at the schema.
func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}
