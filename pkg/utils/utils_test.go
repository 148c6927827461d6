package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type gridConfig struct {
	Min  float64 `json:"min" jsonschema:"description=Lower bound"`
	Max  float64 `json:"max" jsonschema:"description=Upper bound"`
	Step float64 `json:"step"`
}

type sweepConfig struct {
	Symbol      string     `json:"symbol"`
	ProfitLimit gridConfig `json:"profit_limit"`
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfig() {
	schema, err := GetSchemaFromConfig(sweepConfig{})
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	// Schema uses $ref to reference definitions in $defs
	suite.Contains(result, "$schema")
	suite.Contains(result, "$ref")
	suite.Contains(result, "$defs")

	defs, ok := result["$defs"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(defs, "gridConfig")
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfigPointer() {
	schema, err := GetSchemaFromConfig(&sweepConfig{})
	suite.NoError(err)
	suite.Contains(schema, "profit_limit")
}
