package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hvtlab/hvt/internal/strategy"
)

func sampleResult() strategy.Result {
	return strategy.Result{
		StrategyName:        "Momentum Ignition",
		Symbol:              "SIM1",
		PriceImpactAchieved: 0.025,
		CapitalUsed:         decimal.NewFromInt(1_500_000),
		ExecutionTime:       42 * time.Second,
		InitialPrice:        100.00,
		FinalPrice:          102.50,
		OrdersExecuted:      12,
		EfficiencyRatio:     0.0167,
		TargetAchieved:      true,
		ExecutionLog:        []string{"Strategy started at 10:00:00.000", "Order 1: buy 1000 @ 100.0100"},
	}
}

func TestGenerateContainsKeySections(t *testing.T) {
	md := Generate(sampleResult())

	assert.Contains(t, md, "# Trading Algorithm Performance Report")
	assert.Contains(t, md, "**Strategy**: Momentum Ignition")
	assert.Contains(t, md, "**Instrument**: SIM1")
	assert.Contains(t, md, "**Status**: SUCCESS")
	assert.Contains(t, md, "| Price Impact Achieved | 2.5000% |")
	assert.Contains(t, md, "| Capital Utilized | 1500000 |")
	assert.Contains(t, md, "| Orders Executed | 12 |")
	assert.Contains(t, md, "| Price Change | 2.5000 |")
	assert.Contains(t, md, "Order 1: buy 1000 @ 100.0100")
	assert.Contains(t, md, "synthetic market simulation")
}

func TestGenerateReportsPartialSuccess(t *testing.T) {
	result := sampleResult()
	result.TargetAchieved = false

	md := Generate(result)
	assert.Contains(t, md, "**Status**: PARTIAL SUCCESS")
	assert.Contains(t, md, "not fully achieved")
}

func TestGenerateEfficiencyAssessment(t *testing.T) {
	result := sampleResult()

	result.EfficiencyRatio = 0.2
	assert.Contains(t, Generate(result), "Excellent efficiency")

	result.EfficiencyRatio = 0.07
	assert.Contains(t, Generate(result), "Good efficiency")

	result.EfficiencyRatio = 0.01
	assert.Contains(t, Generate(result), "Lower efficiency")
}

func TestWriteResultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")
	require.NoError(t, WriteResult(sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "Momentum Ignition", decoded["strategy_name"])
	assert.Equal(t, "SIM1", decoded["symbol"])
	assert.EqualValues(t, 12, decoded["orders_executed"])
}

func TestWriteResultBadPath(t *testing.T) {
	err := WriteResult(sampleResult(), filepath.Join(t.TempDir(), "no", "such", "dir", "r.yaml"))
	assert.Error(t, err)
}
