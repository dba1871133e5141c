package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

func baseCase() (model.ProcessConditions, model.LiquidProperties, model.ValveGeometry) {
	proc := model.ProcessConditions{
		InletPressure:  10.0,
		OutletPressure: 8.0,
		Temperature:    293.15,
		FlowRate:       50.0,
	}
	water := model.LiquidProperties{
		Density:          998.0,
		VaporPressure:    0.032,
		CriticalPressure: 221.2,
		Viscosity:        1.0,
	}
	valve := model.ValveGeometry{
		Style:         model.Globe,
		ValveDiameter: 100.0,
		PipeDiameter:  100.0,
		FL:            0.90,
		XT:            0.75,
		Fd:            1.0,
	}
	return proc, water, valve
}

func TestLiquidStandardLadder(t *testing.T) {
	t.Parallel()
	proc, water, valve := baseCase()

	study, err := NewRunner(units.Metric).Liquid(context.Background(), proc, water, valve, nil)
	require.NoError(t, err)
	require.Len(t, study.Points, 3)

	// Results land in scenario order regardless of completion order.
	assert.Equal(t, "min", study.Points[0].Scenario.Name)
	assert.Equal(t, "normal", study.Points[1].Scenario.Name)
	assert.Equal(t, "max", study.Points[2].Scenario.Name)

	for _, pt := range study.Points {
		require.Empty(t, pt.Err)
		require.NotNil(t, pt.Liquid)
		assert.InDelta(t, 50.0*pt.Scenario.FlowFactor, pt.Flow, 1e-9)
		assert.InDelta(t, 2.0*pt.Scenario.DropFactor, pt.Drop, 1e-9)
	}

	// Higher flow at moderately higher drop still needs more Cv.
	require.NotNil(t, study.Rangeab)
	assert.InDelta(t, study.Points[0].Liquid.CvRequired, study.Rangeab.MinCv, 1e-9)
	assert.InDelta(t, study.Points[2].Liquid.CvRequired, study.Rangeab.MaxCv, 1e-9)
	assert.Greater(t, study.Rangeab.Turndown, 1.0)
}

func TestGasSweep(t *testing.T) {
	t.Parallel()
	proc, _, valve := baseCase()
	air := model.GasProperties{MolecularWeight: 28.97, SpecificHeatRatio: 1.40, Compressibility: 1.0}
	proc.FlowRate = 5000

	study, err := NewRunner(units.Metric).Gas(context.Background(), proc, air, valve, nil)
	require.NoError(t, err)
	require.Len(t, study.Points, 3)
	for _, pt := range study.Points {
		require.Empty(t, pt.Err)
		require.NotNil(t, pt.Gas)
		assert.Nil(t, pt.Liquid)
	}
}

func TestSweepClampsExcessiveDrop(t *testing.T) {
	t.Parallel()
	proc, water, valve := baseCase()
	proc.OutletPressure = 2.0 // base drop 8; x5 would exceed the inlet

	scenarios := []Scenario{{Name: "surge", FlowFactor: 1.0, DropFactor: 5.0}}
	study, err := NewRunner(units.Metric).Liquid(context.Background(), proc, water, valve, scenarios)
	require.NoError(t, err)
	require.Len(t, study.Points, 1)

	pt := study.Points[0]
	assert.InDelta(t, 10.0*0.99, pt.Drop, 1e-9)
	require.NotNil(t, pt.Liquid)
}

func TestSweepCapturesInputErrors(t *testing.T) {
	t.Parallel()
	proc, water, valve := baseCase()
	water.Density = 0 // every scenario fails input checks

	study, err := NewRunner(units.Metric).Liquid(context.Background(), proc, water, valve, nil)
	require.NoError(t, err) // study completes; failures are per-point

	for _, pt := range study.Points {
		assert.NotEmpty(t, pt.Err)
		assert.Nil(t, pt.Liquid)
	}
	assert.Contains(t, study.Warnings.Tags(), "scenario-failures")
	assert.Nil(t, study.Rangeab)
}

func TestSweepWideTurndownWarning(t *testing.T) {
	t.Parallel()
	proc, water, valve := baseCase()

	scenarios := []Scenario{
		{Name: "trickle", FlowFactor: 0.01, DropFactor: 1.0},
		{Name: "full", FlowFactor: 1.0, DropFactor: 1.0},
	}
	study, err := NewRunner(units.Metric).Liquid(context.Background(), proc, water, valve, scenarios)
	require.NoError(t, err)
	require.NotNil(t, study.Rangeab)
	assert.Greater(t, study.Rangeab.Turndown, 50.0)
	assert.Contains(t, study.Warnings.Tags(), "wide-turndown")
}

func TestLoadScenarios(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: low
    flow_factor: 0.4
    drop_factor: 0.8
  - name: high
    flow_factor: 1.1
    drop_factor: 1.2
`), 0o644))

	scenarios, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "low", scenarios[0].Name)
	assert.InDelta(t, 1.2, scenarios[1].DropFactor, 1e-12)
}

func TestLoadScenariosRejectsBadFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := LoadScenarios(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("scenarios: []\n"), 0o644))
	_, err = LoadScenarios(empty)
	require.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte(`
scenarios:
  - flow_factor: 1.0
    drop_factor: 1.0
`), 0o644))
	_, err = LoadScenarios(unnamed)
	require.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte(`
scenarios:
  - name: bad
    flow_factor: -1
    drop_factor: 1.0
`), 0o644))
	_, err = LoadScenarios(negative)
	require.Error(t, err)
}
