package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/procflow/sizer-cli/internal/cavitation"
	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/noise"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
)

func liquidDatasheet(t *testing.T) *Datasheet {
	t.Helper()

	proc := model.ProcessConditions{
		InletPressure:  10.0,
		OutletPressure: 8.0,
		Temperature:    293.15,
		FlowRate:       50.0,
	}
	water := model.LiquidProperties{
		Density: 998.0, VaporPressure: 0.032, CriticalPressure: 221.2, Viscosity: 1.0,
	}
	valve := model.ValveGeometry{
		Style: model.Globe, ValveDiameter: 100, PipeDiameter: 100,
		FL: 0.90, XT: 0.75, Fd: 1.0, RatedCv: 450,
	}

	res, err := sizing.NewLiquid(units.Metric).Size(proc, water, valve)
	require.NoError(t, err)
	cav, err := cavitation.Assess(cavitation.Params{Proc: proc, VaporPressure: 0.032, Valve: valve})
	require.NoError(t, err)

	d := NewDatasheet("Unit 300 Revamp", "FV-3001", units.Metric)
	d.Proc = proc
	d.Valve = valve
	d.Liquid = res
	d.Cavitation = cav
	return d
}

func TestNewDatasheetStampsCase(t *testing.T) {
	t.Parallel()

	d := NewDatasheet("P", "T-1", units.Metric)
	assert.NotEmpty(t, d.CaseID)
	assert.False(t, d.Generated.IsZero())

	other := NewDatasheet("P", "T-1", units.Metric)
	assert.NotEqual(t, d.CaseID, other.CaseID)
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	t.Parallel()
	d := liquidDatasheet(t)

	path := filepath.Join(t.TempDir(), "datasheet.xlsx")
	require.NoError(t, d.WriteXLSX(path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	var labels []string
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) > 0 {
			labels = append(labels, row.Cells[0].String())
		}
	}
	joined := strings.Join(labels, "\n")
	assert.Contains(t, joined, "CONTROL VALVE DATASHEET")
	assert.Contains(t, joined, "1. PROCESS CONDITIONS")
	assert.Contains(t, joined, "3. LIQUID SIZING (ISA 75.01)")
	assert.Contains(t, joined, "4. CAVITATION (ISA RP75.23)")
	assert.Contains(t, joined, "Required Cv")
	assert.NotContains(t, joined, "GAS SIZING") // nil section omitted
}

func TestWriteXLSXGasWithNoise(t *testing.T) {
	t.Parallel()

	proc := model.ProcessConditions{
		InletPressure:  10.0,
		OutletPressure: 6.0,
		Temperature:    293.15,
		FlowRate:       5000.0,
	}
	air := model.GasProperties{MolecularWeight: 28.97, SpecificHeatRatio: 1.40, Compressibility: 1.0}
	valve := model.ValveGeometry{
		Style: model.Globe, ValveDiameter: 100, PipeDiameter: 100,
		FL: 0.90, XT: 0.75, Fd: 1.0,
	}

	res, err := sizing.NewGas(units.Metric).Size(proc, air, valve)
	require.NoError(t, err)
	nz, err := noise.Predict(noise.Params{
		Proc: proc, Gas: air, Cv: res.CvRequired,
		PipeDiameter: 154.1, Schedule: "SCH40", Distance: 1,
	})
	require.NoError(t, err)

	d := NewDatasheet("", "PV-101", units.Metric)
	d.Proc = proc
	d.Valve = valve
	d.Gas = res
	d.Noise = nz

	path := filepath.Join(t.TempDir(), "gas.xlsx")
	require.NoError(t, d.WriteXLSX(path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	var labels []string
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) > 0 {
			labels = append(labels, row.Cells[0].String())
		}
	}
	joined := strings.Join(labels, "\n")
	assert.Contains(t, joined, "3. GAS SIZING (ISA 75.01)")
	assert.Contains(t, joined, "5. NOISE (IEC 60534-8-3)")
	assert.Contains(t, joined, "Expansion Factor Y")
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	d := liquidDatasheet(t)

	var b strings.Builder
	require.NoError(t, d.WriteText(&b))
	out := b.String()

	assert.Contains(t, out, d.CaseID)
	assert.Contains(t, out, "Project: Unit 300 Revamp   Tag: FV-3001")
	assert.Contains(t, out, "Liquid sizing:")
	assert.Contains(t, out, "Cavitation:")
	assert.Contains(t, out, "regime subcritical")
	assert.NotContains(t, out, "Gas sizing:")
}
