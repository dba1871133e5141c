package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
)

func airNoiseCase() Params {
	return Params{
		Proc: model.ProcessConditions{
			InletPressure:  10.0,
			OutletPressure: 6.0,
			Temperature:    293.15,
			FlowRate:       5000.0,
		},
		Gas: model.GasProperties{
			MolecularWeight:   28.97,
			SpecificHeatRatio: 1.40,
			Compressibility:   1.0,
		},
		Cv:           250.0,
		PipeDiameter: 154.1,
		Schedule:     "SCH40",
		Distance:     1.0,
	}
}

func TestPredictStages(t *testing.T) {
	t.Parallel()
	p := airNoiseCase()

	res, err := Predict(p)
	require.NoError(t, err)

	density := (10.0 * 1e5 * 28.97) / (units.GasConstant * 293.15)
	wantMassFlow := 5000.0 * density / 3600.0
	assert.InDelta(t, wantMassFlow, res.MassFlow, 1e-6)

	// Wm = mdot * dP / rho
	wantWm := wantMassFlow * 4.0e5 / density
	assert.InDelta(t, wantWm, res.MechanicalPower, 1e-3)

	// P2/P1 = 0.6 is above the critical ratio: subsonic jet.
	assert.Less(t, res.MachNumber, 1.0)
	assert.Greater(t, res.MachNumber, 0.3)
	assert.InDelta(t, 0.001*math.Pow(res.MachNumber, 3), res.AcousticEfficiency, 1e-12)

	wantLw := 10 * math.Log10(res.AcousticPower/1e-12)
	assert.InDelta(t, wantLw, res.SoundPower, 1e-9)

	assert.GreaterOrEqual(t, res.PeakFrequency, 100.0)
	assert.LessOrEqual(t, res.PeakFrequency, 10000.0)

	// Chain bookkeeping.
	assert.InDelta(t, res.SoundPower-res.TransmissionLoss-8, res.SPL1m, 1e-9)
	assert.InDelta(t, res.SPL1m, res.SPLAtDistance, 1e-9) // 1 m listener
	assert.NotEmpty(t, res.Assessment)
}

func TestPredictSonicJet(t *testing.T) {
	t.Parallel()
	p := airNoiseCase()
	p.Proc.OutletPressure = 2.0 // ratio 0.2, under the critical 0.528

	res, err := Predict(p)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.MachNumber, 1e-12)
	assert.InDelta(t, 0.001, res.AcousticEfficiency, 1e-12)
	assert.Contains(t, res.Warnings.Tags(), "sonic-jet")
}

func TestPredictWallThickness(t *testing.T) {
	t.Parallel()

	// Explicit wall thickness wins over the schedule ratio.
	p := airNoiseCase()
	p.WallThickness = 11.0
	res, err := Predict(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.011, res.WallThickness, 1e-9)

	// Schedule ratio: SCH80 bore fraction 0.12.
	p = airNoiseCase()
	p.Schedule = "SCH80"
	res, err = Predict(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.1541*0.12, res.WallThickness, 1e-9)

	// Unknown schedule falls back to SCH40.
	p = airNoiseCase()
	p.Schedule = "SCH999"
	res, err = Predict(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.1541*0.08, res.WallThickness, 1e-9)
}

func TestPredictThickerWallIsQuieter(t *testing.T) {
	t.Parallel()

	thin := airNoiseCase()
	thin.Schedule = "SCH10"
	thick := airNoiseCase()
	thick.Schedule = "SCH160"

	resThin, err := Predict(thin)
	require.NoError(t, err)
	resThick, err := Predict(thick)
	require.NoError(t, err)

	assert.Greater(t, resThick.TransmissionLoss, resThin.TransmissionLoss)
	assert.Less(t, resThick.SPLAtDistance, resThin.SPLAtDistance)
}

func TestPredictDistanceCorrection(t *testing.T) {
	t.Parallel()

	p := airNoiseCase()
	p.Distance = 10.0
	res, err := Predict(p)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, res.DistanceCorrection, 1e-9)
	assert.InDelta(t, res.SPL1m-10, res.SPLAtDistance, 1e-9)

	// Zero distance selects the 1 m default.
	p.Distance = 0
	res, err = Predict(p)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Distance, 1e-12)
	assert.Zero(t, res.DistanceCorrection)
}

func TestAssessBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spl  float64
		want string
	}{
		{95, "critical"},
		{90, "critical"},
		{87, "high"},
		{85, "high"},
		{80, "moderate"},
		{75, "moderate"},
		{60, "acceptable"},
	}
	for _, tt := range tests {
		res := &Result{SPLAtDistance: tt.spl}
		assess(res)
		assert.Equal(t, tt.want, res.Assessment, "spl=%v", tt.spl)
	}
}

func TestPredictInputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero inlet pressure", func(p *Params) { p.Proc.InletPressure = 0 }},
		{"inverted pressures", func(p *Params) { p.Proc.OutletPressure = p.Proc.InletPressure }},
		{"zero temperature", func(p *Params) { p.Proc.Temperature = 0 }},
		{"zero flow", func(p *Params) { p.Proc.FlowRate = 0 }},
		{"zero molecular weight", func(p *Params) { p.Gas.MolecularWeight = 0 }},
		{"zero cv", func(p *Params) { p.Cv = 0 }},
		{"zero pipe diameter", func(p *Params) { p.PipeDiameter = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := airNoiseCase()
			tt.mutate(&p)
			_, err := Predict(p)
			require.Error(t, err)
			assert.True(t, sizing.IsInputError(err))
		})
	}
}
