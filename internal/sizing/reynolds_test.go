package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

func reynoldsParams() ReynoldsParams {
	return ReynoldsParams{
		FlowRate:        50.0,
		InitialCv:       400.0,
		Viscosity:       1.0,
		Fd:              1.0,
		PipeDiameter:    100.0,
		SpecificGravity: 1.0,
	}
}

func TestCorrectReynoldsTurbulentIdentity(t *testing.T) {
	t.Parallel()
	p := reynoldsParams()
	p.Viscosity = 0.1 // Rev well above the globe turbulent threshold

	res, err := CorrectReynolds(p, model.Globe, units.For(units.Metric))
	require.NoError(t, err)

	assert.Equal(t, RegimeTurbulent, res.Regime)
	assert.InDelta(t, 1.0, res.Fr, 1e-12)
	assert.InDelta(t, p.InitialCv, res.CvCorrected, 1e-9)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, 10)
}

func TestCorrectReynoldsViscousConverges(t *testing.T) {
	t.Parallel()
	p := reynoldsParams()
	p.Viscosity = 500.0 // heavy oil territory

	res, err := CorrectReynolds(p, model.Globe, units.For(units.Metric))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, 10)
	assert.Less(t, res.Fr, 1.0)
	assert.Greater(t, res.CvCorrected, p.InitialCv)
}

func TestCorrectReynoldsIterationCap(t *testing.T) {
	t.Parallel()
	p := reynoldsParams()
	p.Viscosity = 500.0
	p.MaxIterations = 2
	p.Tolerance = 1e-12 // unreachable in two rounds

	res, err := CorrectReynolds(p, model.Globe, units.For(units.Metric))
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	// The carried estimate is still the last iterate, not garbage.
	assert.Greater(t, res.CvCorrected, p.InitialCv)
	assert.Contains(t, res.Warnings.Tags(), "unconverged")
}

func TestFrFromReynoldsMonotonic(t *testing.T) {
	t.Parallel()
	curve := frCurves[model.Globe]

	revs := []float64{1, 10, 56, 100, 1000, 5000, 20000, 39999, 40000, 1e6}
	prev := 0.0
	for _, rev := range revs {
		fr := frFromReynolds(rev, curve)
		assert.GreaterOrEqual(t, fr, prev, "Rev=%v", rev)
		assert.LessOrEqual(t, fr, 1.0, "Rev=%v", rev)
		prev = fr
	}
	assert.InDelta(t, 1.0, frFromReynolds(curve.turbulent, curve), 1e-12)
	assert.Less(t, frFromReynolds(curve.turbulent-1, curve), 1.0)
}

func TestFrCurvesStyleThresholds(t *testing.T) {
	t.Parallel()

	// Rotary styles reach Fr = 1 at lower Rev than globe trim.
	rev := 15000.0
	assert.InDelta(t, 1.0, frFromReynolds(rev, frCurves[model.Butterfly]), 1e-12)
	assert.Less(t, frFromReynolds(rev, frCurves[model.Globe]), 1.0)
}

func TestClassifyRegime(t *testing.T) {
	t.Parallel()
	curve := frCurves[model.Globe]

	assert.Equal(t, RegimeLaminar, classifyRegime(40, curve))
	assert.Equal(t, RegimeTransitional, classifyRegime(5000, curve))
	assert.Equal(t, RegimeTurbulent, classifyRegime(40000, curve))
}

func TestCorrectReynoldsInputErrors(t *testing.T) {
	t.Parallel()
	c := units.For(units.Metric)

	tests := []struct {
		name   string
		mutate func(*ReynoldsParams)
	}{
		{"zero flow", func(p *ReynoldsParams) { p.FlowRate = 0 }},
		{"zero cv", func(p *ReynoldsParams) { p.InitialCv = 0 }},
		{"zero viscosity", func(p *ReynoldsParams) { p.Viscosity = 0 }},
		{"zero Fd", func(p *ReynoldsParams) { p.Fd = 0 }},
		{"zero pipe diameter", func(p *ReynoldsParams) { p.PipeDiameter = 0 }},
		{"zero specific gravity", func(p *ReynoldsParams) { p.SpecificGravity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := reynoldsParams()
			tt.mutate(&p)
			_, err := CorrectReynolds(p, model.Globe, c)
			require.Error(t, err)
			assert.True(t, IsInputError(err))
		})
	}
}
