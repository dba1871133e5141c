package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

func waterCase() (model.ProcessConditions, model.LiquidProperties, model.ValveGeometry) {
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

func TestLiquidWaterSubcritical(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()

	res, err := NewLiquid(units.Metric).Size(proc, water, valve)
	require.NoError(t, err)

	sg := 998.0 / 1000.0
	assert.InDelta(t, sg, res.SpecificGravity, 1e-9)

	// Ff = 0.96 - 0.28*sqrt(0.032/221.2)
	wantFf := 0.96 - 0.28*math.Sqrt(0.032/221.2)
	assert.InDelta(t, wantFf, res.Ff, 1e-9)

	// dP_allow = FL^2 * (P1 - Ff*Pv) >> 2 bar operating drop
	wantAllow := 0.81 * (10.0 - wantFf*0.032)
	assert.InDelta(t, wantAllow, res.AllowableDrop, 1e-9)
	assert.Equal(t, Subcritical, res.Regime)
	assert.InDelta(t, 2.0, res.EffectiveDrop, 1e-12)

	// Line-size valve, no reducers.
	assert.InDelta(t, 1.0, res.Fp, 1e-12)

	wantCv := 50.0 / (0.0865 * math.Sqrt(2.0/sg))
	assert.InDelta(t, wantCv, res.CvBasic, 1e-6)

	// Fr <= 1: viscous correction can only enlarge the valve.
	assert.GreaterOrEqual(t, res.CvRequired, res.CvBasic)
	assert.True(t, res.Reynolds.Converged)

	assert.InDelta(t, (10.0-0.032)/2.0, res.SigmaService, 1e-9)
}

func TestLiquidChokedAtHighDrop(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()
	proc.OutletPressure = 0.5 // drop 9.5 bar against ~8.07 allowable

	res, err := NewLiquid(units.Metric).Size(proc, water, valve)
	require.NoError(t, err)

	assert.Equal(t, Choked, res.Regime)
	assert.InDelta(t, res.AllowableDrop, res.EffectiveDrop, 1e-12)
	assert.Less(t, res.ChokeMargin, 0.0)
	assert.Contains(t, res.Warnings.Tags(), "choked")
}

func TestLiquidRegimeBoundaryContinuity(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()
	eng := NewLiquid(units.Metric)

	// Allowable drop depends only on P1, Pv and FL, so it is fixed across
	// the sweep below.
	base, err := eng.Size(proc, water, valve)
	require.NoError(t, err)
	allow := base.AllowableDrop

	just := proc
	just.OutletPressure = proc.InletPressure - (allow - 1e-6)
	below, err := eng.Size(just, water, valve)
	require.NoError(t, err)
	assert.Equal(t, Subcritical, below.Regime)

	just.OutletPressure = proc.InletPressure - (allow + 1e-6)
	above, err := eng.Size(just, water, valve)
	require.NoError(t, err)
	assert.Equal(t, Choked, above.Regime)

	// Both sides of the boundary see the same effective drop, so Cv is
	// continuous across the regime switch.
	assert.InDelta(t, below.CvBasic, above.CvBasic, below.CvBasic*1e-4)
}

func TestLiquidDropForCvRoundTrip(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()
	eng := NewLiquid(units.Metric)

	res, err := eng.Size(proc, water, valve)
	require.NoError(t, err)

	back := eng.DropForCv(res.CvBasic, proc.FlowRate, res.SpecificGravity, res.Fp)
	assert.InDelta(t, proc.Drop(), back, 1e-6)
}

func TestLiquidOpeningWarnings(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()
	eng := NewLiquid(units.Metric)

	valve.RatedCv = 420 // required lands above 90%
	res, err := eng.Size(proc, water, valve)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings.Tags(), "opening-high")

	valve.RatedCv = 10000 // required lands below 10%
	res, err = eng.Size(proc, water, valve)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings.Tags(), "opening-low")
	assert.InDelta(t, res.CvRequired/10000*100, res.OpeningPercent, 1e-9)
}

func TestLiquidFlashingWarning(t *testing.T) {
	t.Parallel()
	proc, water, valve := waterCase()
	water.VaporPressure = 8.5 // above P2

	res, err := NewLiquid(units.Metric).Size(proc, water, valve)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings.Tags(), "flashing")
}

func TestLiquidInputErrors(t *testing.T) {
	t.Parallel()
	eng := NewLiquid(units.Metric)

	tests := []struct {
		name   string
		mutate func(*model.ProcessConditions, *model.LiquidProperties, *model.ValveGeometry)
	}{
		{"zero inlet pressure", func(p *model.ProcessConditions, _ *model.LiquidProperties, _ *model.ValveGeometry) {
			p.InletPressure = 0
		}},
		{"inverted pressures", func(p *model.ProcessConditions, _ *model.LiquidProperties, _ *model.ValveGeometry) {
			p.OutletPressure = p.InletPressure + 1
		}},
		{"zero flow", func(p *model.ProcessConditions, _ *model.LiquidProperties, _ *model.ValveGeometry) {
			p.FlowRate = 0
		}},
		{"zero density", func(_ *model.ProcessConditions, f *model.LiquidProperties, _ *model.ValveGeometry) {
			f.Density = 0
		}},
		{"negative vapor pressure", func(_ *model.ProcessConditions, f *model.LiquidProperties, _ *model.ValveGeometry) {
			f.VaporPressure = -0.1
		}},
		{"zero critical pressure", func(_ *model.ProcessConditions, f *model.LiquidProperties, _ *model.ValveGeometry) {
			f.CriticalPressure = 0
		}},
		{"FL above one", func(_ *model.ProcessConditions, _ *model.LiquidProperties, v *model.ValveGeometry) {
			v.FL = 1.2
		}},
		{"vapor pressure above inlet", func(p *model.ProcessConditions, f *model.LiquidProperties, _ *model.ValveGeometry) {
			p.InletPressure = 0.5
			p.OutletPressure = 0.2
			f.VaporPressure = 0.9
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			proc, water, valve := waterCase()
			tt.mutate(&proc, &water, &valve)
			_, err := eng.Size(proc, water, valve)
			require.Error(t, err)
			assert.True(t, IsInputError(err), "want InputError, got %v", err)
		})
	}
}

func TestCriticalRatioFactorBounds(t *testing.T) {
	t.Parallel()

	// Pv near Pc drives the raw Ff under the practical floor.
	ff, err := criticalRatioFactor(model.LiquidProperties{VaporPressure: 200, CriticalPressure: 221.2})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ff, 0.7)

	ff, err = criticalRatioFactor(model.LiquidProperties{VaporPressure: 0, CriticalPressure: 221.2})
	require.NoError(t, err)
	assert.InDelta(t, 0.96, ff, 1e-12)
}
