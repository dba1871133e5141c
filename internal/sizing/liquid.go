package sizing

import (
	"math"

	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

// Regime is the flow regime a sizing result landed in.
type Regime string

const (
	Subcritical Regime = "subcritical"
	Choked      Regime = "choked"
)

// LiquidResult is the outcome of a liquid sizing call per ISA 75.01.
type LiquidResult struct {
	CvBasic         float64         `json:"cv_basic"`    // turbulent, geometry-corrected
	CvRequired      float64         `json:"cv_required"` // after Reynolds correction
	SpecificGravity float64         `json:"specific_gravity"`
	Ff              float64         `json:"ff"`
	Fp              float64         `json:"fp"`
	Regime          Regime          `json:"regime"`
	AllowableDrop   float64         `json:"allowable_drop"`
	EffectiveDrop   float64         `json:"effective_drop"`
	ChokeMargin     float64         `json:"choke_margin"` // (ΔP_allow - ΔP)/ΔP_allow
	SigmaService    float64         `json:"sigma_service"`
	Reynolds        *ReynoldsResult `json:"reynolds"`
	OpeningPercent  float64         `json:"opening_percent,omitempty"` // only with a rated Cv
	Warnings        model.Warnings  `json:"warnings,omitempty"`
}

// Liquid sizes valves for incompressible service per ISA 75.01 /
// IEC 60534-2-1. The zero MaxIterations/Tolerance select the Reynolds
// iteration defaults.
type Liquid struct {
	sys           units.System
	c             units.Constants
	MaxIterations int
	Tolerance     float64
}

// NewLiquid returns a liquid sizing engine bound to one unit system.
func NewLiquid(sys units.System) *Liquid {
	return &Liquid{sys: sys, c: units.For(sys)}
}

// Size computes the required Cv for the given operating point. Inputs must
// already be validated for range consistency; Size still rejects anything
// that makes a formula stage undefined (spec precondition, not a clamp).
func (l *Liquid) Size(proc model.ProcessConditions, fluid model.LiquidProperties, valve model.ValveGeometry) (*LiquidResult, error) {
	if proc.InletPressure <= 0 {
		return nil, inputErr("inlet_pressure", proc.InletPressure, "liquid sizing")
	}
	if proc.OutletPressure <= 0 {
		return nil, inputErr("outlet_pressure", proc.OutletPressure, "liquid sizing")
	}
	drop := proc.Drop()
	if drop <= 0 {
		return nil, inputErr("delta_p", drop, "liquid sizing")
	}
	if proc.FlowRate <= 0 {
		return nil, inputErr("flow_rate", proc.FlowRate, "liquid sizing")
	}
	if fluid.Density <= 0 {
		return nil, inputErr("density", fluid.Density, "specific gravity")
	}
	if valve.FL <= 0 || valve.FL > 1 {
		return nil, inputErr("fl", valve.FL, "choked flow analysis")
	}

	res := &LiquidResult{
		SpecificGravity: fluid.Density / units.WaterDensity(l.sys),
	}

	ff, err := criticalRatioFactor(fluid)
	if err != nil {
		return nil, err
	}
	res.Ff = ff

	// Choked flow analysis: ΔP_allow = FL²·(P1 - Ff·Pv).
	suppression := proc.InletPressure - ff*fluid.VaporPressure
	if suppression <= 0 {
		return nil, inputErr("inlet_pressure", proc.InletPressure, "allowable drop: P1 <= Ff*Pv")
	}
	res.AllowableDrop = valve.FL * valve.FL * suppression
	res.EffectiveDrop = drop
	res.Regime = Subcritical
	if drop >= res.AllowableDrop {
		res.Regime = Choked
		res.EffectiveDrop = res.AllowableDrop
	}
	res.ChokeMargin = (res.AllowableDrop - drop) / res.AllowableDrop
	res.SigmaService = (proc.InletPressure - fluid.VaporPressure) / drop

	// Basic Cv and Fp, iterated jointly when reducers are present.
	root := math.Sqrt(res.EffectiveDrop / res.SpecificGravity)
	fp, cvBasic, err := resolvePiping(valve.ValveDiameter, valve.PipeDiameter, l.c, func(fp float64) float64 {
		return (proc.FlowRate / fp) / (l.c.N1 * root)
	})
	if err != nil {
		return nil, err
	}
	res.Fp = fp
	res.CvBasic = cvBasic

	// Viscous correction via Fr fixed point.
	rey, err := CorrectReynolds(ReynoldsParams{
		FlowRate:        proc.FlowRate,
		InitialCv:       cvBasic,
		Viscosity:       fluid.Viscosity,
		Fd:              valve.Fd,
		PipeDiameter:    valve.PipeDiameter,
		SpecificGravity: res.SpecificGravity,
		MaxIterations:   l.MaxIterations,
		Tolerance:       l.Tolerance,
	}, valve.Style, l.c)
	if err != nil {
		return nil, err
	}
	res.Reynolds = rey
	res.CvRequired = rey.CvCorrected

	if valve.RatedCv > 0 {
		res.OpeningPercent = res.CvRequired / valve.RatedCv * 100
	}

	l.addWarnings(res, proc, fluid, valve)

	zap.L().Debug("sizing: liquid case complete",
		zap.Float64("cv_required", res.CvRequired),
		zap.String("regime", string(res.Regime)),
		zap.Float64("fp", res.Fp),
		zap.Float64("fr", rey.Fr),
		zap.Bool("converged", rey.Converged),
		zap.Strings("warnings", res.Warnings.Tags()),
	)
	return res, nil
}

// DropForCv inverts the basic liquid formula: the pressure drop that the
// computed Cv would pass the given flow at. Used for round-trip checks.
func (l *Liquid) DropForCv(cv, flowRate, specificGravity, fp float64) float64 {
	q := flowRate / (fp * l.c.N1 * cv)
	return specificGravity * q * q
}

// criticalRatioFactor computes Ff = 0.96 - 0.28·√(Pv/Pc), bounded to the
// standard's practical band [0.7, 0.98].
func criticalRatioFactor(fluid model.LiquidProperties) (float64, error) {
	if fluid.VaporPressure < 0 {
		return 0, inputErr("vapor_pressure", fluid.VaporPressure, "critical ratio factor")
	}
	if fluid.CriticalPressure <= 0 {
		return 0, inputErr("critical_pressure", fluid.CriticalPressure, "critical ratio factor")
	}
	ff := 0.96 - 0.28*math.Sqrt(fluid.VaporPressure/fluid.CriticalPressure)
	return math.Max(0.7, math.Min(0.98, ff)), nil
}

func (l *Liquid) addWarnings(res *LiquidResult, proc model.ProcessConditions, fluid model.LiquidProperties, valve model.ValveGeometry) {
	if fluid.VaporPressure >= proc.OutletPressure {
		res.Warnings.Add("flashing", "vapor pressure at or above outlet pressure; downstream flashing expected")
	}
	if res.Regime == Choked {
		res.Warnings.Add("choked", "flow is choked; capacity is limited by vaporization at the vena contracta")
	} else if res.ChokeMargin < 0.05 {
		res.Warnings.Add("choke-margin", "operating within 5% of the allowable pressure drop")
	}
	if res.Reynolds.Fr < 0.8 {
		res.Warnings.Add("viscous", "significant viscous effects; Reynolds correction above 25%")
	}
	if valve.RatedCv > 0 {
		switch {
		case res.OpeningPercent > 90:
			res.Warnings.Add("opening-high", "required Cv above 90% of rated; no control margin")
		case res.OpeningPercent < 10:
			res.Warnings.Add("opening-low", "required Cv below 10% of rated; poor controllability near the seat")
		}
	}
}
