package sizing

import (
	"math"

	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

// GasResult is the outcome of a gas/vapor sizing call per ISA 75.01.
// Velocity fields are evaluated at inlet conditions.
type GasResult struct {
	CvRequired    float64        `json:"cv_required"`
	X             float64        `json:"x"`      // ΔP/P1 as operated
	XTEff         float64        `json:"xt_eff"` // xT·(k/1.40)
	Y             float64        `json:"y"`      // expansion factor, [2/3, 1]
	Fp            float64        `json:"fp"`
	Regime        Regime         `json:"regime"`
	PressureRatio float64        `json:"pressure_ratio"` // P2/P1
	ChokeMargin   float64        `json:"choke_margin"`   // (xT_eff - x)/xT_eff
	InletDensity  float64        `json:"inlet_density"`
	SonicVelocity float64        `json:"sonic_velocity"`
	ValveVelocity float64        `json:"valve_velocity"`
	MachNumber    float64        `json:"mach_number"`
	EffectiveDrop float64        `json:"effective_drop"` // x capped at xT_eff, times P1
	Warnings      model.Warnings `json:"warnings,omitempty"`
}

// Gas sizes valves for compressible service per ISA 75.01 / IEC 60534-2-1.
type Gas struct {
	sys units.System
	c   units.Constants
}

// NewGas returns a gas sizing engine bound to one unit system.
func NewGas(sys units.System) *Gas {
	return &Gas{sys: sys, c: units.For(sys)}
}

// Size computes the required Cv for a gas operating point. Flow is
// volumetric at standard conditions in the case's flow unit; the density
// ratio ρ1/ρ0 normalizes it against the sizing constants.
func (g *Gas) Size(proc model.ProcessConditions, gas model.GasProperties, valve model.ValveGeometry) (*GasResult, error) {
	if proc.InletPressure <= 0 {
		return nil, inputErr("inlet_pressure", proc.InletPressure, "gas sizing")
	}
	if proc.OutletPressure <= 0 {
		return nil, inputErr("outlet_pressure", proc.OutletPressure, "gas sizing")
	}
	drop := proc.Drop()
	if drop <= 0 {
		return nil, inputErr("delta_p", drop, "gas sizing")
	}
	if proc.FlowRate <= 0 {
		return nil, inputErr("flow_rate", proc.FlowRate, "gas sizing")
	}
	if proc.Temperature <= 0 {
		return nil, inputErr("temperature", proc.Temperature, "gas sizing")
	}
	if gas.MolecularWeight <= 0 {
		return nil, inputErr("molecular_weight", gas.MolecularWeight, "inlet density")
	}
	if gas.SpecificHeatRatio <= 1 {
		return nil, inputErr("specific_heat_ratio", gas.SpecificHeatRatio, "expansion factor")
	}
	if gas.Compressibility <= 0 {
		return nil, inputErr("compressibility", gas.Compressibility, "inlet density")
	}
	if valve.XT <= 0 || valve.XT > 1 {
		return nil, inputErr("xt", valve.XT, "choked flow analysis")
	}

	res := &GasResult{
		PressureRatio: proc.OutletPressure / proc.InletPressure,
		X:             drop / proc.InletPressure,
	}

	// Specific-heat correction: xT_eff = xT·(k/1.40).
	res.XTEff = valve.XT * (gas.SpecificHeatRatio / 1.40)
	xEff := res.X
	res.Regime = Subcritical
	if res.X >= res.XTEff {
		res.Regime = Choked
		xEff = res.XTEff
	}
	res.ChokeMargin = (res.XTEff - res.X) / res.XTEff
	res.EffectiveDrop = xEff * proc.InletPressure

	// Expansion factor, floored at 2/3 exactly at the choked boundary.
	res.Y = 1 - xEff/(3*res.XTEff)

	res.InletDensity = g.inletDensity(proc, gas)

	densityRatio := res.InletDensity / g.airDensityRef()
	fp, cv, err := resolvePiping(valve.ValveDiameter, valve.PipeDiameter, g.c, func(fp float64) float64 {
		if res.Regime == Choked {
			return (proc.FlowRate / fp) / (g.c.N6 * proc.InletPressure * res.Y * math.Sqrt(densityRatio))
		}
		return (proc.FlowRate / fp) / (g.c.N9 * res.Y * proc.InletPressure * math.Sqrt(res.EffectiveDrop*densityRatio))
	})
	if err != nil {
		return nil, err
	}
	res.Fp = fp
	res.CvRequired = cv

	if g.sys == units.Metric {
		g.velocityAnalysis(res, proc, gas)
	}

	g.addWarnings(res)

	zap.L().Debug("sizing: gas case complete",
		zap.Float64("cv_required", res.CvRequired),
		zap.String("regime", string(res.Regime)),
		zap.Float64("y", res.Y),
		zap.Float64("xt_eff", res.XTEff),
		zap.Float64("mach", res.MachNumber),
		zap.Strings("warnings", res.Warnings.Tags()),
	)
	return res, nil
}

// inletDensity evaluates the real-gas density at inlet conditions.
func (g *Gas) inletDensity(proc model.ProcessConditions, gas model.GasProperties) float64 {
	if g.sys == units.Imperial {
		// psia·144 / (ft·lbf/(lbmol·°R)) form.
		return (proc.InletPressure * 144 * gas.MolecularWeight) / (1545 * gas.Compressibility * proc.Temperature)
	}
	// bar → Pa; kg/m³.
	return (proc.InletPressure * 1e5 * gas.MolecularWeight) / (gas.Compressibility * units.GasConstant * proc.Temperature)
}

func (g *Gas) airDensityRef() float64 {
	if g.sys == units.Imperial {
		return 0.0765 // lb/ft³, air at standard conditions
	}
	return units.AirDensityRef
}

// velocityAnalysis estimates the through-valve velocity and Mach number at
// inlet conditions. SI only; the formulas below carry SI unit factors.
func (g *Gas) velocityAnalysis(res *GasResult, proc model.ProcessConditions, gas model.GasProperties) {
	sonic := math.Sqrt(gas.SpecificHeatRatio * units.GasConstant * proc.Temperature / gas.MolecularWeight)
	res.SonicVelocity = sonic * math.Sqrt(gas.Compressibility)

	// Flow area approximated from Cv; the 29.9 in²-per-Cv relation is the
	// customary estimate, converted to m².
	areaM2 := (res.CvRequired / 29.9) * 0.00064516
	if areaM2 <= 0 {
		return
	}
	volumeFlow := proc.FlowRate / 3600.0 // m³/s at inlet
	res.ValveVelocity = volumeFlow / areaM2
	if res.SonicVelocity > 0 {
		res.MachNumber = res.ValveVelocity / res.SonicVelocity
	}
}

func (g *Gas) addWarnings(res *GasResult) {
	if res.Regime == Choked {
		res.Warnings.Add("choked", "flow is choked (sonic); raising ΔP no longer raises flow")
	} else if res.ChokeMargin < 0.05 {
		res.Warnings.Add("choke-margin", "operating within 5% of the choked-flow threshold")
	}
	if res.MachNumber > 0.8 {
		res.Warnings.Add("high-mach", "Mach number above 0.8; noise and erosion concerns")
	}
	if res.PressureRatio < 0.3 {
		res.Warnings.Add("low-pressure-ratio", "very low P2/P1; verify downstream pressure requirement")
	}
}
