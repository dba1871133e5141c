// Package validate screens process inputs against industry limits before a
// sizing run. Violations of hard physical constraints are errors; values
// that are legal but suspicious come back as warnings so the caller can
// still proceed.
package validate

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/procflow/sizer-cli/internal/model"
)

// Severity grades a finding.
type Severity int

const (
	// Warn marks a value that is legal but outside common practice.
	Warn Severity = iota
	// Fatal marks a value the engine cannot compute with.
	Fatal
)

// Finding is one screened observation about the inputs.
type Finding struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// Findings collects the results of one screening pass.
type Findings []Finding

func (f *Findings) fatal(field, format string, args ...any) {
	*f = append(*f, Finding{Severity: Fatal, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f *Findings) warn(field, format string, args ...any) {
	*f = append(*f, Finding{Severity: Warn, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns the non-fatal findings as sizing warnings.
func (f Findings) Warnings() model.Warnings {
	var w model.Warnings
	for _, fd := range f {
		if fd.Severity == Warn {
			w.Add(fd.Field, fd.Message)
		}
	}
	return w
}

// Err folds the fatal findings into a single error, or nil when the inputs
// are computable.
func (f Findings) Err() error {
	var msgs []string
	for _, fd := range f {
		if fd.Severity == Fatal {
			msgs = append(msgs, fd.Field+": "+fd.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return eris.New("validate: " + strings.Join(msgs, "; "))
}

// Liquid screens a liquid sizing case.
func Liquid(proc model.ProcessConditions, fluid model.LiquidProperties, valve model.ValveGeometry) Findings {
	var f Findings
	pressures(&f, proc)
	flowRate(&f, proc)
	valveFactors(&f, valve)

	if fluid.Density < 300 {
		f.fatal("density", "%.1f kg/m3 too low for liquid service", fluid.Density)
	} else if fluid.Density > 2000 {
		f.warn("density", "%.1f kg/m3 unusually high; verify fluid data", fluid.Density)
	}
	if fluid.Viscosity <= 0 {
		f.fatal("viscosity", "must be positive")
	} else if fluid.Viscosity > 1000 {
		f.warn("viscosity", "%.1f cSt is very high; laminar correction will dominate", fluid.Viscosity)
	}
	if fluid.VaporPressure < 0 {
		f.fatal("vapor_pressure", "cannot be negative")
	} else if fluid.VaporPressure >= proc.InletPressure {
		f.fatal("vapor_pressure", "at or above inlet pressure; fluid is not liquid at the inlet")
	} else if fluid.VaporPressure >= proc.OutletPressure {
		f.warn("vapor_pressure", "above outlet pressure; flashing or heavy cavitation expected")
	}
	if fluid.CriticalPressure > 0 && fluid.CriticalPressure <= fluid.VaporPressure {
		f.fatal("critical_pressure", "must exceed vapor pressure")
	}
	return f
}

// Gas screens a gas sizing case.
func Gas(proc model.ProcessConditions, gas model.GasProperties, valve model.ValveGeometry) Findings {
	var f Findings
	pressures(&f, proc)
	flowRate(&f, proc)
	valveFactors(&f, valve)

	if gas.MolecularWeight <= 0 {
		f.fatal("molecular_weight", "must be positive")
	} else if gas.MolecularWeight > 200 {
		f.warn("molecular_weight", "%.1f is unusually high; verify gas composition", gas.MolecularWeight)
	}
	if gas.SpecificHeatRatio <= 1.0 {
		f.fatal("specific_heat_ratio", "must exceed 1.0")
	} else if gas.SpecificHeatRatio > 2.0 {
		f.warn("specific_heat_ratio", "%.2f outside the typical 1.0-2.0 range", gas.SpecificHeatRatio)
	}
	if gas.Compressibility <= 0 {
		f.fatal("compressibility", "must be positive")
	} else if gas.Compressibility > 2.0 {
		f.warn("compressibility", "%.2f is high; verify operating conditions", gas.Compressibility)
	}
	if proc.Temperature <= 0 {
		f.fatal("temperature", "absolute temperature must be positive")
	} else if proc.Temperature > 873 {
		f.warn("temperature", "%.0f K above reasonable maximum for valve trim", proc.Temperature)
	}
	return f
}

// FlowRange screens a min/normal/max flow triple for sweep studies.
func FlowRange(minFlow, normalFlow, maxFlow float64) Findings {
	var f Findings
	if normalFlow <= 0 {
		f.fatal("normal_flow", "must be positive")
	}
	if minFlow <= 0 {
		f.fatal("min_flow", "must be positive")
	}
	if maxFlow <= normalFlow {
		f.fatal("max_flow", "must exceed normal flow")
	}
	if minFlow >= normalFlow && normalFlow > 0 {
		f.fatal("min_flow", "must be below normal flow")
	}
	if minFlow > 0 && maxFlow > 0 {
		turndown := maxFlow / minFlow
		if turndown > 100 {
			f.warn("turndown", "%.1f:1 is very high; a single valve may not cover the range", turndown)
		} else if turndown < 2 {
			f.warn("turndown", "%.1f:1 gives limited control range", turndown)
		}
	}
	return f
}

// SourService screens an H2S partial pressure against the NACE MR0175
// threshold for sour-service material selection.
func SourService(h2sPartialPressure float64) Findings {
	var f Findings
	if h2sPartialPressure < 0 {
		f.fatal("h2s_partial_pressure", "cannot be negative")
	} else if h2sPartialPressure > 0.05 {
		f.warn("h2s_partial_pressure", "%.3f bar exceeds the sour-service threshold; NACE MR0175 material limits apply", h2sPartialPressure)
	}
	return f
}

func pressures(f *Findings, proc model.ProcessConditions) {
	if proc.InletPressure <= 0 {
		f.fatal("inlet_pressure", "must be positive")
	}
	if proc.OutletPressure <= 0 {
		f.fatal("outlet_pressure", "must be positive")
	}
	if proc.InletPressure > 0 && proc.OutletPressure >= proc.InletPressure {
		f.fatal("outlet_pressure", "must be below inlet pressure")
	}
	if proc.InletPressure > 500 {
		f.warn("inlet_pressure", "%.1f bar exceeds the typical industrial range", proc.InletPressure)
	}
	if proc.InletPressure > 0 && proc.OutletPressure > 0 && proc.OutletPressure < proc.InletPressure {
		dropPct := proc.Drop() / proc.InletPressure * 100
		if dropPct > 90 {
			f.warn("pressure_drop", "%.0f%% of inlet pressure; review the system design", dropPct)
		} else if dropPct < 5 {
			f.warn("pressure_drop", "%.0f%% of inlet pressure; poor valve authority expected", dropPct)
		}
	}
}

func flowRate(f *Findings, proc model.ProcessConditions) {
	if proc.FlowRate <= 0 {
		f.fatal("flow_rate", "must be positive")
	}
}

func valveFactors(f *Findings, valve model.ValveGeometry) {
	if valve.FL != 0 && (valve.FL < 0.1 || valve.FL > 1.0) {
		f.fatal("fl", "%.2f outside the valid 0.1-1.0 range", valve.FL)
	}
	if valve.XT != 0 && (valve.XT < 0.1 || valve.XT > 1.0) {
		f.fatal("xt", "%.2f outside the valid 0.1-1.0 range", valve.XT)
	}
	if valve.Fd != 0 && (valve.Fd < 0.1 || valve.Fd > 2.0) {
		f.warn("fd", "%.2f outside the typical 0.1-2.0 range", valve.Fd)
	}
	if valve.ValveDiameter > 0 && valve.PipeDiameter > 0 && valve.ValveDiameter > valve.PipeDiameter {
		f.fatal("valve_diameter", "exceeds pipe diameter")
	}
}
