// Package units pins the canonical unit systems and the matching ISA 75.01
// numerical constants. The engine never converts units: the caller picks one
// system, supplies every input in it, and the N-constants follow.
package units

import "github.com/rotisserie/eris"

// System selects the unit convention for a sizing case.
//
// Metric: flow m³/h, pressure bar absolute, density kg/m³, temperature K,
// diameter mm, viscosity cSt.
// Imperial: flow gpm (liquid) / scfh (gas), pressure psia, density lb/ft³,
// temperature °R, diameter in, viscosity cSt.
type System int

const (
	Metric System = iota
	Imperial
)

// String returns the system name used in configs and reports.
func (s System) String() string {
	switch s {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	default:
		return "unknown"
	}
}

// ParseSystem converts a config string into a System.
func ParseSystem(s string) (System, error) {
	switch s {
	case "metric", "":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	default:
		return Metric, eris.Errorf("units: unknown unit system %q", s)
	}
}

// Constants holds the ISA 75.01 / IEC 60534-2-1 sizing constants for one
// unit system. Values are normative data taken from the standard's tables;
// they must stay consistent with the System doc above.
type Constants struct {
	N1 float64 // liquid sizing
	N2 float64 // piping geometry (Cv/d² term)
	N4 float64 // valve Reynolds number
	N6 float64 // gas sizing, choked
	N7 float64 // gas sizing, mass flow
	N9 float64 // gas sizing, unchoked
}

var constantsBySystem = map[System]Constants{
	Metric: {
		N1: 0.0865,
		N2: 0.00214,
		N4: 7600.0,
		N6: 0.0373,
		N7: 0.00241,
		N9: 0.0948,
	},
	Imperial: {
		N1: 1.0,
		N2: 890.0,
		N4: 17300.0,
		N6: 63.3,
		N7: 1.0,
		N9: 1360.0,
	},
}

// For returns the sizing constants for the given unit system.
func For(s System) Constants {
	return constantsBySystem[s]
}

// Physical constants shared across modules.
const (
	// GasConstant is the universal gas constant in J/(kmol·K).
	GasConstant = 8314.0

	// WaterDensityMetric is the reference water density in kg/m³.
	WaterDensityMetric = 1000.0

	// WaterDensityImperial is the reference water density in lb/ft³.
	WaterDensityImperial = 62.4

	// AirDensityRef is the gas sizing density normalization ρ0 in kg/m³
	// (air at standard conditions).
	AirDensityRef = 1.225

	// AirMolecularWeight in kg/kmol.
	AirMolecularWeight = 28.97

	// StandardTempK is 0 °C expressed in kelvin.
	StandardTempK = 273.15
)

// WaterDensity returns the reference water density for specific-gravity
// normalization in the given system.
func WaterDensity(s System) float64 {
	if s == Imperial {
		return WaterDensityImperial
	}
	return WaterDensityMetric
}

// pipeID maps nominal pipe size (NPS label) to internal diameter, schedule 40.
type pipeID struct {
	mm float64
	in float64
}

var pipeTable = map[string]pipeID{
	`1/2"`: {mm: 15.8, in: 0.622},
	`3/4"`: {mm: 20.9, in: 0.824},
	`1"`:   {mm: 26.6, in: 1.049},
	`1.5"`: {mm: 40.9, in: 1.610},
	`2"`:   {mm: 52.5, in: 2.067},
	`3"`:   {mm: 77.9, in: 3.068},
	`4"`:   {mm: 102.3, in: 4.026},
	`6"`:   {mm: 154.1, in: 6.065},
	`8"`:   {mm: 202.7, in: 7.981},
	`10"`:  {mm: 254.5, in: 10.020},
	`12"`:  {mm: 303.2, in: 11.938},
}

// PipeDiameter returns the internal diameter of a nominal pipe size in the
// length unit of the given system (mm or in).
func PipeDiameter(nominal string, s System) (float64, error) {
	p, ok := pipeTable[nominal]
	if !ok {
		return 0, eris.Errorf("units: unknown nominal pipe size %q", nominal)
	}
	if s == Imperial {
		return p.in, nil
	}
	return p.mm, nil
}

// PipeSizes returns the known nominal sizes in ascending bore order.
func PipeSizes() []string {
	return []string{`1/2"`, `3/4"`, `1"`, `1.5"`, `2"`, `3"`, `4"`, `6"`, `8"`, `10"`, `12"`}
}
