// Package noise implements the IEC 60534-8-3 aerodynamic noise chain for
// gas service: internal sound power, pipe-wall transmission loss, and
// external sound pressure level at a listener distance. Every intermediate
// quantity is reported so the dominant stage can be diagnosed.
//
// All inputs are metric (bar abs, K, m³/h, mm); the chain carries SI unit
// factors internally.
package noise

import (
	"math"

	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
)

// steelDensity is the pipe wall material density in kg/m³ used by the mass
// law. Carbon steel pipe is assumed.
const steelDensity = 7850.0

// wallRatioBySchedule maps pipe schedule to wall thickness as a fraction of
// bore, used when no explicit wall thickness is supplied.
var wallRatioBySchedule = map[string]float64{
	"SCH10":  0.03,
	"SCH20":  0.05,
	"SCH40":  0.08,
	"SCH80":  0.12,
	"SCH160": 0.20,
	"SCHXXS": 0.25,
}

// Params are the inputs of a noise prediction. Cv comes from a gas sizing
// result; Distance defaults to 1 m when zero.
type Params struct {
	Proc          model.ProcessConditions
	Gas           model.GasProperties
	Cv            float64
	PipeDiameter  float64 // mm, internal
	WallThickness float64 // mm; 0 selects the schedule ratio
	Schedule      string  // e.g. "SCH40"; empty means SCH40
	Distance      float64 // m from pipe surface
}

// Result is the staged noise prediction.
type Result struct {
	MassFlow            float64        `json:"mass_flow"`           // kg/s
	MechanicalPower     float64        `json:"mechanical_power"`    // W
	AcousticEfficiency  float64        `json:"acoustic_efficiency"` // fraction of Wm radiated
	AcousticPower       float64        `json:"acoustic_power"`      // W
	SoundPower          float64        `json:"sound_power"`         // Lw, dB re 1 pW
	PeakFrequency       float64        `json:"peak_frequency"`      // Hz
	MachNumber          float64        `json:"mach_number"`
	WallThickness       float64        `json:"wall_thickness"` // m, as used
	MassLawTL           float64        `json:"mass_law_tl"`    // dB
	CylinderCorrection  float64        `json:"cylinder_correction"`
	FrequencyCorrection float64        `json:"frequency_correction"`
	TransmissionLoss    float64        `json:"transmission_loss"` // dB, total
	SPL1m               float64        `json:"spl_1m"`
	DistanceCorrection  float64        `json:"distance_correction"`
	SPLAtDistance       float64        `json:"spl_at_distance"`
	Distance            float64        `json:"distance"`
	Assessment          string         `json:"assessment"`
	Warnings            model.Warnings `json:"warnings,omitempty"`
}

// Predict runs the noise chain for one gas operating point.
func Predict(p Params) (*Result, error) {
	if p.Proc.InletPressure <= 0 {
		return nil, &sizing.InputError{Quantity: "inlet_pressure", Value: p.Proc.InletPressure, Stage: "noise: stream power"}
	}
	if p.Proc.OutletPressure <= 0 || p.Proc.OutletPressure >= p.Proc.InletPressure {
		return nil, &sizing.InputError{Quantity: "outlet_pressure", Value: p.Proc.OutletPressure, Stage: "noise: stream power"}
	}
	if p.Proc.Temperature <= 0 {
		return nil, &sizing.InputError{Quantity: "temperature", Value: p.Proc.Temperature, Stage: "noise: inlet density"}
	}
	if p.Proc.FlowRate <= 0 {
		return nil, &sizing.InputError{Quantity: "flow_rate", Value: p.Proc.FlowRate, Stage: "noise: mass flow"}
	}
	if p.Gas.MolecularWeight <= 0 || p.Gas.SpecificHeatRatio <= 1 {
		return nil, &sizing.InputError{Quantity: "molecular_weight", Value: p.Gas.MolecularWeight, Stage: "noise: sonic velocity"}
	}
	if p.Cv <= 0 {
		return nil, &sizing.InputError{Quantity: "cv", Value: p.Cv, Stage: "noise: jet dimension"}
	}
	if p.PipeDiameter <= 0 {
		return nil, &sizing.InputError{Quantity: "pipe_diameter", Value: p.PipeDiameter, Stage: "noise: transmission loss"}
	}

	distance := p.Distance
	if distance <= 0 {
		distance = 1
	}

	res := &Result{Distance: distance}
	internalSoundPower(res, p)
	transmissionLoss(res, p)

	// SPL 1 m from the pipe surface; the -8 dB folds the cylindrical
	// radiating geometry at standard atmospheric impedance.
	res.SPL1m = res.SoundPower - res.TransmissionLoss - 8
	res.DistanceCorrection = 10 * math.Log10(distance)
	res.SPLAtDistance = res.SPL1m - res.DistanceCorrection

	assess(res)

	zap.L().Debug("noise: prediction complete",
		zap.Float64("lw", res.SoundPower),
		zap.Float64("tl", res.TransmissionLoss),
		zap.Float64("spl", res.SPLAtDistance),
		zap.String("assessment", res.Assessment),
	)
	return res, nil
}

// internalSoundPower computes the mechanical stream power, the acoustic
// efficiency from the jet Mach number, and the resulting internal Lw plus
// its Strouhal peak frequency.
func internalSoundPower(res *Result, p Params) {
	density := (p.Proc.InletPressure * 1e5 * p.Gas.MolecularWeight) /
		(units.GasConstant * p.Proc.Temperature)
	res.MassFlow = p.Proc.FlowRate * density / 3600.0

	dropPa := p.Proc.Drop() * 1e5
	res.MechanicalPower = res.MassFlow * dropPa / density

	res.MachNumber = exitMach(p)
	if res.MachNumber > 0.3 {
		res.AcousticEfficiency = 0.001 * math.Pow(res.MachNumber, 3)
	} else {
		res.AcousticEfficiency = 0.0001
	}
	res.AcousticEfficiency = math.Min(0.01, res.AcousticEfficiency)

	res.AcousticPower = res.AcousticEfficiency * res.MechanicalPower
	if res.AcousticPower > 1e-15 {
		res.SoundPower = 10 * math.Log10(res.AcousticPower/1e-12)
	}

	// Strouhal peak: f = St·V/D with St ≈ 0.2 and the jet dimension
	// estimated from the Cv flow area.
	velocity := math.Sqrt(2 * dropPa / density)
	jetDim := math.Sqrt(p.Cv * 0.000645 / 29.9)
	freq := 0.2 * velocity / math.Max(jetDim, 0.001)
	res.PeakFrequency = math.Max(100, math.Min(10000, freq))
}

// exitMach estimates the valve exit Mach number from isentropic relations,
// saturating at sonic below the perfect-gas critical pressure ratio.
func exitMach(p Params) float64 {
	k := p.Gas.SpecificHeatRatio
	a := math.Sqrt(k * units.GasConstant * p.Proc.Temperature / p.Gas.MolecularWeight)
	ratio := p.Proc.OutletPressure / p.Proc.InletPressure

	if ratio < 0.528 {
		return 1
	}
	v := a * math.Sqrt(2/(k-1)*(math.Pow(ratio, -(k-1)/k)-1))
	return v / a
}

// transmissionLoss computes the pipe-wall loss: flat-wall mass law plus a
// cylindrical-shell correction and a coarse frequency correction.
func transmissionLoss(res *Result, p Params) {
	diameterM := p.PipeDiameter / 1000.0

	if p.WallThickness > 0 {
		res.WallThickness = p.WallThickness / 1000.0
	} else {
		schedule := p.Schedule
		if schedule == "" {
			schedule = "SCH40"
		}
		ratio, ok := wallRatioBySchedule[schedule]
		if !ok {
			ratio = wallRatioBySchedule["SCH40"]
		}
		res.WallThickness = diameterM * ratio
	}

	surfaceMass := res.WallThickness * steelDensity
	res.MassLawTL = 20*math.Log10(res.PeakFrequency*surfaceMass) - 47
	res.CylinderCorrection = -10*math.Log10(diameterM) + 5

	switch {
	case res.PeakFrequency < 500:
		res.FrequencyCorrection = -5
	case res.PeakFrequency > 4000:
		res.FrequencyCorrection = 2
	}

	res.TransmissionLoss = math.Max(0, res.MassLawTL+res.CylinderCorrection) + res.FrequencyCorrection
}

// assess grades the external level against common exposure limits.
func assess(res *Result) {
	switch {
	case res.SPLAtDistance >= 90:
		res.Assessment = "critical"
		res.Warnings.Add("noise-critical", "external level at or above 90 dBA; immediate mitigation required")
	case res.SPLAtDistance >= 85:
		res.Assessment = "high"
		res.Warnings.Add("noise-high", "external level at or above 85 dBA; mitigation recommended")
	case res.SPLAtDistance >= 75:
		res.Assessment = "moderate"
	default:
		res.Assessment = "acceptable"
	}
	if res.MachNumber >= 1 {
		res.Warnings.Add("sonic-jet", "valve exit at sonic velocity; screaming trim likely")
	}
}
