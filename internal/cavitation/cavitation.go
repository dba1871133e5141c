// Package cavitation implements the ISA RP75.23 five-level sigma
// methodology: service sigma, Pressure/Size Scale Effect corrections of the
// valve's reference sigmas, and classification on the ordered severity
// ladder.
package cavitation

import (
	"math"

	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sizing"
)

// Level is the classified cavitation severity. Levels are totally ordered;
// a higher value is strictly more severe.
type Level int

const (
	None Level = iota
	Incipient
	Constant
	Damage
	Choking
	ManufacturerLimit
)

var levelNames = [...]string{"none", "incipient", "constant", "damage", "choking", "manufacturer-limit"}

// String returns the level name used in reports.
func (l Level) String() string {
	if l < None || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// mitigations maps severity to the recommended mitigation tag.
var mitigations = [...]string{
	None:              "none",
	Incipient:         "standard-trim",
	Constant:          "hardened-trim",
	Damage:            "anti-cavitation-trim",
	Choking:           "multistage-trim",
	ManufacturerLimit: "redesign-required",
}

// Thresholds holds one reference (or scaled) sigma per severity level.
// A well-formed table is strictly decreasing: incipient carries the largest
// sigma (first cavitation symptoms appear with plenty of suppression
// pressure left) and the manufacturer limit the smallest.
type Thresholds struct {
	Incipient    float64 `json:"incipient" yaml:"incipient"`
	Constant     float64 `json:"constant" yaml:"constant"`
	Damage       float64 `json:"damage" yaml:"damage"`
	Choking      float64 `json:"choking" yaml:"choking"`
	Manufacturer float64 `json:"manufacturer" yaml:"manufacturer"`
}

// DefaultThresholds are typical globe-valve reference sigmas. The
// manufacturer limit models the vendor's absolute minimum allowable service
// sigma, below even the choking rung.
var DefaultThresholds = Thresholds{
	Incipient:    15.0,
	Constant:     8.0,
	Damage:       4.0,
	Choking:      2.0,
	Manufacturer: 1.5,
}

// descending returns the thresholds in severity order, Incipient first.
func (t Thresholds) descending() [5]float64 {
	return [5]float64{t.Incipient, t.Constant, t.Damage, t.Choking, t.Manufacturer}
}

// monotonic reports whether the table is strictly decreasing in sigma.
func (t Thresholds) monotonic() bool {
	d := t.descending()
	for i := 1; i < len(d); i++ {
		if d[i] >= d[i-1] {
			return false
		}
	}
	return d[len(d)-1] > 0
}

// scaleExponents holds the per-level PSE and SSE exponents of one valve
// style. Rotary styles scale harder with both size and pressure.
type scaleExponents struct {
	pse [5]float64 // severity order, Incipient first
	sse [5]float64
}

var exponentsByStyle = map[model.ValveStyle]scaleExponents{
	model.Globe: {
		pse: [5]float64{0.10, 0.15, 0.20, 0.25, 0.15},
		sse: [5]float64{0.05, 0.08, 0.12, 0.15, 0.08},
	},
	model.Ball: {
		pse: [5]float64{0.15, 0.20, 0.25, 0.30, 0.20},
		sse: [5]float64{0.08, 0.12, 0.15, 0.20, 0.12},
	},
	model.Butterfly: {
		pse: [5]float64{0.20, 0.25, 0.30, 0.35, 0.25},
		sse: [5]float64{0.10, 0.15, 0.20, 0.25, 0.15},
	},
}

// Params are the inputs of a cavitation assessment. Zero Reference selects
// DefaultThresholds; zero ReferenceSize/ReferenceDrop select the customary
// 100 mm / 100 bar test basis.
type Params struct {
	Proc          model.ProcessConditions
	VaporPressure float64
	Valve         model.ValveGeometry
	Reference     Thresholds
	ReferenceSize float64
	ReferenceDrop float64
}

// LevelScaling reports the scaling applied to one reference sigma.
type LevelScaling struct {
	Reference float64 `json:"reference"`
	PSE       float64 `json:"pse"`
	SSE       float64 `json:"sse"`
	Scaled    float64 `json:"scaled"`
}

// Assessment is the full cavitation analysis result.
type Assessment struct {
	SigmaService   float64                 `json:"sigma_service"`
	SigmaFL        float64                 `json:"sigma_fl"` // FL-referenced sigma, reported for comparison
	Scaled         Thresholds              `json:"scaled"`
	Scaling        map[string]LevelScaling `json:"scaling"`
	Level          Level                   `json:"level"`
	LevelName      string                  `json:"level_name"`
	Margin         float64                 `json:"margin"` // σ minus the next more severe scaled threshold
	Mitigation     string                  `json:"mitigation"`
	AllowableDrops Thresholds              `json:"allowable_drops"` // ΔP that would hit each level
	Warnings       model.Warnings          `json:"warnings,omitempty"`
}

// Assess runs the RP75.23 analysis. It never fails on process values that
// sizing already accepted; the only fatal condition is a malformed
// reference table (a configuration error, not an input error).
func Assess(p Params) (*Assessment, error) {
	drop := p.Proc.Drop()
	if drop <= 0 {
		return nil, &sizing.InputError{Quantity: "delta_p", Value: drop, Stage: "service sigma"}
	}
	suppression := p.Proc.InletPressure - p.VaporPressure
	if suppression <= 0 {
		return nil, &sizing.InputError{Quantity: "vapor_pressure", Value: p.VaporPressure, Stage: "service sigma: Pv >= P1"}
	}

	ref := p.Reference
	if ref == (Thresholds{}) {
		ref = DefaultThresholds
	}
	if !ref.monotonic() {
		return nil, &sizing.ConfigError{Reason: "cavitation reference sigmas are not strictly decreasing"}
	}
	exps, ok := exponentsByStyle[p.Valve.Style]
	if !ok {
		return nil, &sizing.ConfigError{Reason: "no cavitation scaling exponents for valve style " + p.Valve.Style.String()}
	}

	refSize := p.ReferenceSize
	if refSize <= 0 {
		refSize = 100
	}
	refDrop := p.ReferenceDrop
	if refDrop <= 0 {
		refDrop = 100
	}

	a := &Assessment{
		SigmaService: suppression / drop,
		Scaling:      make(map[string]LevelScaling, 5),
	}
	a.SigmaFL = a.SigmaService * p.Valve.FL

	// Scale each reference sigma: σ_scaled = (σ_ref·SSE - 1)·PSE + 1.
	refs := ref.descending()
	var scaled [5]float64
	for i := range refs {
		pse := boundedPow(suppression/refDrop, exps.pse[i], 0.5, 2.0)
		sse := boundedPow(p.Valve.ValveDiameter/refSize, exps.sse[i], 0.7, 1.5)
		scaled[i] = (refs[i]*sse-1)*pse + 1
		a.Scaling[Level(i+1).String()] = LevelScaling{
			Reference: refs[i],
			PSE:       pse,
			SSE:       sse,
			Scaled:    scaled[i],
		}
	}
	a.Scaled = Thresholds{
		Incipient:    scaled[0],
		Constant:     scaled[1],
		Damage:       scaled[2],
		Choking:      scaled[3],
		Manufacturer: scaled[4],
	}
	if !a.Scaled.monotonic() {
		return nil, &sizing.ConfigError{Reason: "scale effects produced a non-monotonic sigma ladder; check exponent and reference data"}
	}

	a.Level = classify(a.SigmaService, scaled)
	a.LevelName = a.Level.String()
	a.Mitigation = mitigations[a.Level]
	a.Margin = margin(a.SigmaService, a.Level, scaled)

	// ΔP that would put the service sigma exactly on each rung:
	// from σ = (P1-Pv)/ΔP, ΔP_level = (P1-Pv)/σ_level.
	a.AllowableDrops = Thresholds{
		Incipient:    suppression / scaled[0],
		Constant:     suppression / scaled[1],
		Damage:       suppression / scaled[2],
		Choking:      suppression / scaled[3],
		Manufacturer: suppression / scaled[4],
	}

	if a.Level >= Damage {
		a.Warnings.Add("cavitation-damage", "classified at or beyond the damage level; trim damage expected without mitigation")
	}
	if a.Level == None && a.SigmaService-scaled[0] < 0.1*scaled[0] {
		a.Warnings.Add("incipient-margin", "service sigma within 10% of the incipient threshold")
	}

	zap.L().Debug("cavitation: assessment complete",
		zap.Float64("sigma_service", a.SigmaService),
		zap.String("level", a.LevelName),
		zap.Float64("margin", a.Margin),
	)
	return a, nil
}

// classify finds the deepest scaled threshold the service sigma fell below.
// Sigma at or above the incipient threshold is level None.
func classify(sigma float64, scaled [5]float64) Level {
	level := None
	for i, threshold := range scaled {
		if sigma < threshold {
			level = Level(i + 1)
		} else {
			break
		}
	}
	return level
}

// margin is sigma minus the next more severe threshold: the headroom left
// before the classification regresses. Below the last rung it is sigma
// minus the manufacturer limit, i.e. negative.
func margin(sigma float64, level Level, scaled [5]float64) float64 {
	if level == ManufacturerLimit {
		return sigma - scaled[4]
	}
	return sigma - scaled[int(level)]
}

// boundedPow is (base)^exp clamped to [lo, hi], the standard's practical
// bounds on scale-effect extrapolation.
func boundedPow(base, exp, lo, hi float64) float64 {
	if base <= 0 {
		return 1
	}
	return math.Max(lo, math.Min(hi, math.Pow(base, exp)))
}
