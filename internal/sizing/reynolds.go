package sizing

import (
	"math"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/units"
)

// frCurve is the style-specific viscous correction curve. Below laminarUpper
// the correction follows Fr = laminarCoeff·Rev^0.67; at or above turbulent
// the correction vanishes (Fr = 1); between the two, Fr interpolates
// linearly in log(Rev).
type frCurve struct {
	laminarUpper float64
	turbulent    float64
	laminarCoeff float64
}

// frCurves holds one curve per valve style. Rotary styles leave the viscous
// regime earlier than globe trim, so their turbulent thresholds sit lower.
var frCurves = map[model.ValveStyle]frCurve{
	model.Globe:     {laminarUpper: 56, turbulent: 40000, laminarCoeff: 0.019},
	model.Ball:      {laminarUpper: 56, turbulent: 20000, laminarCoeff: 0.019},
	model.Butterfly: {laminarUpper: 56, turbulent: 10000, laminarCoeff: 0.019},
}

// FlowRegime labels the valve Reynolds number band a result landed in.
type FlowRegime string

const (
	RegimeLaminar      FlowRegime = "laminar"
	RegimeTransitional FlowRegime = "transitional"
	RegimeTurbulent    FlowRegime = "turbulent"
)

// ReynoldsParams carries the inputs of the viscous correction. Zero
// MaxIterations and Tolerance select the defaults (10 iterations, 0.1%
// relative change in Cv).
type ReynoldsParams struct {
	FlowRate        float64 // case flow units
	InitialCv       float64 // geometry-corrected turbulent Cv
	Viscosity       float64 // kinematic, cSt
	Fd              float64 // valve style modifier
	PipeDiameter    float64 // case length units
	SpecificGravity float64
	MaxIterations   int
	Tolerance       float64
}

// ReynoldsResult is the outcome of the fixed-point Fr iteration. Converged
// is false when the iteration cap was reached first; the carried values are
// then the best estimate, not garbage, and the caller decides whether to
// accept them.
type ReynoldsResult struct {
	Reynolds    float64        `json:"reynolds"`
	Fr          float64        `json:"fr"`
	CvCorrected float64        `json:"cv_corrected"`
	Iterations  int            `json:"iterations"`
	Converged   bool           `json:"converged"`
	Regime      FlowRegime     `json:"regime"`
	Warnings    model.Warnings `json:"warnings,omitempty"`
}

// CorrectReynolds runs the valve Reynolds number correction for a trial Cv.
// Because Rev depends on Cv and the corrected Cv depends on Fr, the two are
// iterated to a fixed point:
//
//	Rev = N4·Fd·Q·√SG / (N2·D^1.25·ν·√Cv)
//	Cv' = Cv_turbulent / Fr(Rev)
//
// until successive Cv estimates agree within the relative tolerance or the
// iteration cap is hit.
func CorrectReynolds(p ReynoldsParams, style model.ValveStyle, c units.Constants) (*ReynoldsResult, error) {
	curve, ok := frCurves[style]
	if !ok {
		return nil, &ConfigError{Reason: "no Reynolds correction curve for valve style " + style.String()}
	}
	if p.FlowRate <= 0 {
		return nil, inputErr("flow_rate", p.FlowRate, "reynolds number")
	}
	if p.InitialCv <= 0 {
		return nil, inputErr("initial_cv", p.InitialCv, "reynolds number")
	}
	if p.Viscosity <= 0 {
		return nil, inputErr("viscosity", p.Viscosity, "reynolds number")
	}
	if p.Fd <= 0 {
		return nil, inputErr("fd", p.Fd, "reynolds number")
	}
	if p.PipeDiameter <= 0 {
		return nil, inputErr("pipe_diameter", p.PipeDiameter, "reynolds number")
	}
	if p.SpecificGravity <= 0 {
		return nil, inputErr("specific_gravity", p.SpecificGravity, "reynolds number")
	}

	maxIter := p.MaxIterations
	if maxIter <= 0 {
		maxIter = 10
	}
	tol := p.Tolerance
	if tol <= 0 {
		tol = 1e-3
	}

	res := &ReynoldsResult{Fr: 1, CvCorrected: p.InitialCv}
	numer := c.N4 * p.Fd * p.FlowRate * math.Sqrt(p.SpecificGravity)
	denomFixed := c.N2 * math.Pow(p.PipeDiameter, 1.25) * p.Viscosity

	cv := p.InitialCv
	for i := 0; i < maxIter; i++ {
		res.Iterations = i + 1
		res.Reynolds = numer / (denomFixed * math.Sqrt(cv))
		res.Fr = frFromReynolds(res.Reynolds, curve)

		next := p.InitialCv / res.Fr
		change := math.Abs(next-cv) / cv
		cv = next
		res.CvCorrected = cv
		if i > 0 && change < tol {
			res.Converged = true
			break
		}
	}
	if !res.Converged {
		res.Warnings.Add("unconverged",
			"Reynolds correction did not converge within the iteration cap; result is the last estimate")
	}

	res.Regime = classifyRegime(res.Reynolds, curve)
	addReynoldsWarnings(res, p)
	return res, nil
}

// frFromReynolds evaluates a style curve at the given valve Reynolds number.
// The result is 1 exactly at and above the turbulent threshold and strictly
// below 1 underneath it, decreasing with Rev.
func frFromReynolds(rev float64, curve frCurve) float64 {
	switch {
	case rev >= curve.turbulent:
		return 1
	case rev <= curve.laminarUpper:
		fr := curve.laminarCoeff * math.Pow(math.Max(rev, 1), 0.67)
		return math.Max(fr, 0.01)
	default:
		frLam := curve.laminarCoeff * math.Pow(curve.laminarUpper, 0.67)
		t := (math.Log10(rev) - math.Log10(curve.laminarUpper)) /
			(math.Log10(curve.turbulent) - math.Log10(curve.laminarUpper))
		return frLam + t*(1-frLam)
	}
}

func classifyRegime(rev float64, curve frCurve) FlowRegime {
	switch {
	case rev <= curve.laminarUpper:
		return RegimeLaminar
	case rev < curve.turbulent:
		return RegimeTransitional
	default:
		return RegimeTurbulent
	}
}

func addReynoldsWarnings(res *ReynoldsResult, p ReynoldsParams) {
	if res.Regime == RegimeLaminar {
		res.Warnings.Add("laminar-flow", "laminar valve flow; standard turbulent equations are being corrected heavily")
	}
	if res.Fr < 0.5 {
		res.Warnings.Add("low-fr", "Fr below 0.5 indicates dominant viscous effects; verify viscosity data")
	}
	if corr := res.CvCorrected / p.InitialCv; corr > 1.5 {
		res.Warnings.Add("large-correction", "viscous correction enlarges the valve by more than 50%")
	}
}
