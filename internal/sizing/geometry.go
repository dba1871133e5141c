package sizing

import (
	"math"

	"github.com/procflow/sizer-cli/internal/units"
)

// FittingLosses returns the fitting loss sum ΣK for a valve of diameter d
// installed between concentric reducers in a pipe of diameter D. Both
// diameters share the case's length unit. A line-size valve (d = D) has no
// fittings and ΣK = 0.
//
// ΣK = K1 + K2 + KB1 - KB2 where K1 = 0.5(1-(d/D)²)², K2 = 1.0(1-(d/D)²)²
// and the Bernoulli terms KB1, KB2 cancel for equal upstream and downstream
// pipe diameters.
func FittingLosses(d, D float64) (float64, error) {
	if d <= 0 {
		return 0, inputErr("valve_diameter", d, "fitting losses")
	}
	if D <= 0 {
		return 0, inputErr("pipe_diameter", D, "fitting losses")
	}
	if d > D {
		return 0, inputErr("valve_diameter", d, "fitting losses: valve larger than pipe")
	}
	if d == D {
		return 0, nil
	}

	ratio := (d / D) * (d / D)
	k1 := 0.5 * (1 - ratio) * (1 - ratio)
	k2 := (1 - ratio) * (1 - ratio)
	return k1 + k2, nil
}

// PipingFactor computes the piping geometry factor Fp for a trial Cv:
//
//	Fp = [1 + (ΣK/N2)·(Cv/d²)²]^(-1/2)
//
// Fp is 1 exactly when ΣK is 0. Because the trial Cv itself depends on Fp,
// callers iterate this together with the basic sizing formula.
func PipingFactor(sumK, trialCv, d float64, c units.Constants) (float64, error) {
	if sumK < 0 {
		return 0, inputErr("fitting_loss_sum", sumK, "piping factor")
	}
	if sumK == 0 {
		return 1, nil
	}
	if d <= 0 {
		return 0, inputErr("valve_diameter", d, "piping factor")
	}
	if trialCv <= 0 {
		return 0, inputErr("trial_cv", trialCv, "piping factor")
	}

	ratio := trialCv / (d * d)
	return 1 / math.Sqrt(1+(sumK/c.N2)*ratio*ratio), nil
}

// resolvePiping iterates Fp and the basic Cv to a joint fixed point. cvAt
// maps an Fp value to the matching geometry-corrected Cv. For a line-size
// valve this returns (1, cvAt(1)) without iterating.
func resolvePiping(valveD, pipeD float64, c units.Constants, cvAt func(fp float64) float64) (fp, cv float64, err error) {
	sumK, err := FittingLosses(valveD, pipeD)
	if err != nil {
		return 0, 0, err
	}

	fp = 1
	cv = cvAt(fp)
	if sumK == 0 {
		return fp, cv, nil
	}

	for i := 0; i < 5; i++ {
		next, err := PipingFactor(sumK, cv, valveD, c)
		if err != nil {
			return 0, 0, err
		}
		cvNext := cvAt(next)
		done := math.Abs(cvNext-cv) <= 1e-4*cv
		fp, cv = next, cvNext
		if done {
			break
		}
	}
	return fp, cv, nil
}
