// Package sweep runs a sizing study across operating scenarios: the
// standard min/normal/max ladder or a custom scenario file. Scenarios are
// independent, so they fan out on an errgroup; input errors are captured
// per scenario rather than aborting the study.
package sweep

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/units"
)

// Scenario is one operating point, expressed as multipliers on the base
// case flow and pressure drop.
type Scenario struct {
	Name       string  `yaml:"name" json:"name"`
	FlowFactor float64 `yaml:"flow_factor" json:"flow_factor"`
	DropFactor float64 `yaml:"drop_factor" json:"drop_factor"`
}

// StandardScenarios is the conventional three-point study: minimum
// controllable flow, normal, and maximum required flow.
var StandardScenarios = []Scenario{
	{Name: "min", FlowFactor: 0.3, DropFactor: 0.7},
	{Name: "normal", FlowFactor: 1.0, DropFactor: 1.0},
	{Name: "max", FlowFactor: 1.25, DropFactor: 1.4},
}

// scenarioFile is the YAML shape of a custom scenario list.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads a custom scenario file.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sweep: read %s", path)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "sweep: parse %s", path)
	}
	if len(f.Scenarios) == 0 {
		return nil, eris.Errorf("sweep: %s defines no scenarios", path)
	}
	for _, s := range f.Scenarios {
		if s.Name == "" {
			return nil, eris.Errorf("sweep: %s contains an unnamed scenario", path)
		}
		if s.FlowFactor <= 0 || s.DropFactor <= 0 {
			return nil, eris.Errorf("sweep: scenario %s has non-positive factors", s.Name)
		}
	}
	return f.Scenarios, nil
}

// Point is the outcome of one scenario. Err is set when the scenario's
// inputs were not computable; the rest of the study still completes.
type Point struct {
	Scenario Scenario             `json:"scenario"`
	Flow     float64              `json:"flow"`
	Drop     float64              `json:"drop"`
	Liquid   *sizing.LiquidResult `json:"liquid,omitempty"`
	Gas      *sizing.GasResult    `json:"gas,omitempty"`
	Err      string               `json:"error,omitempty"`
}

// Study is a completed sweep.
type Study struct {
	Points   []Point        `json:"points"`
	Rangeab  *Rangeability  `json:"rangeability,omitempty"`
	Warnings model.Warnings `json:"warnings,omitempty"`
}

// Rangeability summarizes the Cv span the valve must cover.
type Rangeability struct {
	MinCv    float64 `json:"min_cv"`
	MaxCv    float64 `json:"max_cv"`
	Turndown float64 `json:"turndown"`
}

// Runner executes sweeps with bounded concurrency.
type Runner struct {
	sys         units.System
	Concurrency int
}

// NewRunner builds a Runner for the unit system.
func NewRunner(sys units.System) *Runner {
	return &Runner{sys: sys, Concurrency: 4}
}

// Liquid sweeps a liquid base case across the scenarios.
func (r *Runner) Liquid(ctx context.Context, base model.ProcessConditions, fluid model.LiquidProperties, valve model.ValveGeometry, scenarios []Scenario) (*Study, error) {
	return r.run(ctx, base, scenarios, func(ctx context.Context, proc model.ProcessConditions, pt *Point) error {
		res, err := sizing.NewLiquid(r.sys).Size(proc, fluid, valve)
		if err != nil {
			if sizing.IsInputError(err) {
				pt.Err = err.Error()
				return nil
			}
			return err
		}
		pt.Liquid = res
		return nil
	})
}

// Gas sweeps a gas base case across the scenarios.
func (r *Runner) Gas(ctx context.Context, base model.ProcessConditions, gas model.GasProperties, valve model.ValveGeometry, scenarios []Scenario) (*Study, error) {
	return r.run(ctx, base, scenarios, func(ctx context.Context, proc model.ProcessConditions, pt *Point) error {
		res, err := sizing.NewGas(r.sys).Size(proc, gas, valve)
		if err != nil {
			if sizing.IsInputError(err) {
				pt.Err = err.Error()
				return nil
			}
			return err
		}
		pt.Gas = res
		return nil
	})
}

func (r *Runner) run(ctx context.Context, base model.ProcessConditions, scenarios []Scenario, size func(context.Context, model.ProcessConditions, *Point) error) (*Study, error) {
	if len(scenarios) == 0 {
		scenarios = StandardScenarios
	}

	study := &Study{Points: make([]Point, len(scenarios))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := r.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for i, sc := range scenarios {
		g.Go(func() error {
			proc := base
			proc.FlowRate = base.FlowRate * sc.FlowFactor
			drop := base.Drop() * sc.DropFactor
			if drop >= proc.InletPressure {
				// The scaled drop cannot exceed the inlet; clamp the
				// outlet just above absolute zero and let validation
				// flag the case.
				drop = proc.InletPressure * 0.99
			}
			proc.OutletPressure = proc.InletPressure - drop

			pt := Point{Scenario: sc, Flow: proc.FlowRate, Drop: drop}
			if err := size(gctx, proc, &pt); err != nil {
				return err
			}

			mu.Lock()
			study.Points[i] = pt
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "sweep: run")
	}

	study.Rangeab = rangeability(study.Points)
	annotate(study)

	zap.L().Debug("sweep: study complete",
		zap.Int("scenarios", len(scenarios)),
		zap.Int("failed", failedCount(study.Points)),
	)
	return study, nil
}

func rangeability(points []Point) *Rangeability {
	var cvs []float64
	for _, pt := range points {
		switch {
		case pt.Liquid != nil:
			cvs = append(cvs, pt.Liquid.CvRequired)
		case pt.Gas != nil:
			cvs = append(cvs, pt.Gas.CvRequired)
		}
	}
	if len(cvs) < 2 {
		return nil
	}
	sort.Float64s(cvs)
	r := &Rangeability{MinCv: cvs[0], MaxCv: cvs[len(cvs)-1]}
	if r.MinCv > 0 {
		r.Turndown = r.MaxCv / r.MinCv
	}
	return r
}

func annotate(study *Study) {
	if n := failedCount(study.Points); n > 0 {
		study.Warnings.Add("scenario-failures", "one or more scenarios were not computable; see per-point errors")
	}
	if study.Rangeab != nil && study.Rangeab.Turndown > 50 {
		study.Warnings.Add("wide-turndown", "required Cv range exceeds 50:1; consider split-range valves")
	}
}

func failedCount(points []Point) int {
	n := 0
	for _, pt := range points {
		if pt.Err != "" {
			n++
		}
	}
	return n
}
