package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"

	"github.com/procflow/sizer-cli/internal/model"
)

// processFlags is the operating point shared by the sizing commands.
type processFlags struct {
	P1   float64
	P2   float64
	Flow float64
	Temp float64
}

func (f *processFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.P1, "p1", 0, "inlet pressure (absolute)")
	fs.Float64Var(&f.P2, "p2", 0, "outlet pressure (absolute)")
	fs.Float64Var(&f.Flow, "flow", 0, "volumetric flow rate")
	fs.Float64Var(&f.Temp, "temp", 288.15, "temperature (absolute)")
}

func (f *processFlags) conditions() model.ProcessConditions {
	return model.ProcessConditions{
		InletPressure:  f.P1,
		OutletPressure: f.P2,
		Temperature:    f.Temp,
		FlowRate:       f.Flow,
	}
}

// valveFlags describe the trial valve.
type valveFlags struct {
	Style   string
	FL      float64
	XT      float64
	Fd      float64
	ValveD  float64
	PipeD   float64
	RatedCv float64
}

func (f *valveFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Style, "style", "globe", "valve style: globe, ball, butterfly")
	fs.Float64Var(&f.FL, "fl", 0, "liquid pressure recovery factor FL (0 = style default)")
	fs.Float64Var(&f.XT, "xt", 0, "pressure drop ratio factor xT (0 = style default)")
	fs.Float64Var(&f.Fd, "fd", 0, "style modifier Fd (0 = style default)")
	fs.Float64Var(&f.ValveD, "valve-d", 0, "valve body diameter, mm (0 = line size)")
	fs.Float64Var(&f.PipeD, "pipe-d", 0, "pipe internal diameter, mm")
	fs.Float64Var(&f.RatedCv, "rated-cv", 0, "rated Cv of the trial valve, for opening checks")
}

// styleDefaults are typical catalog coefficients used when a flag is left
// at zero.
var styleDefaults = map[model.ValveStyle]struct{ fl, xt, fd float64 }{
	model.Globe:     {0.90, 0.75, 1.0},
	model.Ball:      {0.60, 0.15, 1.0},
	model.Butterfly: {0.50, 0.30, 0.8},
}

func (f *valveFlags) geometry() (model.ValveGeometry, error) {
	style, ok := model.ParseStyle(f.Style)
	if !ok {
		return model.ValveGeometry{}, eris.Errorf("unknown valve style %q", f.Style)
	}
	defaults := styleDefaults[style]

	g := model.ValveGeometry{
		Style:         style,
		ValveDiameter: f.ValveD,
		PipeDiameter:  f.PipeD,
		FL:            f.FL,
		XT:            f.XT,
		Fd:            f.Fd,
		RatedCv:       f.RatedCv,
	}
	if g.FL == 0 {
		g.FL = defaults.fl
	}
	if g.XT == 0 {
		g.XT = defaults.xt
	}
	if g.Fd == 0 {
		g.Fd = defaults.fd
	}
	if g.ValveDiameter == 0 {
		g.ValveDiameter = g.PipeDiameter
	}
	return g, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
