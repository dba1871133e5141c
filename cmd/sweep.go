package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sweep"
)

var (
	sweepProc      processFlags
	sweepValve     valveFlags
	sweepPhase     string
	sweepScenarios string
	sweepDensity   float64
	sweepPv        float64
	sweepPc        float64
	sweepVisc      float64
	sweepMW        float64
	sweepK         float64
	sweepZ         float64
	sweepJSON      bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Size across min/normal/max scenarios or a custom scenario file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sys, err := unitSystem()
		if err != nil {
			return err
		}

		valve, err := sweepValve.geometry()
		if err != nil {
			return err
		}

		scenarios := sweep.StandardScenarios
		if sweepScenarios != "" {
			scenarios, err = sweep.LoadScenarios(sweepScenarios)
			if err != nil {
				return err
			}
		}

		runner := sweep.NewRunner(sys)
		runner.Concurrency = cfg.Sweep.Concurrency

		var study *sweep.Study
		switch sweepPhase {
		case "liquid":
			fluid := model.LiquidProperties{
				Density:          sweepDensity,
				VaporPressure:    sweepPv,
				CriticalPressure: sweepPc,
				Viscosity:        sweepVisc,
			}
			study, err = runner.Liquid(ctx, sweepProc.conditions(), fluid, valve, scenarios)
		case "gas":
			gas := model.GasProperties{
				MolecularWeight:   sweepMW,
				SpecificHeatRatio: sweepK,
				Compressibility:   sweepZ,
			}
			study, err = runner.Gas(ctx, sweepProc.conditions(), gas, valve, scenarios)
		default:
			return eris.Errorf("unknown phase %q: want liquid or gas", sweepPhase)
		}
		if err != nil {
			return err
		}

		if sweepJSON {
			return printJSON(study)
		}

		fmt.Fprintf(os.Stdout, "%-10s %12s %10s %10s %s\n", "SCENARIO", "FLOW", "DROP", "CV", "REGIME")
		for _, pt := range study.Points {
			switch {
			case pt.Err != "":
				fmt.Fprintf(os.Stdout, "%-10s %12.1f %10.2f %10s %s\n", pt.Scenario.Name, pt.Flow, pt.Drop, "-", pt.Err)
			case pt.Liquid != nil:
				fmt.Fprintf(os.Stdout, "%-10s %12.1f %10.2f %10.1f %s\n", pt.Scenario.Name, pt.Flow, pt.Drop, pt.Liquid.CvRequired, pt.Liquid.Regime)
			case pt.Gas != nil:
				fmt.Fprintf(os.Stdout, "%-10s %12.1f %10.2f %10.1f %s\n", pt.Scenario.Name, pt.Flow, pt.Drop, pt.Gas.CvRequired, pt.Gas.Regime)
			}
		}
		if study.Rangeab != nil {
			fmt.Fprintf(os.Stdout, "\nCv range %.1f to %.1f  (turndown %.1f:1)\n",
				study.Rangeab.MinCv, study.Rangeab.MaxCv, study.Rangeab.Turndown)
		}
		for _, w := range study.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

func init() {
	sweepProc.register(sweepCmd.Flags())
	sweepValve.register(sweepCmd.Flags())
	sweepCmd.Flags().StringVar(&sweepPhase, "phase", "liquid", "fluid phase: liquid or gas")
	sweepCmd.Flags().StringVar(&sweepScenarios, "scenarios", "", "YAML scenario file (default: min/normal/max)")
	sweepCmd.Flags().Float64Var(&sweepDensity, "density", 998, "liquid density, kg/m3")
	sweepCmd.Flags().Float64Var(&sweepPv, "pv", 0.032, "vapor pressure at flowing temperature")
	sweepCmd.Flags().Float64Var(&sweepPc, "pc", 221.2, "thermodynamic critical pressure")
	sweepCmd.Flags().Float64Var(&sweepVisc, "viscosity", 1.0, "kinematic viscosity, cSt")
	sweepCmd.Flags().Float64Var(&sweepMW, "mw", 28.97, "molecular weight, kg/kmol")
	sweepCmd.Flags().Float64Var(&sweepK, "k", 1.40, "specific heat ratio Cp/Cv")
	sweepCmd.Flags().Float64Var(&sweepZ, "z", 1.0, "compressibility factor")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(sweepCmd)
}
