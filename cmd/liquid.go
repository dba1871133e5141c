package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/sizing"
	"github.com/procflow/sizer-cli/internal/validate"
)

var (
	liquidProc     processFlags
	liquidValve    valveFlags
	liquidDensity  float64
	liquidPv       float64
	liquidPc       float64
	liquidVisc     float64
	liquidJSON     bool
	liquidNoChecks bool
)

var liquidCmd = &cobra.Command{
	Use:   "liquid",
	Short: "Size a valve for liquid service per ISA 75.01",
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := unitSystem()
		if err != nil {
			return err
		}

		proc := liquidProc.conditions()
		fluid := model.LiquidProperties{
			Density:          liquidDensity,
			VaporPressure:    liquidPv,
			CriticalPressure: liquidPc,
			Viscosity:        liquidVisc,
		}
		valve, err := liquidValve.geometry()
		if err != nil {
			return err
		}

		if !liquidNoChecks {
			findings := validate.Liquid(proc, fluid, valve)
			if err := findings.Err(); err != nil {
				return err
			}
			for _, w := range findings.Warnings() {
				zap.L().Warn("input check", zap.String("tag", w.Tag), zap.String("detail", w.Message))
			}
		}

		engine := sizing.NewLiquid(sys)
		engine.MaxIterations = cfg.Sizing.MaxIterations
		engine.Tolerance = cfg.Sizing.Tolerance

		res, err := engine.Size(proc, fluid, valve)
		if err != nil {
			return err
		}

		if liquidJSON {
			return printJSON(res)
		}

		fmt.Fprintf(os.Stdout, "Required Cv: %.1f  (basic %.1f, Fp %.3f, Fr %.3f)\n",
			res.CvRequired, res.CvBasic, res.Fp, res.Reynolds.Fr)
		fmt.Fprintf(os.Stdout, "Regime: %s   allowable drop %.2f, effective drop %.2f\n",
			res.Regime, res.AllowableDrop, res.EffectiveDrop)
		if res.OpeningPercent > 0 {
			fmt.Fprintf(os.Stdout, "Opening: %.0f%% of rated Cv\n", res.OpeningPercent)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

func init() {
	liquidProc.register(liquidCmd.Flags())
	liquidValve.register(liquidCmd.Flags())
	liquidCmd.Flags().Float64Var(&liquidDensity, "density", 998, "liquid density, kg/m3")
	liquidCmd.Flags().Float64Var(&liquidPv, "pv", 0.032, "vapor pressure at flowing temperature")
	liquidCmd.Flags().Float64Var(&liquidPc, "pc", 221.2, "thermodynamic critical pressure")
	liquidCmd.Flags().Float64Var(&liquidVisc, "viscosity", 1.0, "kinematic viscosity, cSt")
	liquidCmd.Flags().BoolVar(&liquidJSON, "json", false, "emit JSON")
	liquidCmd.Flags().BoolVar(&liquidNoChecks, "no-checks", false, "skip input screening")
	rootCmd.AddCommand(liquidCmd)
}
