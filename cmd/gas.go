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
	gasProc     processFlags
	gasValve    valveFlags
	gasMW       float64
	gasK        float64
	gasZ        float64
	gasJSON     bool
	gasNoChecks bool
)

var gasCmd = &cobra.Command{
	Use:   "gas",
	Short: "Size a valve for gas or vapor service per ISA 75.01",
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := unitSystem()
		if err != nil {
			return err
		}

		proc := gasProc.conditions()
		gas := model.GasProperties{
			MolecularWeight:   gasMW,
			SpecificHeatRatio: gasK,
			Compressibility:   gasZ,
		}
		valve, err := gasValve.geometry()
		if err != nil {
			return err
		}

		if !gasNoChecks {
			findings := validate.Gas(proc, gas, valve)
			if err := findings.Err(); err != nil {
				return err
			}
			for _, w := range findings.Warnings() {
				zap.L().Warn("input check", zap.String("tag", w.Tag), zap.String("detail", w.Message))
			}
		}

		res, err := sizing.NewGas(sys).Size(proc, gas, valve)
		if err != nil {
			return err
		}

		if gasJSON {
			return printJSON(res)
		}

		fmt.Fprintf(os.Stdout, "Required Cv: %.1f  (x %.3f, xT_eff %.3f, Y %.3f, Fp %.3f)\n",
			res.CvRequired, res.X, res.XTEff, res.Y, res.Fp)
		fmt.Fprintf(os.Stdout, "Regime: %s\n", res.Regime)
		if res.MachNumber > 0 {
			fmt.Fprintf(os.Stdout, "Outlet velocity: %.1f m/s (Mach %.2f)\n", res.ValveVelocity, res.MachNumber)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

func init() {
	gasProc.register(gasCmd.Flags())
	gasValve.register(gasCmd.Flags())
	gasCmd.Flags().Float64Var(&gasMW, "mw", 28.97, "molecular weight, kg/kmol")
	gasCmd.Flags().Float64Var(&gasK, "k", 1.40, "specific heat ratio Cp/Cv")
	gasCmd.Flags().Float64Var(&gasZ, "z", 1.0, "compressibility factor")
	gasCmd.Flags().BoolVar(&gasJSON, "json", false, "emit JSON")
	gasCmd.Flags().BoolVar(&gasNoChecks, "no-checks", false, "skip input screening")
	rootCmd.AddCommand(gasCmd)
}
