package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/noise"
)

var (
	noiseProc     processFlags
	noiseMW       float64
	noiseK        float64
	noiseCv       float64
	noisePipeD    float64
	noiseWall     float64
	noiseSchedule string
	noiseDistance float64
	noiseJSON     bool
)

var noiseCmd = &cobra.Command{
	Use:   "noise",
	Short: "Predict aerodynamic noise per IEC 60534-8-3",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := noise.Predict(noise.Params{
			Proc: noiseProc.conditions(),
			Gas: model.GasProperties{
				MolecularWeight:   noiseMW,
				SpecificHeatRatio: noiseK,
				Compressibility:   1.0,
			},
			Cv:            noiseCv,
			PipeDiameter:  noisePipeD,
			WallThickness: noiseWall,
			Schedule:      noiseSchedule,
			Distance:      noiseDistance,
		})
		if err != nil {
			return err
		}

		if noiseJSON {
			return printJSON(res)
		}

		fmt.Fprintf(os.Stdout, "Internal sound power Lw: %.1f dB  (peak %.0f Hz, Mach %.2f)\n",
			res.SoundPower, res.PeakFrequency, res.MachNumber)
		fmt.Fprintf(os.Stdout, "Transmission loss: %.1f dB  (mass law %.1f, cylinder %.1f, frequency %.1f)\n",
			res.TransmissionLoss, res.MassLawTL, res.CylinderCorrection, res.FrequencyCorrection)
		fmt.Fprintf(os.Stdout, "SPL: %.1f dBA at 1 m, %.1f dBA at %.0f m  [%s]\n",
			res.SPL1m, res.SPLAtDistance, res.Distance, res.Assessment)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

func init() {
	noiseProc.register(noiseCmd.Flags())
	noiseCmd.Flags().Float64Var(&noiseMW, "mw", 28.97, "molecular weight, kg/kmol")
	noiseCmd.Flags().Float64Var(&noiseK, "k", 1.40, "specific heat ratio Cp/Cv")
	noiseCmd.Flags().Float64Var(&noiseCv, "cv", 0, "flowing Cv from the sizing result")
	noiseCmd.Flags().Float64Var(&noisePipeD, "pipe-d", 0, "downstream pipe internal diameter, mm")
	noiseCmd.Flags().Float64Var(&noiseWall, "wall", 0, "pipe wall thickness, mm (0 = derive from schedule)")
	noiseCmd.Flags().StringVar(&noiseSchedule, "schedule", "SCH40", "pipe schedule for wall thickness")
	noiseCmd.Flags().Float64Var(&noiseDistance, "distance", 1, "listener distance from pipe, m")
	noiseCmd.Flags().BoolVar(&noiseJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(noiseCmd)
}
