package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/cavitation"
	"github.com/procflow/sizer-cli/internal/model"
	"github.com/procflow/sizer-cli/internal/noise"
	"github.com/procflow/sizer-cli/internal/report"
	"github.com/procflow/sizer-cli/internal/sizing"
)

var (
	dsProc     processFlags
	dsValve    valveFlags
	dsPhase    string
	dsProject  string
	dsTag      string
	dsOut      string
	dsDensity  float64
	dsPv       float64
	dsPc       float64
	dsVisc     float64
	dsMW       float64
	dsK        float64
	dsZ        float64
	dsSchedule string
	dsDistance float64
)

// datasheetCmd runs the full analysis chain for one case and renders the
// deliverable: sizing, then cavitation (liquid) or noise (gas).
var datasheetCmd = &cobra.Command{
	Use:   "datasheet",
	Short: "Generate a complete valve datasheet (XLSX plus terminal summary)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := unitSystem()
		if err != nil {
			return err
		}

		valve, err := dsValve.geometry()
		if err != nil {
			return err
		}
		proc := dsProc.conditions()

		ds := report.NewDatasheet(dsProject, dsTag, sys)
		ds.Proc = proc
		ds.Valve = valve

		switch dsPhase {
		case "liquid":
			fluid := model.LiquidProperties{
				Density:          dsDensity,
				VaporPressure:    dsPv,
				CriticalPressure: dsPc,
				Viscosity:        dsVisc,
			}
			res, err := sizing.NewLiquid(sys).Size(proc, fluid, valve)
			if err != nil {
				return err
			}
			ds.Liquid = res

			cav, err := cavitation.Assess(cavitation.Params{
				Proc:          proc,
				VaporPressure: dsPv,
				Valve:         valve,
			})
			if err != nil {
				zap.L().Warn("cavitation screen skipped", zap.Error(err))
			} else {
				ds.Cavitation = cav
			}

		case "gas":
			gas := model.GasProperties{
				MolecularWeight:   dsMW,
				SpecificHeatRatio: dsK,
				Compressibility:   dsZ,
			}
			res, err := sizing.NewGas(sys).Size(proc, gas, valve)
			if err != nil {
				return err
			}
			ds.Gas = res

			nz, err := noise.Predict(noise.Params{
				Proc:         proc,
				Gas:          gas,
				Cv:           res.CvRequired,
				PipeDiameter: valve.PipeDiameter,
				Schedule:     dsSchedule,
				Distance:     dsDistance,
			})
			if err != nil {
				zap.L().Warn("noise prediction skipped", zap.Error(err))
			} else {
				ds.Noise = nz
			}

		default:
			return fmt.Errorf("unknown phase %q: want liquid or gas", dsPhase)
		}

		if dsOut != "" {
			if err := ds.WriteXLSX(dsOut); err != nil {
				return err
			}
			zap.L().Info("datasheet written", zap.String("path", dsOut), zap.String("case_id", ds.CaseID))
		}
		return ds.WriteText(os.Stdout)
	},
}

func init() {
	dsProc.register(datasheetCmd.Flags())
	dsValve.register(datasheetCmd.Flags())
	datasheetCmd.Flags().StringVar(&dsPhase, "phase", "liquid", "fluid phase: liquid or gas")
	datasheetCmd.Flags().StringVar(&dsProject, "project", "", "project name for the datasheet header")
	datasheetCmd.Flags().StringVar(&dsTag, "tag", "", "valve tag number")
	datasheetCmd.Flags().StringVar(&dsOut, "out", "", "XLSX output path (empty = terminal summary only)")
	datasheetCmd.Flags().Float64Var(&dsDensity, "density", 998, "liquid density, kg/m3")
	datasheetCmd.Flags().Float64Var(&dsPv, "pv", 0.032, "vapor pressure at flowing temperature")
	datasheetCmd.Flags().Float64Var(&dsPc, "pc", 221.2, "thermodynamic critical pressure")
	datasheetCmd.Flags().Float64Var(&dsVisc, "viscosity", 1.0, "kinematic viscosity, cSt")
	datasheetCmd.Flags().Float64Var(&dsMW, "mw", 28.97, "molecular weight, kg/kmol")
	datasheetCmd.Flags().Float64Var(&dsK, "k", 1.40, "specific heat ratio Cp/Cv")
	datasheetCmd.Flags().Float64Var(&dsZ, "z", 1.0, "compressibility factor")
	datasheetCmd.Flags().StringVar(&dsSchedule, "schedule", "SCH40", "pipe schedule for noise transmission loss")
	datasheetCmd.Flags().Float64Var(&dsDistance, "distance", 1, "noise listener distance, m")
	rootCmd.AddCommand(datasheetCmd)
}
