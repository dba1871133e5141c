package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procflow/sizer-cli/internal/cavitation"
)

var (
	cavProc  processFlags
	cavValve valveFlags
	cavPv    float64
	cavJSON  bool
)

var cavitationCmd = &cobra.Command{
	Use:   "cavitation",
	Short: "Screen a liquid application for cavitation per ISA RP75.23",
	RunE: func(cmd *cobra.Command, args []string) error {
		valve, err := cavValve.geometry()
		if err != nil {
			return err
		}

		res, err := cavitation.Assess(cavitation.Params{
			Proc:          cavProc.conditions(),
			VaporPressure: cavPv,
			Valve:         valve,
		})
		if err != nil {
			return err
		}

		if cavJSON {
			return printJSON(res)
		}

		fmt.Fprintf(os.Stdout, "Service sigma: %.2f  (FL-referenced %.2f)\n", res.SigmaService, res.SigmaFL)
		fmt.Fprintf(os.Stdout, "Severity: %s   margin %.2f   mitigation: %s\n",
			res.LevelName, res.Margin, res.Mitigation)
		fmt.Fprintln(os.Stdout, "Allowable drops by severity:")
		fmt.Fprintf(os.Stdout, "  incipient    %.2f\n", res.AllowableDrops.Incipient)
		fmt.Fprintf(os.Stdout, "  constant     %.2f\n", res.AllowableDrops.Constant)
		fmt.Fprintf(os.Stdout, "  damage       %.2f\n", res.AllowableDrops.Damage)
		fmt.Fprintf(os.Stdout, "  choking      %.2f\n", res.AllowableDrops.Choking)
		fmt.Fprintf(os.Stdout, "  manufacturer %.2f\n", res.AllowableDrops.Manufacturer)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stdout, "  ! %s: %s\n", w.Tag, w.Message)
		}
		return nil
	},
}

func init() {
	cavProc.register(cavitationCmd.Flags())
	cavValve.register(cavitationCmd.Flags())
	cavitationCmd.Flags().Float64Var(&cavPv, "pv", 0.032, "vapor pressure at flowing temperature")
	cavitationCmd.Flags().BoolVar(&cavJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(cavitationCmd)
}
