package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/valvedb"
)

var (
	vdbListStyle string
	vdbListSize  string
	vdbListMinCv float64
	vdbListJSON  bool
)

var valvedbCmd = &cobra.Command{
	Use:   "valvedb",
	Short: "Manage the valve catalog and fluid library",
}

var valvedbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		zap.L().Info("catalog schema up to date", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

var valvedbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter valve catalog and fluid library",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.Seed(ctx); err != nil {
			return eris.Wrap(err, "seed catalog")
		}
		zap.L().Info("catalog seeded")
		return nil
	},
}

var valvedbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog valves",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		valves, err := st.ListValves(ctx, valvedb.ValveFilter{
			Style:       vdbListStyle,
			NominalSize: vdbListSize,
			MinCv:       vdbListMinCv,
		})
		if err != nil {
			return err
		}

		if vdbListJSON {
			return printJSON(valves)
		}

		fmt.Fprintf(os.Stdout, "%-12s %-8s %-10s %-6s %8s %6s %6s %6s %7s\n",
			"MFR", "SERIES", "STYLE", "SIZE", "CV", "FL", "XT", "FD", "RANGE")
		for _, v := range valves {
			fmt.Fprintf(os.Stdout, "%-12s %-8s %-10s %-6s %8.0f %6.2f %6.2f %6.2f %5.0f:1\n",
				v.Manufacturer, v.Series, v.Style, v.NominalSize, v.RatedCv, v.FL, v.XT, v.Fd, v.Rangeability)
		}
		return nil
	},
}

var valvedbFluidsCmd = &cobra.Command{
	Use:   "fluids",
	Short: "List the fluid property library",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		liquids, err := st.ListLiquids(ctx)
		if err != nil {
			return err
		}
		gases, err := st.ListGases(ctx)
		if err != nil {
			return err
		}

		if vdbListJSON {
			return printJSON(map[string]any{"liquids": liquids, "gases": gases})
		}

		fmt.Fprintln(os.Stdout, "Liquids:")
		for _, f := range liquids {
			fmt.Fprintf(os.Stdout, "  %-14s rho %7.1f  Pv %6.3f  Pc %7.1f  visc %5.1f cSt\n",
				f.Name, f.Density, f.VaporPressure, f.CriticalPressure, f.Viscosity)
		}
		fmt.Fprintln(os.Stdout, "Gases:")
		for _, f := range gases {
			fmt.Fprintf(os.Stdout, "  %-14s MW %6.2f  k %5.2f  Z %5.2f\n",
				f.Name, f.MolecularWeight, f.SpecificHeat, f.Compressibility)
		}
		return nil
	},
}

func init() {
	valvedbListCmd.Flags().StringVar(&vdbListStyle, "style", "", "filter by style")
	valvedbListCmd.Flags().StringVar(&vdbListSize, "size", "", "filter by nominal size")
	valvedbListCmd.Flags().Float64Var(&vdbListMinCv, "min-cv", 0, "minimum rated Cv")
	valvedbListCmd.Flags().BoolVar(&vdbListJSON, "json", false, "emit JSON")
	valvedbFluidsCmd.Flags().BoolVar(&vdbListJSON, "json", false, "emit JSON")

	valvedbCmd.AddCommand(valvedbMigrateCmd, valvedbSeedCmd, valvedbListCmd, valvedbFluidsCmd)
	rootCmd.AddCommand(valvedbCmd)
}
