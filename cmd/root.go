package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/config"
	"github.com/procflow/sizer-cli/internal/units"
	"github.com/procflow/sizer-cli/internal/valvedb"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sizer",
	Short: "Control valve sizing engine",
	Long:  "Sizes control valves for liquid and gas service per ISA 75.01, with cavitation screening per ISA RP75.23 and noise prediction per IEC 60534-8-3.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// unitSystem resolves the configured unit system.
func unitSystem() (units.System, error) {
	return units.ParseSystem(cfg.Units.System)
}

// openStore opens the configured catalog backend.
func openStore(ctx context.Context) (valvedb.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return valvedb.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return valvedb.NewSQLite(cfg.Store.SQLitePath)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
