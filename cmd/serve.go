package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procflow/sizer-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sizing engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sys, err := unitSystem()
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			zap.L().Warn("catalog store unavailable, serving sizing endpoints only", zap.Error(err))
			st = nil
		} else {
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}
		}

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		return server.New(serverCfg, st, sys).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
