package cli

import (
	"context"

	"ledger-service/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		logger.Info("starting ledger service",
			zap.String("env", cfg.AppEnv),
			zap.String("http_addr", cfg.HTTPAddr),
			zap.String("grpc_addr", cfg.GRPCAddr),
		)
		return server.Run(cmd.Context(), cfg, logger)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema to the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Build migrates as part of wiring.
		return withApp(cmd, func(context.Context, *server.App) error { return nil })
	},
}
