package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"ledger-service/internal/config"
	"ledger-service/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "ledger",
	Short:         "Retail banking ledger service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree with ctx, cancelled on SIGINT/SIGTERM by the caller.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// bootstrap loads configuration and a logger for a command.
func bootstrap() (config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := config.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// withApp builds the wired ledger, runs fn and tears everything down.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *server.App) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := server.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cmd.Context(), app)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
