package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foodrescue/internal/cli"
	"foodrescue/internal/config"
	"foodrescue/internal/log"
)

var logLevel string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rescuectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescuectl",
		Short: "Food rescue administration CLI",
		Long: `rescuectl works directly against the configured entry store: import form exports
or the Google Form response sheet, export entries, run an expiry scan, print the dashboard,
migrate legacy JSON data and watch alert batches published to RabbitMQ.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	cmd.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newScanCmd(),
		newDashboardCmd(),
		newMigrateJSONCmd(),
		newSchemaCmd(),
		newWatchAlertsCmd(),
	)
	return cmd
}

// newLogger logs to stderr so command output on stdout stays pipeable.
func newLogger(cfg *config.Config) *log.Logger {
	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	return log.New(log.Config{
		Level:   log.ParseLevel(level),
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: log.ParseLevel(level)}),
	})
}

// withApp loads configuration, builds the service and releases it after fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, logger *log.Logger, app *cli.App) error) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	app, err := cli.BuildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Error("Failed to release resources", log.FieldError, cerr.Error())
		}
	}()
	return fn(ctx, cfg, logger, app)
}
