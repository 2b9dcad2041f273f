// Package cli provides common initialization shared by cmd/foodrescue and
// cmd/rescuectl: logging, configuration and the wiring of a RescueService
// from configuration.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foodrescue/internal/amqp"
	"foodrescue/internal/backend"
	"foodrescue/internal/config"
	"foodrescue/internal/log"
	"foodrescue/internal/scanner"
	"foodrescue/internal/services"
	"foodrescue/internal/sheets"
	"foodrescue/internal/sheets/google"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: log.ComponentApp})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration (including a local .env file)
// and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// App bundles the service with the resources it holds open.
type App struct {
	Service *services.RescueService
	Store   sheets.Store
	AMQP    *amqp.Client

	closers []func() error
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildApp creates the configured store, scanner and notifiers and wires
// them into a RescueService. An unreachable broker is logged and alerts fall
// back to the log notifier only.
func BuildApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	app := &App{Store: res.Store}
	app.closers = append(app.closers, res.Close)

	policy, err := scanner.GetPolicy(cfg.AlertPolicy)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	notifiers := scanner.MultiNotifier{scanner.LogNotifier{Logger: logger.WithComponent(log.ComponentScanner)}}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Failure(ctx, "AMQP unavailable, alerts will only be logged", log.OpStartup, err)
		} else {
			app.AMQP = client
			app.closers = append(app.closers, client.Close)
			notifiers = append(notifiers, client)
		}
	}

	app.Service = services.NewRescueService(res.Store, services.Options{
		Scanner:      scanner.New(policy, cfg.AlertRetention),
		Notifier:     notifiers,
		ScanOnCreate: cfg.ScanOnCreate,
		Logger:       logger,
	})
	return app, nil
}

// GoogleSource builds the configured Google Sheets row source.
func GoogleSource(ctx context.Context, cfg *config.Config, logger *log.Logger) (*google.Client, error) {
	if !cfg.GoogleEnabled() {
		return nil, errors.New("google sheets import is not configured (set GOOGLE_SPREADSHEET_ID)")
	}
	return google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	}, logger)
}
