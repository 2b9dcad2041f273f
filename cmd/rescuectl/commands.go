package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"foodrescue/internal/amqp"
	"foodrescue/internal/cli"
	"foodrescue/internal/config"
	"foodrescue/internal/log"
	"foodrescue/internal/services"
	"foodrescue/internal/sheets/xlsx"
	"foodrescue/internal/storage"
	"foodrescue/internal/worker"
)

func newImportCmd() *cobra.Command {
	var (
		replace    bool
		fromGoogle bool
	)
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import entries from an xlsx/csv form export or the Google response sheet",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromGoogle && len(args) > 0 {
				return errors.New("--google takes no file argument")
			}
			if !fromGoogle && len(args) != 1 {
				return errors.New("expected exactly one file (or --google)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, cfg *config.Config, logger *log.Logger, app *cli.App) error {
				var (
					res services.ImportResult
					err error
				)
				if fromGoogle {
					src, serr := cli.GoogleSource(ctx, cfg, logger)
					if serr != nil {
						return serr
					}
					res, err = app.Service.ImportFrom(ctx, src, replace)
				} else {
					payload, rerr := os.ReadFile(args[0])
					if rerr != nil {
						return fmt.Errorf("read %s: %w", args[0], rerr)
					}
					res, err = app.Service.Import(ctx, payload, replace)
				}
				if err != nil {
					return err
				}
				verb := "appended"
				if res.Replaced {
					verb = "replaced store with"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "read %d rows, %s %d entries\n", res.Rows, verb, res.Accepted)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace every stored entry instead of appending")
	cmd.Flags().BoolVar(&fromGoogle, "google", false, "Read rows from the configured Google Sheet")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored entry as xlsx or csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, _ *config.Config, _ *log.Logger, app *cli.App) error {
				export, err := app.Service.Export(ctx, f)
				if err != nil {
					return err
				}
				if out == "-" {
					_, err := cmd.OutOrStdout().Write(export.Payload)
					return err
				}
				path := out
				if path == "" {
					path = export.Filename
				}
				if err := os.WriteFile(path, export.Payload, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format: xlsx or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path; \"-\" writes to stdout (default: dated file name)")
	return cmd
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one expiry scan and notify supervisors of new alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, _ *log.Logger, app *cli.App) error {
				report, err := app.Service.RunScan(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "scanned %d entries, %d new alerts, log holds %d\n", report.Scanned, len(report.New), report.LogSize)
				for _, a := range report.New {
					fmt.Fprintf(w, "  - %s\n", a.Message)
				}
				return nil
			})
		},
	}
}

func newDashboardCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the seven-day rescue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, _ *log.Logger, app *cli.App) error {
				summary, err := app.Service.Dashboard(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}
				return printSummary(w, summary.FoodRescuedPerDay, summary.TotalEntries, summary.RecentCount, summary.SeriesDates, summary.RescuedSeries)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, perDay, total, recent int, dates []string, series []float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "rescued per day\t%d lbs\n", perDay)
	fmt.Fprintf(tw, "entries (all time)\t%d\n", total)
	fmt.Fprintf(tw, "entries (7 days)\t%d\n", recent)
	for i, d := range dates {
		fmt.Fprintf(tw, "  %s\t%s\n", d, strconv.FormatFloat(series[i], 'f', -1, 64))
	}
	return tw.Flush()
}

func newMigrateJSONCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "migrate-json",
		Short: "Convert legacy entries.json/alerts.json into the xlsx store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.DataBackend != config.BackendXLSX {
				return fmt.Errorf("migrate-json writes the xlsx store, but DATA_BACKEND is %q", cfg.DataBackend)
			}
			if from == "" {
				from = cfg.DataDir
			}
			store := xlsx.New(cfg.DataDir, newLogger(cfg))
			res, err := store.MigrateJSON(cmd.Context(), from)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.Skipped {
				fmt.Fprintf(w, "%s already exists, nothing migrated\n", filepath.Base(store.EntriesPath()))
				return nil
			}
			fmt.Fprintf(w, "migrated %d entries and %d alerts from %s\n", res.Entries, res.Alerts, from)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Directory holding the legacy JSON files (default: DATA_DIR)")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply SQLite migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0o755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}
			if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
				return err
			}
			version, dirty, err := storage.SchemaVersion(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty=%t)\n", cfg.SQLiteDBPath, version, dirty)
			return nil
		},
	}
}

func newWatchAlertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch-alerts",
		Short: "Print alert batches published to RabbitMQ until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}
			logger := newLogger(cfg)
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			printer := worker.NewAlertPrinter(cmd.OutOrStdout(), logger)
			err = client.ConsumeAlerts(ctx, func(msg *amqp.AlertBatchMessage) error {
				return printer.HandleAlertBatch(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
