package worker

import (
	"context"
	"time"

	"foodrescue/internal/log"
	"foodrescue/internal/services"
)

// Scanner runs one expiry scan.
type Scanner interface {
	RunScan(ctx context.Context) (services.ScanReport, error)
}

// ScanWorker runs expiry scans on a fixed interval
type ScanWorker struct {
	scanner  Scanner
	interval time.Duration
	logger   *log.Logger
}

func NewScanWorker(scanner Scanner, interval time.Duration, logger *log.Logger) *ScanWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ScanWorker{
		scanner:  scanner,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run scans once immediately, then every interval until ctx is cancelled.
// A failed scan is logged and retried on the next tick.
func (w *ScanWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Scan worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scanOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Scan worker stopped")
			return nil
		case <-ticker.C:
			w.scanOnce(ctx)
		}
	}
}

func (w *ScanWorker) scanOnce(ctx context.Context) {
	start := time.Now()
	report, err := w.scanner.RunScan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Failure(ctx, "Scheduled scan failed", log.OpScan, err)
		return
	}
	w.logger.DebugContext(ctx, "Scheduled scan completed",
		"scanned", report.Scanned,
		"new_alerts", len(report.New),
		"log_size", report.LogSize,
		"duration_ms", time.Since(start).Milliseconds())
}
