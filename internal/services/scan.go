package services

import (
	"context"
	"fmt"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
)

// ScanReport summarizes one scan run.
type ScanReport struct {
	Scanned  int
	New      []core.Alert
	LogSize  int
	Notified bool
}

// RunScan checks the stored entries for items near expiry, persists the
// alert log when new alerts were generated and hands them to the notifier.
// Notification failures are logged and do not fail the scan.
func (s *RescueService) RunScan(ctx context.Context) (ScanReport, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return ScanReport{}, fmt.Errorf("load entries: %w", err)
	}
	prior, err := s.store.LoadAlerts(ctx)
	if err != nil {
		return ScanReport{}, fmt.Errorf("load alerts: %w", err)
	}

	res := s.scanner.Scan(entries, prior, s.now())
	report := ScanReport{Scanned: len(entries), New: res.New, LogSize: len(prior)}
	if len(res.New) == 0 {
		s.logger.DebugContext(ctx, "Expiry scan found nothing new", log.FieldCount, len(entries))
		return report, nil
	}

	if err := s.store.SaveAlerts(ctx, res.Log); err != nil {
		return ScanReport{}, fmt.Errorf("save alerts: %w", err)
	}
	report.LogSize = len(res.Log)
	s.logger.InfoContext(ctx, "Expiry scan generated alerts",
		log.FieldOperation, log.OpScan, log.FieldCount, len(res.New))

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, res.New); err != nil {
			s.logger.Failure(ctx, "Alert notification failed", log.OpNotify, err, log.FieldCount, len(res.New))
		} else {
			report.Notified = true
		}
	}
	return report, nil
}
