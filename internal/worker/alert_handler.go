package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"foodrescue/internal/amqp"
	"foodrescue/internal/log"
)

// AlertPrinter writes alert batches received from the message queue, one line
// per alert, for supervisors watching from a terminal.
type AlertPrinter struct {
	out    io.Writer
	logger *log.Logger
}

func NewAlertPrinter(out io.Writer, logger *log.Logger) *AlertPrinter {
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertPrinter{out: out, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleAlertBatch processes a single alert batch message from AMQP
func (p *AlertPrinter) HandleAlertBatch(ctx context.Context, msg *amqp.AlertBatchMessage) error {
	p.logger.InfoContext(ctx, "Processing alert batch", log.FieldCount, msg.Count)
	for _, a := range msg.Alerts {
		if _, err := fmt.Fprintf(p.out, "%s\t%s\n", a.CreatedAt.Format(time.RFC3339), a.Message); err != nil {
			return fmt.Errorf("write alert %s: %w", a.AlertID, err)
		}
	}
	return nil
}
