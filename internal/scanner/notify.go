package scanner

import (
	"context"
	"errors"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
)

// Notifier receives every batch of newly generated alerts. Delivery is up
// to the implementation.
type Notifier interface {
	Notify(ctx context.Context, alerts []core.Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, alerts []core.Alert) error

func (f NotifierFunc) Notify(ctx context.Context, alerts []core.Alert) error {
	return f(ctx, alerts)
}

// LogNotifier writes a supervisor summary line plus one line per alert.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(ctx context.Context, alerts []core.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	logger := n.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger.WarnContext(ctx, "Supervisor alert: items near expiry", log.FieldCount, len(alerts))
	for _, a := range alerts {
		fields := log.NewFields().WithEntry(a.EntryID, string(a.FoodType), a.ItemName, a.ExpiryDate.String())
		logger.WarnContext(ctx, a.Message, append(fields.ToSlice(), log.FieldAlertID, a.ID)...)
	}
	return nil
}

// MultiNotifier fans a batch out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, alerts []core.Alert) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
