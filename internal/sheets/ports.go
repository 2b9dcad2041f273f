package sheets

import (
	"context"

	"foodrescue/internal/core"
	"foodrescue/internal/tabular"
)

// Ports for outbound adapters.
type (
	// EntryRepository owns the durable entry collection. Every write is a full
	// rewrite; readers observe either the prior or the new complete state.
	EntryRepository interface {
		// LoadAll returns every persisted entry in insertion order. A missing
		// or unreadable store yields an empty slice, not an error.
		LoadAll(ctx context.Context) ([]core.Entry, error)
		// Append persists existing entries plus the given ones, stamping IDs
		// and creation times where unset. It returns the stamped new entries.
		Append(ctx context.Context, entries []core.Entry) ([]core.Entry, error)
		// ReplaceAll discards prior contents and persists exactly entries.
		ReplaceAll(ctx context.Context, entries []core.Entry) ([]core.Entry, error)
	}

	// AlertLog stores the newest-first alert log.
	AlertLog interface {
		LoadAlerts(ctx context.Context) ([]core.Alert, error)
		SaveAlerts(ctx context.Context, alerts []core.Alert) error
	}

	// Store is a backend providing both entries and alerts.
	Store interface {
		EntryRepository
		AlertLog
	}

	// RowSource yields raw rows from an externally authored sheet.
	RowSource interface {
		ReadRows(ctx context.Context) ([]tabular.Row, error)
	}
)
