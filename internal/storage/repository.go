package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
	"foodrescue/internal/sheets"
	"foodrescue/internal/tabular"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores entries and the alert log in SQLite. Every write
// runs in one transaction, so readers see the old or the new state.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

// WithClock overrides the clock used when stamping new entries.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const entryColumns = `id, food_type, item_name, quantity, unit, expiry_date, donor, volunteer_name, notes, created_at`

func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY seq`)
	if err != nil {
		r.logger.WarnContext(ctx, "Entries unreadable, treating as empty", log.FieldError, err.Error())
		return []core.Entry{}, nil
	}
	defer rows.Close()

	entries := []core.Entry{}
	for rows.Next() {
		var (
			e         core.Entry
			foodType  string
			expiry    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &foodType, &e.ItemName, &e.Quantity, &e.Unit, &expiry,
			&e.Donor, &e.VolunteerName, &e.Notes, &createdAt); err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable entry row", log.FieldError, err.Error())
			continue
		}
		e.FoodType = core.FoodType(foodType)
		if expiry.Valid {
			e.ExpiryDate, _ = core.ParseDate(expiry.String)
		}
		e.CreatedAt = tabular.ParseTimestamp(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		r.logger.WarnContext(ctx, "Entries read interrupted, treating as empty", log.FieldError, err.Error())
		return []core.Entry{}, nil
	}
	return entries, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	added := sheets.Stamp(entries, r.now())
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		return insertEntries(ctx, tx, added)
	})
	if err != nil {
		return nil, fmt.Errorf("append entries: %w", err)
	}
	r.logger.InfoContext(ctx, "Entries saved to SQLite", log.FieldOperation, log.OpAppend, log.FieldCount, len(added))
	return added, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	stamped := sheets.Stamp(entries, r.now())
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return err
		}
		return insertEntries(ctx, tx, stamped)
	})
	if err != nil {
		return nil, fmt.Errorf("replace entries: %w", err)
	}
	r.logger.InfoContext(ctx, "Entries replaced in SQLite", log.FieldOperation, log.OpReplace, log.FieldCount, len(stamped))
	return stamped, nil
}

func (r *SQLiteRepository) LoadAlerts(ctx context.Context) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, entry_id, food_type, item_name, quantity, unit,
		expiry_date, donor, message, created_at FROM alerts ORDER BY position`)
	if err != nil {
		r.logger.WarnContext(ctx, "Alerts unreadable, treating as empty", log.FieldError, err.Error())
		return []core.Alert{}, nil
	}
	defer rows.Close()

	alerts := []core.Alert{}
	for rows.Next() {
		var (
			a         core.Alert
			foodType  string
			expiry    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.EntryID, &foodType, &a.ItemName, &a.Quantity, &a.Unit,
			&expiry, &a.Donor, &a.Message, &createdAt); err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable alert row", log.FieldError, err.Error())
			continue
		}
		a.FoodType = core.FoodType(foodType)
		if expiry.Valid {
			a.ExpiryDate, _ = core.ParseDate(expiry.String)
		}
		a.CreatedAt = tabular.ParseTimestamp(createdAt)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		r.logger.WarnContext(ctx, "Alerts read interrupted, treating as empty", log.FieldError, err.Error())
		return []core.Alert{}, nil
	}
	return alerts, nil
}

func (r *SQLiteRepository) SaveAlerts(ctx context.Context, alerts []core.Alert) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO alerts (position, id, entry_id, food_type,
			item_name, quantity, unit, expiry_date, donor, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, a := range alerts {
			if _, err := stmt.ExecContext(ctx, i, a.ID, a.EntryID, string(a.FoodType), a.ItemName,
				a.Quantity, a.Unit, nullDate(a.ExpiryDate), a.Donor, a.Message,
				tabular.FormatTimestamp(a.CreatedAt)); err != nil {
				return fmt.Errorf("insert alert %s: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []core.Entry) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, string(e.FoodType), e.ItemName, e.Quantity, e.Unit,
			nullDate(e.ExpiryDate), e.Donor, e.VolunteerName, e.Notes,
			tabular.FormatTimestamp(e.CreatedAt)); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

var _ sheets.Store = (*SQLiteRepository)(nil)
