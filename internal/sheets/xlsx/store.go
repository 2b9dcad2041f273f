// Package xlsx persists entries and alerts as workbooks on local disk.
//
// Each write encodes the full collection and swaps it into place with a
// rename, so a concurrent reader sees either the old or the new workbook.
// Writers are serialized by a mutex; readers never take it.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
	"foodrescue/internal/sheets"
	"foodrescue/internal/tabular"
)

const (
	EntriesFile = "entries.xlsx"
	AlertsFile  = "alerts.xlsx"
)

type Store struct {
	mu          sync.Mutex
	entriesPath string
	alertsPath  string
	now         func() time.Time
	logger      *log.Logger
}

// New creates a store keeping its workbooks in dir. The directory is created
// on first write.
func New(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		entriesPath: filepath.Join(dir, EntriesFile),
		alertsPath:  filepath.Join(dir, AlertsFile),
		now:         time.Now,
		logger:      logger.WithComponent(log.ComponentStorage),
	}
}

// WithClock overrides the clock used when stamping new entries.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// EntriesPath returns the location of the entries workbook.
func (s *Store) EntriesPath() string { return s.entriesPath }

func (s *Store) LoadAll(ctx context.Context) ([]core.Entry, error) {
	payload, ok := s.read(ctx, s.entriesPath)
	if !ok {
		return []core.Entry{}, nil
	}
	entries, err := tabular.DecodeEntries(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Entries workbook unreadable, treating as empty",
			log.FieldFile, s.entriesPath, log.FieldError, err.Error())
		return []core.Entry{}, nil
	}
	return entries, nil
}

func (s *Store) Append(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.LoadAll(ctx)
	added := sheets.Stamp(entries, s.now())
	if err := s.writeEntries(append(existing, added...)); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Entries appended", log.FieldOperation, log.OpAppend,
		log.FieldCount, len(added))
	return added, nil
}

func (s *Store) ReplaceAll(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped := sheets.Stamp(entries, s.now())
	if err := s.writeEntries(stamped); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Entries replaced", log.FieldOperation, log.OpReplace,
		log.FieldCount, len(stamped))
	return stamped, nil
}

func (s *Store) LoadAlerts(ctx context.Context) ([]core.Alert, error) {
	payload, ok := s.read(ctx, s.alertsPath)
	if !ok {
		return []core.Alert{}, nil
	}
	alerts, err := tabular.DecodeAlerts(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Alerts workbook unreadable, treating as empty",
			log.FieldFile, s.alertsPath, log.FieldError, err.Error())
		return []core.Alert{}, nil
	}
	return alerts, nil
}

func (s *Store) SaveAlerts(_ context.Context, alerts []core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := tabular.EncodeAlerts(alerts)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	return writeAtomic(s.alertsPath, payload)
}

func (s *Store) writeEntries(entries []core.Entry) error {
	payload, err := tabular.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return writeAtomic(s.entriesPath, payload)
}

// read returns the file contents; ok is false when the file is missing or
// cannot be read.
func (s *Store) read(ctx context.Context, path string) ([]byte, bool) {
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Store file unreadable, treating as empty",
			log.FieldFile, path, log.FieldError, err.Error())
		return nil, false
	}
	return payload, true
}

// writeAtomic writes payload to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

var _ sheets.Store = (*Store)(nil)
