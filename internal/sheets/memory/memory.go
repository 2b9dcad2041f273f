package memory

import (
	"context"
	"sync"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/sheets"
)

// Store keeps entries and alerts in process memory.
type Store struct {
	mu      sync.Mutex
	items   []core.Entry
	alerts  []core.Alert
	now     func() time.Time
	failErr error
}

func New(seed ...core.Entry) *Store {
	s := &Store{now: time.Now}
	s.items = sheets.Stamp(seed, s.now())
	return s
}

// WithClock overrides the clock used when stamping new entries.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// FailWrites makes every subsequent write return err. Pass nil to recover.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// LoadAll returns a copy of the stored entries.
func (s *Store) LoadAll(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.items...), nil
}

// Append stamps and stores the entries.
func (s *Store) Append(_ context.Context, entries []core.Entry) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	added := sheets.Stamp(entries, s.now())
	s.items = append(s.items, added...)
	return added, nil
}

// ReplaceAll swaps the stored entries for the given set.
func (s *Store) ReplaceAll(_ context.Context, entries []core.Entry) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	s.items = sheets.Stamp(entries, s.now())
	return append([]core.Entry(nil), s.items...), nil
}

// LoadAlerts returns a copy of the alert log.
func (s *Store) LoadAlerts(_ context.Context) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Alert(nil), s.alerts...), nil
}

// SaveAlerts replaces the alert log.
func (s *Store) SaveAlerts(_ context.Context, alerts []core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.alerts = append([]core.Alert(nil), alerts...)
	return nil
}

var _ sheets.Store = (*Store)(nil)
