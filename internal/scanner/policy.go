package scanner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"foodrescue/internal/core"
)

// Policy decides which near-expiry entries produce an alert on this scan.
type Policy interface {
	// Select returns the subset of candidates to alert on. log is the
	// current alert log, newest first.
	Select(candidates []core.Entry, log []core.Alert, now time.Time) []core.Entry
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(candidates []core.Entry, log []core.Alert, now time.Time) []core.Entry

func (f PolicyFunc) Select(candidates []core.Entry, log []core.Alert, now time.Time) []core.Entry {
	return f(candidates, log, now)
}

const (
	PolicyAlways = "always"
	PolicyDedupe = "dedupe"
)

// AlwaysPolicy alerts on every candidate on every scan. An entry that stays
// in the window is alerted again each time the scan runs.
type AlwaysPolicy struct{}

func (AlwaysPolicy) Select(candidates []core.Entry, _ []core.Alert, _ time.Time) []core.Entry {
	return candidates
}

// DedupePolicy skips entries that already have an alert created within
// Window of now.
type DedupePolicy struct {
	Window time.Duration
}

func (p DedupePolicy) Select(candidates []core.Entry, log []core.Alert, now time.Time) []core.Entry {
	window := p.Window
	if window <= 0 {
		window = Horizon
	}
	cutoff := now.Add(-window)
	alerted := make(map[string]struct{})
	for _, a := range log {
		if a.EntryID != "" && a.CreatedAt.After(cutoff) {
			alerted[a.EntryID] = struct{}{}
		}
	}
	out := make([]core.Entry, 0, len(candidates))
	for _, e := range candidates {
		if _, seen := alerted[e.ID]; seen {
			continue
		}
		// Entries without an ID cannot be deduplicated and always alert.
		if e.ID != "" {
			alerted[e.ID] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}

// policies is the registry of named alert policies, guarded by policiesMu.
var (
	policiesMu sync.RWMutex
	policies   = map[string]Policy{
		PolicyAlways: AlwaysPolicy{},
		PolicyDedupe: DedupePolicy{Window: Horizon},
	}
)

// GetPolicy returns the policy registered under name.
func GetPolicy(name string) (Policy, error) {
	policiesMu.RLock()
	p, ok := policies[name]
	policiesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown alert policy: %s", name)
	}
	return p, nil
}

// RegisterPolicy adds or replaces a named policy.
func RegisterPolicy(name string, p Policy) {
	policiesMu.Lock()
	defer policiesMu.Unlock()
	policies[name] = p
}

// PolicyNames lists the registered policy names, sorted.
func PolicyNames() []string {
	policiesMu.RLock()
	defer policiesMu.RUnlock()
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
