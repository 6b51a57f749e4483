package rules

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Rule states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Event is a rule changing state between two evaluations.
type Event struct {
	Hit
	State      string     `json:"state"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Tracker remembers which rules were firing on the previous report so a
// long-running watch only reports changes. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	active map[string]*Event // key: rule name
	now    func() time.Time
}

// NewTracker returns a Tracker with nothing firing.
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[string]*Event),
		now:    time.Now,
	}
}

// Observe records the hits of a fresh evaluation. It returns the rules that
// started firing and the rules that stopped, each sorted by rule name.
// A rule that keeps firing is not reported again.
func (t *Tracker) Observe(hits []Hit) (fired, resolved []Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		seen[h.Rule] = true
		if a, ok := t.active[h.Rule]; ok {
			a.Hit = h
			continue
		}
		e := &Event{Hit: h, State: StateFiring, FiredAt: now}
		t.active[h.Rule] = e
		fired = append(fired, *e)
		slog.Warn("rules: fired", "rule", h.Rule, "severity", h.Severity, "value", h.Value)
	}

	for name, a := range t.active {
		if seen[name] {
			continue
		}
		at := now
		a.State = StateResolved
		a.ResolvedAt = &at
		delete(t.active, name)
		resolved = append(resolved, *a)
		slog.Info("rules: resolved", "rule", name)
	}

	byRule := func(es []Event) {
		sort.Slice(es, func(i, j int) bool { return es[i].Rule < es[j].Rule })
	}
	byRule(fired)
	byRule(resolved)
	return fired, resolved
}

// Active returns copies of the rules currently firing, newest first.
func (t *Tracker) Active() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, 0, len(t.active))
	for _, a := range t.active {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FiredAt.Equal(out[j].FiredAt) {
			return out[i].FiredAt.After(out[j].FiredAt)
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}
