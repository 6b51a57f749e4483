package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/catalog"
	"github.com/dexlab/dexlab/internal/config"
	"github.com/dexlab/dexlab/internal/rules"
	"github.com/dexlab/dexlab/internal/store"
	"github.com/dexlab/dexlab/pkg/types"
)

// Default names given to a dex that has none.
const (
	DefaultName  = "Untitled Dex"
	ImportedName = "Imported Dex"
)

// ErrNoCurrentDex is returned by Restore when no dex was open last.
var ErrNoCurrentDex = errors.New("roster: no current dex")

// Update is what subscribers receive after every change.
type Update struct {
	ID     string
	Name   string
	Report analytics.Report
	Hits   []rules.Hit
}

// Manager holds the open dex. It is safe for concurrent use.
type Manager struct {
	cat   *catalog.Catalog
	saves *store.Store

	mu       sync.Mutex
	engine   *analytics.Engine
	rules    []config.Rule
	onChange func(Update)

	id   string
	name string
	desc string
	dex  types.Roster
	last Update
}

// New returns a Manager with an empty, unsaved dex.
func New(cat *catalog.Catalog, saves *store.Store, engine *analytics.Engine, rs []config.Rule) *Manager {
	if engine == nil {
		engine = analytics.New(analytics.DefaultPolicy())
	}
	m := &Manager{
		cat:    cat,
		saves:  saves,
		engine: engine,
		rules:  rs,
		name:   DefaultName,
	}
	m.last = m.analyzeLocked()
	return m
}

// OnChange registers fn to be called after every change. It replaces any
// previous subscriber. fn runs outside the Manager's lock.
func (m *Manager) OnChange(fn func(Update)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Configure swaps the alert policy and rules, for example after a config
// reload, and re-analyzes the open dex.
func (m *Manager) Configure(p analytics.Policy, rs []config.Rule) {
	m.mu.Lock()
	m.engine = analytics.New(p)
	m.rules = rs
	u, fn := m.refreshLocked()
	m.mu.Unlock()
	notify(fn, u)
}

// ID returns the id of the open dex, empty when it was never saved.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Name returns the display name of the open dex.
func (m *Manager) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Description returns the description of the open dex.
func (m *Manager) Description() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desc
}

// Roster returns a copy of the open dex's records.
func (m *Manager) Roster() types.Roster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(types.Roster{}, m.dex...)
}

// Last returns the most recent analysis.
func (m *Manager) Last() Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Add appends the record with id. It reports false when id is already in
// the dex or unknown to the catalog.
func (m *Manager) Add(id int) (bool, error) {
	m.mu.Lock()
	if m.dex.Contains(id) {
		m.mu.Unlock()
		return false, nil
	}
	p, ok := m.cat.Get(id)
	if !ok {
		m.mu.Unlock()
		return false, nil
	}
	prev := m.snapshotLocked()
	m.dex = append(m.dex, p)
	if err := m.commit(prev); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops the record with id. It reports false when id was absent.
func (m *Manager) Remove(id int) (bool, error) {
	m.mu.Lock()
	kept := m.dex[:0:0]
	for _, p := range m.dex {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(m.dex) {
		m.mu.Unlock()
		return false, nil
	}
	prev := m.snapshotLocked()
	m.dex = kept
	if err := m.commit(prev); err != nil {
		return false, err
	}
	return true, nil
}

// LoadTemplate replaces the open dex's contents with a predefined roster.
// Template ids unknown to the catalog are skipped.
func (m *Manager) LoadTemplate(name string) error {
	tpl, err := m.cat.Template(name)
	if err != nil {
		return err
	}
	found, missing := m.cat.Resolve(tpl.PokemonIDs)
	if len(missing) > 0 {
		slog.Warn("roster: template references unknown pokemon", "template", name, "ids", missing)
	}

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.dex = found
	return m.commit(prev)
}

// Create starts a new, empty dex and saves it. It returns the new id.
func (m *Manager) Create(name, desc string) (string, error) {
	m.mu.Lock()
	prev := m.snapshotLocked()
	id := store.NewID()
	m.id = id
	m.name = orDefault(name, DefaultName)
	m.desc = desc
	m.dex = types.Roster{}
	if err := m.commit(prev); err != nil {
		return "", err
	}
	return id, nil
}

// Load opens the saved dex with id. Saved ids the catalog no longer knows
// are dropped.
func (m *Manager) Load(id string) error {
	d, err := m.saves.Get(id)
	if err != nil {
		return err
	}
	if err := m.saves.SetCurrent(id); err != nil {
		return err
	}
	found, _ := m.cat.Resolve(d.PokemonIDs)

	m.mu.Lock()
	m.id = d.ID
	m.name = d.Name
	m.desc = d.Description
	m.dex = found
	u, fn := m.refreshLocked()
	m.mu.Unlock()
	notify(fn, u)
	return nil
}

// Restore reopens the dex that was open last.
func (m *Manager) Restore() error {
	id, ok := m.saves.Current()
	if !ok {
		return ErrNoCurrentDex
	}
	return m.Load(id)
}

// Delete removes a saved dex. Deleting the open dex resets the Manager.
func (m *Manager) Delete(id string) error {
	if err := m.saves.Delete(id); err != nil {
		return err
	}

	m.mu.Lock()
	if m.id != id {
		m.mu.Unlock()
		return nil
	}
	m.clearLocked()
	u, fn := m.refreshLocked()
	m.mu.Unlock()
	notify(fn, u)
	return nil
}

// UpdateMeta renames the open dex and saves it.
func (m *Manager) UpdateMeta(name, desc string) error {
	m.mu.Lock()
	prev := m.snapshotLocked()
	m.name = orDefault(name, DefaultName)
	m.desc = desc
	return m.commit(prev)
}

// Reset closes the open dex without deleting it.
func (m *Manager) Reset() error {
	if err := m.saves.ClearCurrent(); err != nil {
		return err
	}
	m.mu.Lock()
	m.clearLocked()
	u, fn := m.refreshLocked()
	m.mu.Unlock()
	notify(fn, u)
	return nil
}

func (m *Manager) clearLocked() {
	m.id = ""
	m.name = DefaultName
	m.desc = ""
	m.dex = types.Roster{}
}

// dexState is the in-memory part of the open dex that commit may need to
// roll back.
type dexState struct {
	id, name, desc string
	dex            types.Roster
}

func (m *Manager) snapshotLocked() dexState {
	return dexState{id: m.id, name: m.name, desc: m.desc, dex: m.dex}
}

// commit saves the open dex, re-analyzes it and notifies the subscriber.
// When the save fails the dex is rolled back to prev. It must be called
// with m.mu held and releases it.
func (m *Manager) commit(prev dexState) error {
	saved, err := m.saves.Put(store.SavedDex{
		ID:          m.id,
		Name:        m.name,
		Description: m.desc,
		PokemonIDs:  m.dex.IDs(),
	})
	if err != nil {
		m.id, m.name, m.desc, m.dex = prev.id, prev.name, prev.desc, prev.dex
		m.mu.Unlock()
		return fmt.Errorf("roster: save: %w", err)
	}
	m.id = saved.ID
	u, fn := m.refreshLocked()
	m.mu.Unlock()
	notify(fn, u)
	return nil
}

func (m *Manager) refreshLocked() (Update, func(Update)) {
	m.last = m.analyzeLocked()
	return m.last, m.onChange
}

func (m *Manager) analyzeLocked() Update {
	report := m.engine.Analyze(append(types.Roster{}, m.dex...))
	hits := rules.Evaluate(m.rules, report)
	slog.Debug("roster: recomputed",
		"dex", m.id,
		"count", report.Count,
		"alerts", len(report.Alerts),
		"rule_hits", len(hits),
	)
	return Update{ID: m.id, Name: m.name, Report: report, Hits: hits}
}

func notify(fn func(Update), u Update) {
	if fn != nil {
		fn(u)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
