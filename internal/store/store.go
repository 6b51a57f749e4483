package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no dex exists with the requested id.
var ErrNotFound = errors.New("store: dex not found")

// SavedDex is one persisted roster. Only ids are stored; records are
// resolved against the catalog when the dex is loaded.
type SavedDex struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PokemonIDs  []int     `json:"pokemonIds"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// fileFormat is the on-disk layout.
type fileFormat struct {
	Current string               `json:"current,omitempty"`
	Saves   map[string]*SavedDex `json:"saves"`
}

// Store is a thread-safe saved-dex store backed by one JSON file.
type Store struct {
	mu      sync.RWMutex
	path    string
	saves   map[string]*SavedDex
	current string
	now     func() time.Time // injectable for deterministic tests
}

// Open loads the store at path. A missing file yields an empty store; the
// file and its parent directory are created on the first write.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		saves: make(map[string]*SavedDex),
		now:   time.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	for id, d := range f.Saves {
		if d == nil {
			continue
		}
		d.ID = id
		s.saves[id] = d
	}
	if _, ok := s.saves[f.Current]; ok {
		s.current = f.Current
	}
	slog.Debug("store: opened", "path", path, "saves", len(s.saves))
	return s, nil
}

// NewID returns a fresh dex id.
func NewID() string { return uuid.NewString() }

// Put stores or replaces d, stamps UpdatedAt and makes it the current dex.
// An empty d.ID is assigned a new id. The stored copy is returned.
func (s *Store) Put(d SavedDex) (SavedDex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = NewID()
	}
	d.PokemonIDs = append([]int{}, d.PokemonIDs...)
	d.UpdatedAt = s.now().UTC()

	prev, prevCurrent := s.saves[d.ID], s.current
	s.saves[d.ID] = &d
	s.current = d.ID
	if err := s.flushLocked(); err != nil {
		s.restoreLocked(d.ID, prev, prevCurrent)
		return SavedDex{}, err
	}
	return clone(&d), nil
}

// Get returns the dex with id.
func (s *Store) Get(id string) (SavedDex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.saves[id]
	if !ok {
		return SavedDex{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(d), nil
}

// Delete removes the dex with id. Deleting the current dex clears the
// current pointer.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.saves[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	prevCurrent := s.current
	delete(s.saves, id)
	if s.current == id {
		s.current = ""
	}
	if err := s.flushLocked(); err != nil {
		s.restoreLocked(id, prev, prevCurrent)
		return err
	}
	return nil
}

// List returns every saved dex, most recently updated first. Ties are
// broken by name so the order is stable.
func (s *Store) List() []SavedDex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SavedDex, 0, len(s.saves))
	for _, d := range s.saves {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Count returns the number of saved dexes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saves)
}

// Current returns the id of the dex that was open last, if any.
func (s *Store) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

// SetCurrent records id as the open dex.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saves[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.current == id {
		return nil
	}
	prev := s.current
	s.current = id
	if err := s.flushLocked(); err != nil {
		s.current = prev
		return err
	}
	return nil
}

// ClearCurrent forgets the open dex without deleting it.
func (s *Store) ClearCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return nil
	}
	prev := s.current
	s.current = ""
	if err := s.flushLocked(); err != nil {
		s.current = prev
		return err
	}
	return nil
}

// restoreLocked undoes an in-memory change whose flush failed, so memory
// keeps matching the file. A nil prev means id did not exist before.
func (s *Store) restoreLocked(id string, prev *SavedDex, current string) {
	if prev == nil {
		delete(s.saves, id)
	} else {
		s.saves[id] = prev
	}
	s.current = current
}

// flushLocked writes the store to a temp file and renames it over path.
// Callers must hold s.mu for writing.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(fileFormat{Current: s.current, Saves: s.saves}, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".saves-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

func clone(d *SavedDex) SavedDex {
	c := *d
	c.PokemonIDs = append([]int{}, d.PokemonIDs...)
	return c
}
