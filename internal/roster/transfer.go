package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/goccy/go-json"

	"github.com/dexlab/dexlab/internal/store"
	"github.com/dexlab/dexlab/pkg/types"
)

// ErrInvalidImport is returned when an import document is neither a list
// of records nor an object with a "pokemon" list.
var ErrInvalidImport = errors.New("roster: invalid import")

// exportDoc is the export file layout. Imports also accept a bare array
// of records.
type exportDoc struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Pokemon     types.Roster `json:"pokemon"`
}

// importDoc only needs ids; the catalog supplies everything else.
type importDoc struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Pokemon     *[]idEntry `json:"pokemon"`
}

type idEntry struct {
	ID int `json:"id"`
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFileName returns a file name derived from the open dex's name.
func (m *Manager) ExportFileName() string {
	return unsafeFileChars.ReplaceAllString(m.Name(), "_") + ".json"
}

// Export writes the open dex as indented JSON.
func (m *Manager) Export(w io.Writer) error {
	m.mu.Lock()
	doc := exportDoc{
		Name:        m.name,
		Description: m.desc,
		Pokemon:     append(types.Roster{}, m.dex...),
	}
	m.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("roster: export: %w", err)
	}
	return nil
}

// Import reads a dex from r and opens it as a new saved dex. Records are
// matched to the catalog by id; unknown ids are skipped.
func (m *Manager) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("roster: import: %w", err)
	}
	name, desc, ids, err := decodeImport(data)
	if err != nil {
		return err
	}
	found, _ := m.cat.Resolve(ids)

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.id = store.NewID()
	m.name = name
	m.desc = desc
	m.dex = found
	return m.commit(prev)
}

func decodeImport(data []byte) (name, desc string, ids []int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", "", nil, fmt.Errorf("%w: empty document", ErrInvalidImport)
	}

	var entries []idEntry
	name = ImportedName
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	case '{':
		var doc importDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		if doc.Pokemon == nil {
			return "", "", nil, fmt.Errorf("%w: missing pokemon list", ErrInvalidImport)
		}
		entries = *doc.Pokemon
		name = orDefault(doc.Name, ImportedName)
		desc = doc.Description
	default:
		return "", "", nil, fmt.Errorf("%w: expected array or object", ErrInvalidImport)
	}

	ids = make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return name, desc, ids, nil
}
