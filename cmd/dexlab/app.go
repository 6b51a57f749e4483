package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/catalog"
	"github.com/dexlab/dexlab/internal/roster"
	"github.com/dexlab/dexlab/internal/store"
	"github.com/dexlab/dexlab/pkg/types"
)

func loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog.PokemonFile, cfg.Catalog.TemplatesFile)
}

// openManager wires the catalog, the saved-dex store and the engine, and
// reopens the dex that was open last.
func openManager() (*roster.Manager, *store.Store, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	m := roster.New(cat, st, analytics.New(cfg.Policy), cfg.Rules)
	if err := m.Restore(); err != nil && !errors.Is(err, roster.ErrNoCurrentDex) {
		return nil, nil, err
	}
	return m, st, nil
}

// readRosterFile decodes a roster from path. It accepts either a bare
// array of records or an export document with a "pokemon" list.
func readRosterFile(path string) (name string, r types.Roster, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			Name    string       `json:"name"`
			Pokemon types.Roster `json:"pokemon"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return doc.Name, doc.Pokemon, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return "", r, nil
}
