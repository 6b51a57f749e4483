package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/dexlab/dexlab/pkg/types"
)

// Lookup failures.
var (
	ErrUnknownPokemon  = errors.New("unknown pokemon")
	ErrUnknownTemplate = errors.New("unknown template")
)

// Catalog is the read-only dataset. It is safe for concurrent use once built.
type Catalog struct {
	pokemon   []types.Pokemon
	byID      map[int]int // id -> index into pokemon
	templates []types.Template
}

// New builds a Catalog from in-memory records. Records are kept in the
// given order; a repeated id keeps its first occurrence.
func New(pokemon []types.Pokemon, templates []types.Template) *Catalog {
	c := &Catalog{
		pokemon:   make([]types.Pokemon, 0, len(pokemon)),
		byID:      make(map[int]int, len(pokemon)),
		templates: append([]types.Template(nil), templates...),
	}
	for _, p := range pokemon {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.pokemon)
		c.pokemon = append(c.pokemon, p)
	}
	return c
}

// Load reads the dataset from pokemonPath and, when templatesPath is
// non-empty, the templates. A missing templates file is not an error.
func Load(pokemonPath, templatesPath string) (*Catalog, error) {
	var pokemon []types.Pokemon
	if err := readJSON(pokemonPath, &pokemon); err != nil {
		return nil, fmt.Errorf("catalog: load pokemon: %w", err)
	}

	var templates []types.Template
	if templatesPath != "" {
		err := readJSON(templatesPath, &templates)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog: load templates: %w", err)
		}
	}

	return New(pokemon, templates), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.pokemon) }

// All returns a copy of every record in dataset order.
func (c *Catalog) All() []types.Pokemon {
	return append([]types.Pokemon(nil), c.pokemon...)
}

// Get returns the record with id.
func (c *Catalog) Get(id int) (types.Pokemon, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Pokemon{}, false
	}
	return c.pokemon[i], true
}

// Resolve maps ids to records, skipping ids the catalog does not know.
// It returns the records and the skipped ids.
func (c *Catalog) Resolve(ids []int) (found types.Roster, missing []int) {
	found = make(types.Roster, 0, len(ids))
	for _, id := range ids {
		p, ok := c.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, p)
	}
	return found, missing
}

// Templates returns every predefined roster.
func (c *Catalog) Templates() []types.Template {
	return append([]types.Template(nil), c.templates...)
}

// Template returns the template called name.
func (c *Catalog) Template(name string) (types.Template, error) {
	for _, t := range c.templates {
		if t.Name == name {
			return t, nil
		}
	}
	return types.Template{}, fmt.Errorf("catalog: %w: %q", ErrUnknownTemplate, name)
}

// Options lists the distinct filter values present in the dataset.
type Options struct {
	Types     []string `json:"types"`
	Gens      []int    `json:"gens"`
	EggGroups []string `json:"egg_groups"`
}

// Options returns the sorted distinct types, generations and egg groups.
func (c *Catalog) Options() Options {
	typeSet := map[string]struct{}{}
	genSet := map[int]struct{}{}
	eggSet := map[string]struct{}{}
	for _, p := range c.pokemon {
		for _, t := range p.Types {
			typeSet[t] = struct{}{}
		}
		genSet[p.Gen] = struct{}{}
		for _, eg := range p.EggGroups {
			eggSet[eg] = struct{}{}
		}
	}

	opts := Options{
		Types:     sortedKeys(typeSet),
		EggGroups: sortedKeys(eggSet),
		Gens:      make([]int, 0, len(genSet)),
	}
	for g := range genSet {
		opts.Gens = append(opts.Gens, g)
	}
	sort.Ints(opts.Gens)
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
