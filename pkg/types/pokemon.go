package types

// Pokemon is one dataset entry.
//
// The analytics engine reads ID, Name, Types, EggGroups, BST, CaptureRate,
// the category flags and the evolution fields. The remaining fields are
// carried for the catalog and for export.
type Pokemon struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Types       []string       `json:"types"`
	EggGroups   []string       `json:"eggGroups,omitempty"`
	CaptureRate int            `json:"captureRate"`
	Stats       map[string]int `json:"stats,omitempty"`
	BST         int            `json:"bst"`
	Gen         int            `json:"gen,omitempty"`
	Height      float64        `json:"height,omitempty"`
	Weight      float64        `json:"weight,omitempty"`

	IsLegendary     bool `json:"isLegendary"`
	IsMythical      bool `json:"isMythical"`
	IsPseudo        bool `json:"isPseudo"`
	IsLateEvolution bool `json:"isLateEvolution,omitempty"`

	// EvolutionDepth is the stage within the family: 1, 2 or 3.
	EvolutionDepth int `json:"evolutionDepth"`
	// EvolutionFamily lists the ids of every member of the evolutionary
	// line. All members share the same sequence.
	EvolutionFamily []int `json:"evolutionFamily,omitempty"`

	Description string `json:"description,omitempty"`
	Sprite      string `json:"sprite,omitempty"`
	Artwork     string `json:"artwork,omitempty"`
}

// HasType reports whether p carries the named type.
func (p Pokemon) HasType(name string) bool {
	for _, t := range p.Types {
		if t == name {
			return true
		}
	}
	return false
}

// HasEggGroup reports whether p belongs to the named egg group.
func (p Pokemon) HasEggGroup(name string) bool {
	for _, eg := range p.EggGroups {
		if eg == name {
			return true
		}
	}
	return false
}

// Roster is an ordered collection of records. Callers dedupe by ID before
// insertion; nothing downstream enforces uniqueness.
type Roster []Pokemon

// IDs returns the record ids in roster order.
func (r Roster) IDs() []int {
	out := make([]int, len(r))
	for i, p := range r {
		out[i] = p.ID
	}
	return out
}

// Contains reports whether a record with id is present.
func (r Roster) Contains(id int) bool {
	for _, p := range r {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Template is a named, predefined set of record ids a roster can be
// initialised from.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PokemonIDs  []int  `json:"pokemonIds"`
}
