package catalog

import (
	"slices"
	"strings"

	"github.com/dexlab/dexlab/pkg/types"
)

// Full slider ranges. A capture-rate range equal to the full range disables
// that filter entirely, so records outside it still match.
const (
	BSTRangeMin         = 180
	BSTRangeMax         = 780
	CaptureRateRangeMin = 3
	CaptureRateRangeMax = 255
)

// Filter selects catalog records. The zero value is not useful; start from
// NewFilter, which opens every range fully.
type Filter struct {
	// Search is a case-insensitive substring of the name.
	Search string

	// Types must all be present on a record.
	Types []string
	// Gens matches any listed generation.
	Gens []int
	// Evos matches any listed evolution depth.
	Evos []int
	// EggGroups must all be present on a record.
	EggGroups []string

	// BSTMin and BSTMax bound the base stat total inclusively. When
	// BSTMin > BSTMax the filter keeps records outside the gap instead.
	BSTMin, BSTMax int

	// CaptureRateMin and CaptureRateMax bound the capture rate inclusively.
	CaptureRateMin, CaptureRateMax int

	// InDex, when non-nil, restricts results to these ids.
	InDex map[int]struct{}
}

// NewFilter returns a Filter that matches every record.
func NewFilter() Filter {
	return Filter{
		BSTMin:         BSTRangeMin,
		BSTMax:         BSTRangeMax,
		CaptureRateMin: CaptureRateRangeMin,
		CaptureRateMax: CaptureRateRangeMax,
	}
}

// Match reports whether p satisfies every criterion of f.
func (f Filter) Match(p types.Pokemon) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	for _, t := range f.Types {
		if !p.HasType(t) {
			return false
		}
	}
	if len(f.Gens) > 0 && !slices.Contains(f.Gens, p.Gen) {
		return false
	}
	if len(f.Evos) > 0 && !slices.Contains(f.Evos, p.EvolutionDepth) {
		return false
	}
	for _, eg := range f.EggGroups {
		if !p.HasEggGroup(eg) {
			return false
		}
	}

	if f.BSTMin <= f.BSTMax {
		if p.BST < f.BSTMin || p.BST > f.BSTMax {
			return false
		}
	} else if p.BST > f.BSTMax && p.BST < f.BSTMin {
		return false
	}

	fullCR := f.CaptureRateMin == CaptureRateRangeMin && f.CaptureRateMax == CaptureRateRangeMax
	if !fullCR && (p.CaptureRate < f.CaptureRateMin || p.CaptureRate > f.CaptureRateMax) {
		return false
	}

	if f.InDex != nil {
		if _, ok := f.InDex[p.ID]; !ok {
			return false
		}
	}
	return true
}

// Active reports whether f narrows the result set at all.
func (f Filter) Active() bool {
	return f.Search != "" || len(f.Types) > 0 || len(f.Gens) > 0 || len(f.Evos) > 0 ||
		len(f.EggGroups) > 0 || f.InDex != nil ||
		f.BSTMin != BSTRangeMin || f.BSTMax != BSTRangeMax ||
		f.CaptureRateMin != CaptureRateRangeMin || f.CaptureRateMax != CaptureRateRangeMax
}

// Filter returns the records matching f in dataset order.
func (c *Catalog) Filter(f Filter) []types.Pokemon {
	out := []types.Pokemon{}
	for _, p := range c.pokemon {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// InDex builds an id set for Filter.InDex from a roster.
func InDex(r types.Roster) map[int]struct{} {
	set := make(map[int]struct{}, len(r))
	for _, p := range r {
		set[p.ID] = struct{}{}
	}
	return set
}
