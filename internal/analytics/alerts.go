package analytics

import (
	"fmt"
	"strings"
)

// CanonicalTypes is the fixed list of the eighteen types, in the order used
// by the missing-types alert.
var CanonicalTypes = []string{
	"Normal", "Fire", "Water", "Electric", "Grass", "Ice",
	"Fighting", "Poison", "Ground", "Flying", "Psychic", "Bug",
	"Rock", "Ghost", "Dragon", "Dark", "Steel", "Fairy",
}

// Policy holds the thresholds behind the balance alerts.
// Shares are fractions of the roster size (0.08 = 8%).
type Policy struct {
	// MinRosterSize gates the share-based alerts: they fire only when the
	// roster is strictly larger than this.
	MinRosterSize int `yaml:"min_roster_size"`

	LegendaryShare     float64 `yaml:"legendary_share"`
	PseudoShare        float64 `yaml:"pseudo_share"`
	LateEvolutionShare float64 `yaml:"late_evolution_share"`

	// TypeImbalanceFactor multiplies the even per-type share (1/distinct
	// types). The dominant type alert fires above that product, and always
	// fires for a single-type roster, where the product exceeds 100%.
	TypeImbalanceFactor float64 `yaml:"type_imbalance_factor"`

	// The missing-types alert fires when the roster is larger than
	// MissingTypesMinRoster and more than MissingTypesMinCount canonical
	// types are absent.
	MissingTypesMinRoster int `yaml:"missing_types_min_roster"`
	MissingTypesMinCount  int `yaml:"missing_types_min_count"`

	// HighAvgBST fires the average-BST alert when exceeded. It is not
	// gated by roster size.
	HighAvgBST int `yaml:"high_avg_bst"`
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinRosterSize:         15,
		LegendaryShare:        0.08,
		PseudoShare:           0.10,
		LateEvolutionShare:    0.25,
		TypeImbalanceFactor:   1.75,
		MissingTypesMinRoster: 30,
		MissingTypesMinCount:  1,
		HighAvgBST:            450,
	}
}

// alerts evaluates p against r and returns the advisory messages in a fixed
// order. r must be fully populated and non-empty.
func (p Policy) alerts(r *Report) []string {
	out := []string{}
	count := r.Count
	sized := count > p.MinRosterSize

	share := func(n int, limit float64) bool {
		return sized && float64(n) > float64(count)*limit
	}

	if share(r.LegendaryCount, p.LegendaryShare) {
		out = append(out, fmt.Sprintf("High Legendary count (%d, %d%%)", r.LegendaryCount, percent(r.LegendaryCount, count)))
	}
	if share(r.PseudoCount, p.PseudoShare) {
		out = append(out, fmt.Sprintf("High Pseudo count (%d, %d%%)", r.PseudoCount, percent(r.PseudoCount, count)))
	}
	if share(r.LateEvolutionCount, p.LateEvolutionShare) {
		out = append(out, fmt.Sprintf("High late-game evolutions (%d, %d%%)", r.LateEvolutionCount, percent(r.LateEvolutionCount, count)))
	}

	if distinct := r.TypeCounts.Len(); sized && distinct > 0 {
		even := 1 / float64(distinct)
		maxCount := r.CommonType.Count
		if distinct == 1 || float64(maxCount)/float64(count) > even*p.TypeImbalanceFactor {
			out = append(out, fmt.Sprintf("High %s type count (%d, %d%%)", r.CommonType.Name, maxCount, percent(maxCount, count)))
		}
	}

	if count > p.MissingTypesMinRoster {
		var missing []string
		for _, t := range CanonicalTypes {
			if r.TypeCounts.Get(t) == 0 {
				missing = append(missing, t)
			}
		}
		if len(missing) > p.MissingTypesMinCount {
			out = append(out, "Missing types: "+strings.Join(missing, ", "))
		}
	}

	if r.AvgBST > p.HighAvgBST {
		out = append(out, fmt.Sprintf("High Avg BST (%d)", r.AvgBST))
	}
	return out
}

// percent returns n as a rounded percentage of total.
func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return roundInt(float64(n) / float64(total) * 100)
}
