package analytics

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/dexlab/dexlab/pkg/types"
)

// Engine computes roster reports under a fixed alert policy.
//
// Engine holds no mutable state; it is safe to share and to call
// concurrently.
type Engine struct {
	policy Policy
}

// New returns an Engine using p for its alert thresholds.
func New(p Policy) *Engine {
	return &Engine{policy: p}
}

// Policy returns the thresholds the engine was built with.
func (e *Engine) Policy() Policy { return e.policy }

// Analyze computes the report for roster using DefaultPolicy.
func Analyze(roster []types.Pokemon) Report {
	return New(DefaultPolicy()).Analyze(roster)
}

// Analyze computes the report for roster.
//
// roster is read-only: values are copied before any sort. A nil or empty
// roster returns the zero report.
func (e *Engine) Analyze(roster []types.Pokemon) Report {
	if len(roster) == 0 {
		return emptyReport()
	}

	agg := newAggregate(len(roster))
	for i := range roster {
		agg.observe(&roster[i])
	}

	r := emptyReport()
	r.Count = len(roster)
	r.TypeCounts = agg.types
	r.EggGroupCounts = agg.eggGroups
	r.EvolutionDepthCounts = agg.depths
	r.LegendaryCount = agg.legendary
	r.MythicalCount = agg.mythical
	r.PseudoCount = agg.pseudo
	r.LateEvolutionCount = agg.lateEvolution
	r.BSTDistribution = agg.histogram

	r.RareType, r.CommonType = agg.types.modes()
	r.RareEggGroup, r.CommonEggGroup = agg.eggGroups.modes()

	r.AvgBST = roundInt(float64(agg.bstSum) / float64(r.Count))
	r.MinBST, r.MaxBST = agg.bstMin, agg.bstMax
	r.BSTBoxPlot = boxPlot(agg.bst, agg.bstMin, agg.bstMax)
	r.Q1BST, r.MedianBST, r.Q3BST = r.BSTBoxPlot.Q1, r.BSTBoxPlot.Median, r.BSTBoxPlot.Q3

	r.AvgCaptureRate = roundInt(float64(agg.crSum) / float64(r.Count))
	r.MinCaptureRate, r.MaxCaptureRate = agg.crMin, agg.crMax
	r.CaptureRateBoxPlot = boxPlot(agg.captureRate, agg.crMin, agg.crMax)
	r.Q1CaptureRate = r.CaptureRateBoxPlot.Q1
	r.MedianCaptureRate = r.CaptureRateBoxPlot.Median
	r.Q3CaptureRate = r.CaptureRateBoxPlot.Q3

	r.HardestToCatch = rankByCaptureRate(agg.captureRate, true)
	r.EasiestToCatch = rankByCaptureRate(agg.captureRate, false)

	r.Alerts = e.policy.alerts(&r)
	return r
}

// aggregate accumulates everything Analyze needs from a single pass.
type aggregate struct {
	types     Tally
	eggGroups Tally
	histogram Tally

	depths   map[int]int
	families familySet

	bst            []sample
	bstSum         int
	bstMin, bstMax int

	captureRate  []sample
	crSum        int
	crMin, crMax int

	legendary, mythical, pseudo, lateEvolution int
}

func newAggregate(n int) *aggregate {
	return &aggregate{
		types:       newTally(),
		eggGroups:   newTally(),
		histogram:   newTally(bstBuckets...),
		depths:      map[int]int{1: 0, 2: 0, 3: 0},
		families:    familySet{},
		bst:         make([]sample, 0, n),
		captureRate: make([]sample, 0, n),
	}
}

func (a *aggregate) observe(p *types.Pokemon) {
	first := len(a.bst) == 0

	for _, t := range p.Types {
		a.types.add(t, 1)
	}
	for _, eg := range p.EggGroups {
		a.eggGroups.add(eg, 1)
	}

	a.bst = append(a.bst, sample{id: p.ID, name: p.Name, value: p.BST})
	a.bstSum += p.BST
	if first || p.BST < a.bstMin {
		a.bstMin = p.BST
	}
	if first || p.BST > a.bstMax {
		a.bstMax = p.BST
	}
	a.histogram.add(bstBucket(p.BST), 1)

	cr := p.CaptureRate
	a.captureRate = append(a.captureRate, sample{id: p.ID, name: p.Name, value: cr})
	a.crSum += cr
	if first || cr < a.crMin {
		a.crMin = cr
	}
	if first || cr > a.crMax {
		a.crMax = cr
	}

	if p.IsPseudo {
		a.pseudo++
	}
	if p.IsLegendary {
		a.legendary++
	}
	if p.IsMythical {
		a.mythical++
	}
	if p.IsLateEvolution {
		a.lateEvolution++
	}

	if p.EvolutionDepth >= 1 && p.EvolutionDepth <= 3 && len(p.EvolutionFamily) > 0 {
		if a.families.add(p.EvolutionFamily) {
			a.depths[p.EvolutionDepth]++
		}
	}
}

// familySet records evolution families by value. Families are bucketed by
// an xxhash of their member ids and compared element-wise inside a bucket,
// so two different families never share a slot.
type familySet map[uint64][][]int

// add records family and reports whether it was not already present.
func (s familySet) add(family []int) bool {
	h := familyHash(family)
	for _, seen := range s[h] {
		if slices.Equal(seen, family) {
			return false
		}
	}
	s[h] = append(s[h], slices.Clone(family))
	return true
}

func familyHash(ids []int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		d.Write(buf[:]) //nolint:errcheck // xxhash.Digest.Write never fails
	}
	return d.Sum64()
}
