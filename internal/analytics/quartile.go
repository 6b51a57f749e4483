package analytics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// outlierFactor scales the interquartile range to place the fences.
const outlierFactor = 1.5

// topN is the length of the hardest/easiest-to-catch lists.
const topN = 5

// sample is one record's value for a single metric.
type sample struct {
	id    int
	name  string
	value int
}

// quantile returns the q-quantile of sorted using linear interpolation
// between closest ranks (R-7): pos = (n-1)·q. sorted must be non-empty and
// ascending. The result is not rounded.
func quantile(sorted []int, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	base := int(math.Floor(pos))
	if base+1 >= len(sorted) {
		return float64(sorted[base])
	}
	lo, hi := float64(sorted[base]), float64(sorted[base+1])
	return lo + (pos-float64(base))*(hi-lo)
}

// roundInt rounds half away from zero.
// Every caller passes a finite value derived from integer inputs.
func roundInt(v float64) int {
	r, err := stats.Round(v, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

// boxPlot builds the whisker-adjusted summary for samples.
// rawMin and rawMax are the unfenced extremes, used when no value lies
// inside a fence. Fences are placed from the unrounded quartiles; the
// reported quartiles are rounded. Returns nil for an empty sample.
func boxPlot(samples []sample, rawMin, rawMax int) *BoxPlot {
	if len(samples) == 0 {
		return nil
	}

	sorted := make([]int, len(samples))
	for i, s := range samples {
		sorted[i] = s.value
	}
	sort.Ints(sorted)

	q1 := quantile(sorted, 0.25)
	median := quantile(sorted, 0.5)
	q3 := quantile(sorted, 0.75)

	iqr := q3 - q1
	lower := q1 - outlierFactor*iqr
	upper := q3 + outlierFactor*iqr

	bp := &BoxPlot{
		Min:      rawMin,
		Q1:       roundInt(q1),
		Median:   roundInt(median),
		Q3:       roundInt(q3),
		Max:      rawMax,
		Outliers: []Outlier{},
	}

	for _, s := range samples {
		v := float64(s.value)
		if v < lower || v > upper {
			bp.Outliers = append(bp.Outliers, Outlier{ID: s.id, Name: s.name, Value: s.value})
		}
	}

	for _, v := range sorted {
		if float64(v) >= lower {
			bp.Min = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if float64(sorted[i]) <= upper {
			bp.Max = sorted[i]
			break
		}
	}
	return bp
}

// rankByCaptureRate returns up to topN entries ordered by capture rate,
// ascending when hardest is true and descending otherwise. The sort is
// stable so ties keep roster order.
func rankByCaptureRate(samples []sample, hardest bool) []Ranked {
	ordered := make([]sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		if hardest {
			return ordered[i].value < ordered[j].value
		}
		return ordered[i].value > ordered[j].value
	})

	n := len(ordered)
	if n > topN {
		n = topN
	}
	out := make([]Ranked, 0, n)
	for _, s := range ordered[:n] {
		out = append(out, Ranked{ID: s.id, Name: s.name, CaptureRate: s.value})
	}
	return out
}
