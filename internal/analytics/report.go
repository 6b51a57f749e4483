package analytics

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// placeholder is the label used when there is nothing to name.
const placeholder = "-"

// BST histogram bucket labels, in display order.
const (
	BucketUnder300 = "< 300"
	Bucket300      = "300-399"
	Bucket400      = "400-499"
	Bucket500      = "500-599"
	Bucket600Plus  = "600+"
)

var bstBuckets = []string{BucketUnder300, Bucket300, Bucket400, Bucket500, Bucket600Plus}

// Report is the full statistics snapshot for one roster.
// Every field is recomputed from scratch on each Analyze call.
type Report struct {
	Count int `json:"count"`

	TypeCounts     Tally `json:"type_counts"`
	EggGroupCounts Tally `json:"egg_group_counts"`

	// EvolutionDepthCounts maps a stage (1, 2, 3) to the number of distinct
	// evolution families first seen at that stage.
	EvolutionDepthCounts map[int]int `json:"evolution_depth_counts"`

	LegendaryCount     int `json:"legendary_count"`
	MythicalCount      int `json:"mythical_count"`
	PseudoCount        int `json:"pseudo_count"`
	LateEvolutionCount int `json:"late_evolution_count"`

	RareType       Mode `json:"rare_type"`
	CommonType     Mode `json:"common_type"`
	RareEggGroup   Mode `json:"rare_egg_group"`
	CommonEggGroup Mode `json:"common_egg_group"`

	AvgBST    int `json:"avg_bst"`
	MinBST    int `json:"min_bst"`
	MaxBST    int `json:"max_bst"`
	MedianBST int `json:"median_bst"`
	Q1BST     int `json:"q1_bst"`
	Q3BST     int `json:"q3_bst"`

	BSTDistribution Tally    `json:"bst_distribution"`
	BSTBoxPlot      *BoxPlot `json:"bst_box_plot"`

	AvgCaptureRate    int `json:"avg_capture_rate"`
	MinCaptureRate    int `json:"min_capture_rate"`
	MaxCaptureRate    int `json:"max_capture_rate"`
	MedianCaptureRate int `json:"median_capture_rate"`
	Q1CaptureRate     int `json:"q1_capture_rate"`
	Q3CaptureRate     int `json:"q3_capture_rate"`

	CaptureRateBoxPlot *BoxPlot `json:"capture_rate_box_plot"`

	// HardestToCatch and EasiestToCatch list up to five records with the
	// lowest and highest capture rates. Ties keep roster order.
	HardestToCatch []Ranked `json:"hardest_to_catch"`
	EasiestToCatch []Ranked `json:"easiest_to_catch"`

	Alerts []string `json:"alerts"`
}

// DistinctTypes returns how many different types appear in the roster.
func (r Report) DistinctTypes() int { return r.TypeCounts.Len() }

// OutlierCount returns the combined number of BST and capture-rate outliers.
func (r Report) OutlierCount() int {
	n := 0
	if r.BSTBoxPlot != nil {
		n += len(r.BSTBoxPlot.Outliers)
	}
	if r.CaptureRateBoxPlot != nil {
		n += len(r.CaptureRateBoxPlot.Outliers)
	}
	return n
}

// Mode names the most or least frequent value of a tally together with its
// count. The zero Mode renders as "-"; a Mode named "-" renders as "- (0)".
type Mode struct {
	Name  string
	Count int
}

// String renders the mode as "Name (N)".
func (m Mode) String() string {
	if m.Name == "" {
		return placeholder
	}
	return fmt.Sprintf("%s (%d)", m.Name, m.Count)
}

// MarshalJSON encodes the mode as its display label.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// BoxPlot is a whisker-adjusted five-number summary. Min and Max are the
// whisker ends, i.e. the most extreme values inside the 1.5·IQR fences.
type BoxPlot struct {
	Min      int       `json:"min"`
	Q1       int       `json:"q1"`
	Median   int       `json:"median"`
	Q3       int       `json:"q3"`
	Max      int       `json:"max"`
	Outliers []Outlier `json:"outliers"`
}

// Outlier is a record whose value falls strictly outside the fences.
type Outlier struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Ranked is one entry of a capture-rate top list.
type Ranked struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CaptureRate int    `json:"capture_rate"`
}

// Tally is a name → count mapping that remembers first-insertion order.
// The zero value is an empty tally ready to use.
type Tally struct {
	names  []string
	counts map[string]int
}

func newTally(names ...string) Tally {
	t := Tally{counts: make(map[string]int, len(names))}
	for _, n := range names {
		t.add(n, 0)
	}
	return t
}

func (t *Tally) add(name string, n int) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[name]; !ok {
		t.names = append(t.names, name)
	}
	t.counts[name] += n
}

// Get returns the count for name, or 0 if it was never seen.
func (t Tally) Get(name string) int { return t.counts[name] }

// Has reports whether name was recorded, even with a zero count.
func (t Tally) Has(name string) bool {
	_, ok := t.counts[name]
	return ok
}

// Len returns the number of distinct names.
func (t Tally) Len() int { return len(t.names) }

// Names returns the names in first-insertion order.
func (t Tally) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	total := 0
	for _, n := range t.names {
		total += t.counts[n]
	}
	return total
}

// Each calls fn for every entry in first-insertion order.
func (t Tally) Each(fn func(name string, count int)) {
	for _, n := range t.names {
		fn(n, t.counts[n])
	}
}

// Map returns a copy of the tally as a plain map.
func (t Tally) Map() map[string]int {
	out := make(map[string]int, len(t.names))
	for _, n := range t.names {
		out[n] = t.counts[n]
	}
	return out
}

// MarshalJSON encodes the tally as a JSON object whose keys keep
// first-insertion order.
func (t Tally) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", t.counts[n])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// modes returns the least and most frequent entries of t.
// Only a strictly smaller or larger count replaces the current pick, so the
// first-seen entry wins ties.
func (t Tally) modes() (rare, common Mode) {
	if t.Len() == 0 {
		return Mode{Name: placeholder}, Mode{Name: placeholder}
	}
	rare = Mode{Name: t.names[0], Count: t.counts[t.names[0]]}
	common = rare
	for _, n := range t.names[1:] {
		c := t.counts[n]
		if c > common.Count {
			common = Mode{Name: n, Count: c}
		}
		if c < rare.Count {
			rare = Mode{Name: n, Count: c}
		}
	}
	return rare, common
}

// emptyReport is the report for an empty or nil roster.
func emptyReport() Report {
	return Report{
		TypeCounts:           newTally(),
		EggGroupCounts:       newTally(),
		EvolutionDepthCounts: map[int]int{1: 0, 2: 0, 3: 0},
		BSTDistribution:      newTally(bstBuckets...),
		HardestToCatch:       []Ranked{},
		EasiestToCatch:       []Ranked{},
		Alerts:               []string{},
	}
}

// bstBucket returns the histogram label for a base stat total.
func bstBucket(bst int) string {
	switch {
	case bst < 300:
		return BucketUnder300
	case bst < 400:
		return Bucket300
	case bst < 500:
		return Bucket400
	case bst < 600:
		return Bucket500
	default:
		return Bucket600Plus
	}
}
