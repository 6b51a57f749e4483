package promfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/dexlab/dexlab/internal/analytics"
)

// Metric names.
const (
	RosterSize      = "dexlab_roster_size"
	TypeCount       = "dexlab_type_count"
	EggGroupCount   = "dexlab_egg_group_count"
	EvolutionFamily = "dexlab_evolution_families"
	CategoryCount   = "dexlab_category_count"
	BSTAverage      = "dexlab_bst_average"
	BSTMin          = "dexlab_bst_min"
	BSTMax          = "dexlab_bst_max"
	BSTQuartile     = "dexlab_bst_quartile"
	BSTBucket       = "dexlab_bst_bucket_count"
	CaptureAverage  = "dexlab_capture_rate_average"
	CaptureMin      = "dexlab_capture_rate_min"
	CaptureMax      = "dexlab_capture_rate_max"
	CaptureQuartile = "dexlab_capture_rate_quartile"
	OutlierCount    = "dexlab_outliers"
	AlertCount      = "dexlab_alerts"
)

// family accumulates the samples of one gauge family.
type family struct {
	mf *dto.MetricFamily
}

func newFamily(name, help string) *family {
	return &family{mf: &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}}
}

// add appends a sample. labels are name/value pairs.
func (f *family) add(v float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	f.mf.Metric = append(f.mf.Metric, m)
}

// Families converts r into metric families. Families without samples, such
// as the type counts of an empty roster, are omitted.
func Families(dex string, r analytics.Report) []*dto.MetricFamily {
	var fams []*family
	gauge := func(name, help string) *family {
		f := newFamily(name, help)
		fams = append(fams, f)
		return f
	}
	d := func(kv ...string) []string { return append([]string{"dex", dex}, kv...) }

	gauge(RosterSize, "Number of records in the roster.").add(float64(r.Count), d()...)

	types := gauge(TypeCount, "Records carrying each type.")
	r.TypeCounts.Each(func(name string, n int) { types.add(float64(n), d("type", name)...) })

	eggs := gauge(EggGroupCount, "Records in each egg group.")
	r.EggGroupCounts.Each(func(name string, n int) { eggs.add(float64(n), d("egg_group", name)...) })

	evo := gauge(EvolutionFamily, "Distinct evolution families by stage.")
	for depth := 1; depth <= 3; depth++ {
		evo.add(float64(r.EvolutionDepthCounts[depth]), d("depth", strconv.Itoa(depth))...)
	}

	cat := gauge(CategoryCount, "Records in each special category.")
	cat.add(float64(r.LegendaryCount), d("category", "legendary")...)
	cat.add(float64(r.MythicalCount), d("category", "mythical")...)
	cat.add(float64(r.PseudoCount), d("category", "pseudo")...)
	cat.add(float64(r.LateEvolutionCount), d("category", "late_evolution")...)

	gauge(BSTAverage, "Mean base stat total, rounded.").add(float64(r.AvgBST), d()...)
	gauge(BSTMin, "Lowest base stat total.").add(float64(r.MinBST), d()...)
	gauge(BSTMax, "Highest base stat total.").add(float64(r.MaxBST), d()...)
	quartiles(gauge(BSTQuartile, "Base stat total quartiles."), d, r.Q1BST, r.MedianBST, r.Q3BST)

	buckets := gauge(BSTBucket, "Records per base stat total bucket.")
	r.BSTDistribution.Each(func(name string, n int) { buckets.add(float64(n), d("bucket", name)...) })

	gauge(CaptureAverage, "Mean capture rate, rounded.").add(float64(r.AvgCaptureRate), d()...)
	gauge(CaptureMin, "Lowest capture rate.").add(float64(r.MinCaptureRate), d()...)
	gauge(CaptureMax, "Highest capture rate.").add(float64(r.MaxCaptureRate), d()...)
	quartiles(gauge(CaptureQuartile, "Capture rate quartiles."), d, r.Q1CaptureRate, r.MedianCaptureRate, r.Q3CaptureRate)

	out := gauge(OutlierCount, "Box plot outliers per statistic.")
	out.add(float64(outliers(r.BSTBoxPlot)), d("stat", "bst")...)
	out.add(float64(outliers(r.CaptureRateBoxPlot)), d("stat", "capture_rate")...)

	gauge(AlertCount, "Balance alerts raised for the roster.").add(float64(len(r.Alerts)), d()...)

	mfs := make([]*dto.MetricFamily, 0, len(fams))
	for _, f := range fams {
		if len(f.mf.Metric) > 0 {
			mfs = append(mfs, f.mf)
		}
	}
	return mfs
}

func quartiles(f *family, d func(...string) []string, q1, median, q3 int) {
	f.add(float64(q1), d("quartile", "0.25")...)
	f.add(float64(median), d("quartile", "0.5")...)
	f.add(float64(q3), d("quartile", "0.75")...)
}

func outliers(b *analytics.BoxPlot) int {
	if b == nil {
		return 0
	}
	return len(b.Outliers)
}

// Write encodes r in the text exposition format.
func Write(w io.Writer, dex string, r analytics.Report) error {
	for _, mf := range Families(dex, r) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("promfile: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes r to path atomically so a collector never reads a
// partial file. The encoded text is parsed back before it replaces path,
// since the textfile collector drops a file that fails to parse.
func WriteFile(path, dex string, r analytics.Report) error {
	var buf bytes.Buffer
	if err := Write(&buf, dex, r); err != nil {
		return err
	}
	if _, err := Parse(bytes.NewReader(buf.Bytes())); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dexlab-*.prom")
	if err != nil {
		return fmt.Errorf("promfile: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("promfile: write: %w", err)
	}
	// CreateTemp uses 0600; the collector usually runs as another user.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("promfile: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("promfile: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("promfile: rename: %w", err)
	}
	return nil
}

// Parse decodes a text exposition into metric families keyed by name.
func Parse(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("promfile: parse: %w", err)
	}
	return mfs, nil
}

// value returns the sample of family name whose labels include every
// name/value pair in match.
func value(mfs map[string]*dto.MetricFamily, name string, match ...string) (float64, bool) {
	mf, ok := mfs[name]
	if !ok {
		return 0, false
	}
next:
	for _, m := range mf.GetMetric() {
		for i := 0; i+1 < len(match); i += 2 {
			if !hasLabel(m, match[i], match[i+1]) {
				continue next
			}
		}
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue(), true
		case m.Untyped != nil:
			return m.Untyped.GetValue(), true
		}
	}
	return 0, false
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue() == value
		}
	}
	return false
}
