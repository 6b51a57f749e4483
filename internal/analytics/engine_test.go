package analytics

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexlab/dexlab/pkg/types"
)

// mon builds a minimal well-formed record.
func mon(id int, name string, bst int, typ ...string) types.Pokemon {
	if len(typ) == 0 {
		typ = []string{"Normal"}
	}
	return types.Pokemon{ID: id, Name: name, Types: typ, BST: bst}
}

// uniform returns n single-typed records sharing bst.
func uniform(n, bst int, typ string) []types.Pokemon {
	out := make([]types.Pokemon, n)
	for i := range out {
		out[i] = mon(i+1, fmt.Sprintf("mon-%d", i+1), bst, typ)
	}
	return out
}

func TestAnalyze_EmptyRoster(t *testing.T) {
	for name, roster := range map[string][]types.Pokemon{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			r := Analyze(roster)

			assert.Equal(t, 0, r.Count)
			assert.Equal(t, "-", r.RareType.String())
			assert.Equal(t, "-", r.CommonType.String())
			assert.Equal(t, "-", r.RareEggGroup.String())
			assert.Equal(t, "-", r.CommonEggGroup.String())
			assert.Empty(t, r.Alerts)
			assert.NotNil(t, r.Alerts)
			assert.Nil(t, r.BSTBoxPlot)
			assert.Nil(t, r.CaptureRateBoxPlot)
			assert.Zero(t, r.AvgBST)
			assert.Zero(t, r.MedianBST)
			assert.Zero(t, r.AvgCaptureRate)
			assert.Zero(t, r.TypeCounts.Len())
			assert.Zero(t, r.EggGroupCounts.Len())
			assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0}, r.EvolutionDepthCounts)
			assert.Equal(t, []string{"< 300", "300-399", "400-499", "500-599", "600+"}, r.BSTDistribution.Names())
			assert.Zero(t, r.BSTDistribution.Total())
		})
	}
}

func TestAnalyze_ScenarioUniformNormal(t *testing.T) {
	r := Analyze(uniform(16, 400, "Normal"))

	assert.Equal(t, 16, r.Count)
	assert.Equal(t, 400, r.AvgBST)
	assert.Equal(t, map[string]int{
		"< 300": 0, "300-399": 0, "400-499": 16, "500-599": 0, "600+": 0,
	}, r.BSTDistribution.Map())
	assert.Equal(t, "Normal (16)", r.CommonType.String())
	assert.Equal(t, "Normal (16)", r.RareType.String())
	assert.Equal(t, []string{"High Normal type count (16, 100%)"}, r.Alerts)
}

func TestAnalyze_ScenarioBSTOutlier(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "a", 100), mon(2, "b", 200), mon(3, "c", 300), mon(4, "d", 400), mon(5, "e", 1000),
	}
	r := Analyze(roster)

	require.NotNil(t, r.BSTBoxPlot)
	assert.Equal(t, BoxPlot{
		Min: 100, Q1: 200, Median: 300, Q3: 400, Max: 400,
		Outliers: []Outlier{{ID: 5, Name: "e", Value: 1000}},
	}, *r.BSTBoxPlot)
	assert.Equal(t, 200, r.Q1BST)
	assert.Equal(t, 300, r.MedianBST)
	assert.Equal(t, 400, r.Q3BST)
	assert.Equal(t, 100, r.MinBST)
	assert.Equal(t, 1000, r.MaxBST)
	assert.Equal(t, 400, r.AvgBST)
}

func TestAnalyze_ScenarioNoEggGroups(t *testing.T) {
	r := Analyze(uniform(4, 300, "Bug"))

	assert.Zero(t, r.EggGroupCounts.Len())
	assert.Equal(t, "- (0)", r.CommonEggGroup.String())
	assert.Equal(t, "- (0)", r.RareEggGroup.String())
	for _, a := range r.Alerts {
		assert.NotContains(t, a, "Egg")
	}
}

func TestAnalyze_DoesNotMutateRoster(t *testing.T) {
	roster := []types.Pokemon{
		mon(3, "c", 500, "Fire"), mon(1, "a", 100, "Water"), mon(2, "b", 300, "Grass", "Poison"),
	}
	roster[0].CaptureRate = 45
	roster[1].CaptureRate = 255
	roster[2].CaptureRate = 3
	before := slices.Clone(roster)

	first := Analyze(roster)
	second := Analyze(roster)

	assert.Equal(t, before, roster)
	assert.Equal(t, first, second)
}

func TestAnalyze_TypeCountsPerMembership(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "a", 300, "Grass", "Poison"),
		mon(2, "b", 300, "Fire"),
		mon(3, "c", 300, "Fire", "Flying"),
	}
	r := Analyze(roster)

	assert.Equal(t, []string{"Grass", "Poison", "Fire", "Flying"}, r.TypeCounts.Names())
	assert.Equal(t, 2, r.TypeCounts.Get("Fire"))
	assert.Equal(t, 5, r.TypeCounts.Total())
	assert.GreaterOrEqual(t, r.TypeCounts.Total(), r.Count)
}

func TestAnalyze_ModeTieBreakFirstSeen(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "a", 300, "Fire", "Water"),
		mon(2, "b", 300, "Water", "Grass"),
		mon(3, "c", 300, "Fire", "Bug"),
	}
	roster[0].EggGroups = []string{"Monster"}
	roster[1].EggGroups = []string{"Field", "Monster"}
	roster[2].EggGroups = []string{"Field", "Fairy"}

	r := Analyze(roster)

	// Fire and Water both reach 2; Fire was seen first.
	assert.Equal(t, Mode{Name: "Fire", Count: 2}, r.CommonType)
	// Grass and Bug both have 1; Grass was seen first.
	assert.Equal(t, Mode{Name: "Grass", Count: 1}, r.RareType)
	assert.Equal(t, Mode{Name: "Monster", Count: 2}, r.CommonEggGroup)
	assert.Equal(t, Mode{Name: "Fairy", Count: 1}, r.RareEggGroup)
}

func TestAnalyze_EvolutionFamiliesCountedOnce(t *testing.T) {
	withFamily := func(p types.Pokemon, depth int, family ...int) types.Pokemon {
		p.EvolutionDepth = depth
		p.EvolutionFamily = family
		return p
	}
	roster := []types.Pokemon{
		withFamily(mon(2, "Ivysaur", 405), 2, 1, 2, 3),
		withFamily(mon(1, "Bulbasaur", 318), 1, 1, 2, 3),
		withFamily(mon(3, "Venusaur", 525), 3, 1, 2, 3),
		withFamily(mon(6, "Charizard", 534), 3, 4, 5, 6),
		withFamily(mon(133, "Eevee", 325), 1, 133, 134, 135),
		withFamily(mon(134, "Vaporeon", 525), 2, 133, 134, 135),
		withFamily(mon(132, "Ditto", 288), 1),    // no family
		withFamily(mon(999, "Oddity", 300), 4, 9), // depth out of range
	}
	r := Analyze(roster)

	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, r.EvolutionDepthCounts)

	total := 0
	for _, n := range r.EvolutionDepthCounts {
		total += n
	}
	assert.LessOrEqual(t, total, 4)
}

func TestFamilySet_ComparesByValue(t *testing.T) {
	s := familySet{}
	assert.True(t, s.add([]int{1, 2, 3}))
	assert.False(t, s.add([]int{1, 2, 3}))
	assert.True(t, s.add([]int{12, 3}))
	assert.True(t, s.add([]int{1, 23}))
	assert.True(t, s.add([]int{3, 2, 1}))
}

func TestAnalyze_CaptureRateStats(t *testing.T) {
	rates := []int{45, 3, 190, 255, 45, 0}
	roster := make([]types.Pokemon, len(rates))
	for i, cr := range rates {
		roster[i] = mon(i+1, fmt.Sprintf("m%d", i+1), 300)
		roster[i].CaptureRate = cr
	}
	r := Analyze(roster)

	assert.Equal(t, 0, r.MinCaptureRate)
	assert.Equal(t, 255, r.MaxCaptureRate)
	assert.Equal(t, 90, r.AvgCaptureRate) // 538/6 = 89.67
	// sorted: 0 3 45 45 190 255
	assert.Equal(t, 14, r.Q1CaptureRate)      // 3 + .25*42 = 13.5
	assert.Equal(t, 45, r.MedianCaptureRate)  // pos 2.5
	assert.Equal(t, 154, r.Q3CaptureRate)     // 45 + .75*145 = 153.75
	require.NotNil(t, r.CaptureRateBoxPlot)
	assert.Empty(t, r.CaptureRateBoxPlot.Outliers)
	assert.Equal(t, 0, r.CaptureRateBoxPlot.Min)
	assert.Equal(t, 255, r.CaptureRateBoxPlot.Max)

	require.Len(t, r.HardestToCatch, 5)
	assert.Equal(t, []int{0, 3, 45, 45, 190}, captureRates(r.HardestToCatch))
	assert.Equal(t, "m1", r.HardestToCatch[2].Name) // tie keeps roster order
	assert.Equal(t, []int{255, 190, 45, 45, 3}, captureRates(r.EasiestToCatch))
}

func captureRates(rs []Ranked) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.CaptureRate
	}
	return out
}

func TestAnalyze_QuartileMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(40)
		roster := make([]types.Pokemon, n)
		for i := range roster {
			roster[i] = mon(i, fmt.Sprintf("m%d", i), 180+rng.Intn(600))
			roster[i].CaptureRate = rng.Intn(256)
		}
		r := Analyze(roster)

		assert.LessOrEqual(t, r.MinBST, r.Q1BST)
		assert.LessOrEqual(t, r.Q1BST, r.MedianBST)
		assert.LessOrEqual(t, r.MedianBST, r.Q3BST)
		assert.LessOrEqual(t, r.Q3BST, r.MaxBST)
		for _, bp := range []*BoxPlot{r.BSTBoxPlot, r.CaptureRateBoxPlot} {
			require.NotNil(t, bp)
			assert.LessOrEqual(t, bp.Min, bp.Max)
		}
		assert.GreaterOrEqual(t, r.BSTBoxPlot.Min, r.MinBST)
		assert.LessOrEqual(t, r.BSTBoxPlot.Max, r.MaxBST)
		assert.GreaterOrEqual(t, r.CaptureRateBoxPlot.Min, r.MinCaptureRate)
		assert.LessOrEqual(t, r.CaptureRateBoxPlot.Max, r.MaxCaptureRate)
	}
}

func TestAnalyze_OutlierConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := 2 + rng.Intn(50)
		roster := make([]types.Pokemon, n)
		for i := range roster {
			roster[i] = mon(i, fmt.Sprintf("m%d", i), 300)
			// Mostly mid-range with the occasional extreme.
			roster[i].CaptureRate = 40 + rng.Intn(40)
			if rng.Intn(8) == 0 {
				roster[i].CaptureRate = rng.Intn(256)
			}
		}
		r := Analyze(roster)

		sorted := make([]int, n)
		for i, p := range roster {
			sorted[i] = p.CaptureRate
		}
		slices.Sort(sorted)
		q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
		lower, upper := q1-1.5*(q3-q1), q3+1.5*(q3-q1)

		outside := map[int]bool{}
		for _, p := range roster {
			v := float64(p.CaptureRate)
			if v < lower || v > upper {
				outside[p.ID] = true
			}
		}
		require.NotNil(t, r.CaptureRateBoxPlot)
		assert.Len(t, r.CaptureRateBoxPlot.Outliers, len(outside))
		for _, o := range r.CaptureRateBoxPlot.Outliers {
			assert.True(t, outside[o.ID], "outlier %d lies inside the fences", o.ID)
		}
	}
}

func TestAnalyze_OutliersKeepScanOrder(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "huge", 2000), mon(2, "a", 400), mon(3, "b", 410), mon(4, "c", 420),
		mon(5, "d", 430), mon(6, "tiny", 10), mon(7, "e", 440),
	}
	r := Analyze(roster)

	require.NotNil(t, r.BSTBoxPlot)
	names := []string{}
	for _, o := range r.BSTBoxPlot.Outliers {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"huge", "tiny"}, names)
	assert.Equal(t, 400, r.BSTBoxPlot.Min)
	assert.Equal(t, 440, r.BSTBoxPlot.Max)
}

func TestAnalyze_HistogramBoundaries(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "a", 299), mon(2, "b", 300), mon(3, "c", 399), mon(4, "d", 400),
		mon(5, "e", 499), mon(6, "f", 500), mon(7, "g", 599), mon(8, "h", 600), mon(9, "i", 780),
	}
	r := Analyze(roster)

	assert.Equal(t, map[string]int{
		"< 300": 1, "300-399": 2, "400-499": 2, "500-599": 2, "600+": 2,
	}, r.BSTDistribution.Map())
	assert.Equal(t, r.Count, r.BSTDistribution.Total())
}

func TestAnalyze_CustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.HighAvgBST = 350
	r := New(p).Analyze(uniform(3, 400, "Fire"))

	assert.Equal(t, []string{"High Avg BST (400)"}, r.Alerts)
	assert.Equal(t, p, New(p).Policy())
}

func TestReport_JSON(t *testing.T) {
	roster := []types.Pokemon{
		mon(1, "a", 300, "Water", "Ground"),
		mon(2, "b", 300, "Fire"),
	}
	data, err := json.Marshal(Analyze(roster))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Water (1)", got["common_type"])
	assert.Equal(t, "- (0)", got["rare_egg_group"])
	assert.Contains(t, string(data), `"type_counts":{"Water":1,"Ground":1,"Fire":1}`)

	dist, ok := got["bst_distribution"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), dist["300-399"])
	assert.Len(t, dist, 5)
	assert.Less(t, strings.Index(string(data), `"300-399"`), strings.Index(string(data), `"600+"`))

	empty, err := json.Marshal(Analyze(nil))
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"bst_box_plot":null`)
	assert.Contains(t, string(empty), `"rare_type":"-"`)
	assert.Contains(t, string(empty), `"alerts":[]`)
}

func TestValidate(t *testing.T) {
	good := uniform(3, 300, "Ice")
	require.NoError(t, Validate(good))

	tests := []struct {
		name   string
		mutate func(p *types.Pokemon)
		want   error
	}{
		{"no types", func(p *types.Pokemon) { p.Types = nil }, ErrNoTypes},
		{"negative bst", func(p *types.Pokemon) { p.BST = -1 }, ErrNegativeBST},
		{"capture rate high", func(p *types.Pokemon) { p.CaptureRate = 256 }, ErrCaptureRateRange},
		{"capture rate negative", func(p *types.Pokemon) { p.CaptureRate = -3 }, ErrCaptureRateRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roster := slices.Clone(good)
			tc.mutate(&roster[1])

			err := Validate(roster)
			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "#2 mon-2")

			_, err = New(DefaultPolicy()).AnalyzeStrict(roster)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
