package rules

import (
	"strings"
	"testing"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/config"
	"github.com/dexlab/dexlab/pkg/types"
)

func report() analytics.Report {
	roster := []types.Pokemon{
		{ID: 1, Name: "Mew", Types: []string{"Psychic"}, BST: 600, IsMythical: true, CaptureRate: 45},
		{ID: 2, Name: "Celebi", Types: []string{"Psychic", "Grass"}, BST: 600, IsMythical: true, CaptureRate: 45},
		{ID: 3, Name: "Mewtwo", Types: []string{"Psychic"}, BST: 680, IsLegendary: true, CaptureRate: 3},
		{ID: 4, Name: "Rattata", Types: []string{"Normal"}, BST: 253, CaptureRate: 255},
	}
	return analytics.Analyze(roster)
}

func TestEvalCondition(t *testing.T) {
	r := report()
	tests := []struct {
		cond      string
		wantFire  bool
		wantValue float64
	}{
		{"count == 4", true, 4},
		{"count > 4", false, 4},
		{"mythical_count >= 2", true, 2},
		{"legendary_pct > 20", true, 25},
		{"legendary_pct < 20", false, 25},
		{"avg_bst > 500", true, 533},
		{"distinct_types <= 3", true, 3},
		{"max_bst == 680", true, 680},
		{"min_bst < 300", true, 253},
		{"unknown_field > 1", false, 0},
		{"count >", false, 0},
		{"count ~ 3", false, 0},
		{"count > three", false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			fires, v := evalCondition(tc.cond, &r)
			if fires != tc.wantFire {
				t.Errorf("fires: got %v, want %v", fires, tc.wantFire)
			}
			if v != tc.wantValue {
				t.Errorf("value: got %v, want %v", v, tc.wantValue)
			}
		})
	}
}

func TestEvaluate_DefaultSeverityAndOrder(t *testing.T) {
	rules := []config.Rule{
		{Name: "mythicals", Condition: "mythical_count > 1"},
		{Name: "quiet", Condition: "count > 100"},
		{Name: "strong", Condition: "avg_bst > 500", Severity: "critical"},
	}
	hits := Evaluate(rules, report())

	if len(hits) != 2 {
		t.Fatalf("hits: got %d, want 2", len(hits))
	}
	if hits[0].Rule != "mythicals" || hits[0].Severity != "warning" {
		t.Errorf("hits[0]: got %+v", hits[0])
	}
	if hits[1].Rule != "strong" || hits[1].Severity != "critical" {
		t.Errorf("hits[1]: got %+v", hits[1])
	}
	if want := "[critical] strong — avg_bst > 500 (533)"; hits[1].Message != want {
		t.Errorf("message: got %q, want %q", hits[1].Message, want)
	}
	if msgs := Messages(hits); len(msgs) != 2 || msgs[0] != hits[0].Message {
		t.Errorf("Messages: got %v", msgs)
	}
}

func TestEvaluate_EmptyReport(t *testing.T) {
	hits := Evaluate([]config.Rule{{Name: "legends", Condition: "legendary_pct > 0"}}, analytics.Analyze(nil))
	if len(hits) != 0 {
		t.Errorf("hits on empty report: got %d, want 0", len(hits))
	}
}

func TestCheck(t *testing.T) {
	if err := Check([]config.Rule{{Name: "ok", Condition: "outlier_count > 0"}}); err != nil {
		t.Fatalf("Check valid: unexpected error %v", err)
	}

	err := Check([]config.Rule{
		{Name: "bad-op", Condition: "count => 3"},
		{Name: "bad-field", Condition: "shininess > 3"},
	})
	if err == nil {
		t.Fatal("Check: expected error, got nil")
	}
	for _, want := range []string{"bad-op", "unknown operator", "bad-field", "unknown field"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
