package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dexlab/dexlab/internal/analytics"
)

// evalCondition evaluates a rule condition string against a report.
//
// Supported expressions (field operator value):
//
//	count > 100
//	avg_bst > 500
//	legendary_pct >= 10
//	mythical_count > 2
//	distinct_types < 12
//	outlier_count > 0
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, r *analytics.Report) (bool, float64) {
	field, op, threshold, err := parseCondition(cond)
	if err != nil {
		return false, 0
	}
	v, ok := numericField(field, r)
	if !ok {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// parseCondition splits cond into its three parts and validates the
// operator and threshold.
func parseCondition(cond string) (field, op string, threshold float64, err error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("condition %q: want \"field op value\"", cond)
	}
	field, op = parts[0], parts[1]
	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return "", "", 0, fmt.Errorf("condition %q: unknown operator %q", cond, op)
	}
	threshold, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("condition %q: bad value: %w", cond, err)
	}
	return field, op, threshold, nil
}

// numericField maps a field name to its value in the report.
func numericField(field string, r *analytics.Report) (float64, bool) {
	switch field {
	case "count":
		return float64(r.Count), true
	case "avg_bst":
		return float64(r.AvgBST), true
	case "min_bst":
		return float64(r.MinBST), true
	case "max_bst":
		return float64(r.MaxBST), true
	case "median_bst":
		return float64(r.MedianBST), true
	case "avg_capture_rate":
		return float64(r.AvgCaptureRate), true
	case "median_capture_rate":
		return float64(r.MedianCaptureRate), true
	case "legendary_count":
		return float64(r.LegendaryCount), true
	case "mythical_count":
		return float64(r.MythicalCount), true
	case "pseudo_count":
		return float64(r.PseudoCount), true
	case "late_evolution_count":
		return float64(r.LateEvolutionCount), true
	case "legendary_pct":
		return share(r.LegendaryCount, r.Count), true
	case "mythical_pct":
		return share(r.MythicalCount, r.Count), true
	case "pseudo_pct":
		return share(r.PseudoCount, r.Count), true
	case "distinct_types":
		return float64(r.DistinctTypes()), true
	case "outlier_count":
		return float64(r.OutlierCount()), true
	default:
		return 0, false
	}
}

// share returns n as a percentage of total, 0 for an empty roster.
func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
