package rules

import (
	"errors"
	"fmt"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/config"
)

const defaultSeverity = "warning"

// Hit is one rule that fired for a report.
type Hit struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Value    float64 `json:"value"`
}

// Evaluate tests every rule against r and returns the ones that fire, in
// rule order. Rules whose condition cannot be evaluated are skipped; use
// Check to reject them up front.
func Evaluate(rules []config.Rule, r analytics.Report) []Hit {
	hits := []Hit{}
	for _, rule := range rules {
		fires, value := evalCondition(rule.Condition, &r)
		if !fires {
			continue
		}
		sev := rule.Severity
		if sev == "" {
			sev = defaultSeverity
		}
		hits = append(hits, Hit{
			Rule:     rule.Name,
			Severity: sev,
			Value:    value,
			Message: fmt.Sprintf("[%s] %s — %s (%g)",
				sev, rule.Name, rule.Condition, value),
		})
	}
	return hits
}

// Check reports every rule whose condition does not parse or names an
// unknown report field.
func Check(rules []config.Rule) error {
	var errs []error
	var probe analytics.Report
	for i, rule := range rules {
		field, _, _, err := parseCondition(rule.Condition)
		if err != nil {
			errs = append(errs, fmt.Errorf("rules[%d] %q: %w", i, rule.Name, err))
			continue
		}
		if _, ok := numericField(field, &probe); !ok {
			errs = append(errs, fmt.Errorf("rules[%d] %q: unknown field %q", i, rule.Name, field))
		}
	}
	return errors.Join(errs...)
}

// Messages flattens hits into their display strings.
func Messages(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Message
	}
	return out
}
