// Package analytics derives roster statistics from a list of Pokémon records.
//
// engine.go holds Analyze, the single entry point: one pass over the roster
// aggregates type and egg-group tallies, BST and capture-rate sums, category
// counts and evolution-family depths. report.go defines the Report returned
// to callers, quartile.go the R-7 quartile and box-plot math, alerts.go the
// threshold policy that turns a Report into advisory balance alerts.
//
// Analyze is a pure function. It never mutates the roster (values are copied
// before sorting) and keeps no state between calls; an empty or nil roster
// yields the zero report rather than an error.
package analytics
