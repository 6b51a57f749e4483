// Package rules evaluates user-defined conditions against a roster report.
// Rules come from the `rules:` section of the config file and add to the
// built-in balance alerts; a rule never blocks a roster change.
//
// Tracker keeps the set of firing rules across evaluations, so a watch loop
// can report only rules that started or stopped firing.
package rules
