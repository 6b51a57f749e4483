// Package roster owns the roster being edited. A Manager resolves ids
// against the catalog and writes every change through to the saved-dex
// store. After each change it re-runs the analytics engine and the
// user-defined rules, then hands the result to the OnChange subscriber.
package roster
