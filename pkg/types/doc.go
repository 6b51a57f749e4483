// Package types defines the Pokémon record and roster shapes shared by the
// catalog, the saved-roster store, the roster service and the analytics
// engine. JSON tags follow the dataset files (all-pokemon.json, templates.json)
// so records round-trip through import/export unchanged.
package types
