// Package catalog holds the static Pokémon dataset and the predefined
// roster templates, and answers the list filters used when building a roster.
//
// Load reads all-pokemon.json and templates.json. Filter applies the
// search/type/generation/evolution/egg-group/BST/capture-rate criteria with
// the same combination rules as the list view: types and egg groups must all
// match, generations and evolution stages match any, and a BST range whose
// minimum exceeds its maximum selects the two outer tails instead.
package catalog
