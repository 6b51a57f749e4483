// Package config loads and watches the dexlab configuration file (config.yaml).
//
// Top-level types:
//   - Config{LogLevel, Catalog, Storage, Policy, Rules}: full tree parsed from YAML
//   - CatalogConfig: pokemon_file and templates_file dataset paths
//   - StorageConfig: path of the saved-roster file
//   - analytics.Policy: balance alert thresholds, embedded under `policy:`
//   - Rule: name, condition ("field op value"), severity
//
// Load(path) reads the YAML file, applies defaults (info logging,
// data/all-pokemon.json, data/templates.json, ~/.dexlab/saves.json, the stock
// alert policy), then validates levels, paths, thresholds and rules.
// LoadOptional does the same but falls back to defaults when the file is absent.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. WatchFile is the underlying
// primitive; it re-adds the watch after a rename so atomic-save editors
// (vim, VS Code) keep triggering reloads.
package config
