package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dexlab/dexlab/internal/analytics"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultLogLevel      = "info"
	DefaultPokemonFile   = "data/all-pokemon.json"
	DefaultTemplatesFile = "data/templates.json"
	DefaultSavesFile     = "saves.json"
	DefaultHomeDir       = ".dexlab"
)

// Environment variables consulted by Load.
const (
	// EnvHome overrides the directory holding the saves file.
	EnvHome = "DEXLAB_HOME"
	// EnvConfig names the config file when --config is not given.
	EnvConfig = "DEXLAB_CONFIG"
)

// Config is the top-level dexlab configuration.
type Config struct {
	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Catalog points at the static dataset files.
	Catalog CatalogConfig `yaml:"catalog"`

	// Storage configures where saved rosters are persisted.
	Storage StorageConfig `yaml:"storage"`

	// Policy holds the balance alert thresholds.
	Policy analytics.Policy `yaml:"policy"`

	// Rules are extra conditions evaluated against every report.
	Rules []Rule `yaml:"rules"`
}

// CatalogConfig locates the dataset files.
type CatalogConfig struct {
	// PokemonFile is the JSON array of every record.
	PokemonFile string `yaml:"pokemon_file"`

	// TemplatesFile is the JSON array of predefined rosters. Optional.
	TemplatesFile string `yaml:"templates_file"`
}

// StorageConfig configures saved-roster persistence.
type StorageConfig struct {
	// Path is the JSON file holding every saved roster. Defaults to
	// $DEXLAB_HOME/saves.json, or ~/.dexlab/saves.json.
	Path string `yaml:"path"`
}

// Rule defines one user condition evaluated against each report.
type Rule struct {
	// Name is the human-readable rule identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "avg_bst > 500" or "legendary_pct >= 10".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info. Defaults to warning.
	Severity string `yaml:"severity"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultSavesPath()
	}
	for _, p := range []*string{&cfg.Storage.Path, &cfg.Catalog.PokemonFile, &cfg.Catalog.TemplatesFile} {
		*p = expandHome(*p)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but returns Default when path does not
// exist. An empty path also yields the defaults.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Catalog: CatalogConfig{
			PokemonFile:   DefaultPokemonFile,
			TemplatesFile: DefaultTemplatesFile,
		},
		Storage: StorageConfig{Path: defaultSavesPath()},
		Policy:  analytics.DefaultPolicy(),
	}
}

// defaultSavesPath resolves the saves file from the environment, falling
// back to the working directory when no home directory is available.
func defaultSavesPath() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return filepath.Join(dir, DefaultSavesFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultHomeDir, DefaultSavesFile)
	}
	return filepath.Join(home, DefaultHomeDir, DefaultSavesFile)
}

// expandHome replaces a leading "~/" with the user's home directory. The
// path is returned unchanged when no home directory is known.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	if cfg.Catalog.PokemonFile == "" {
		return fmt.Errorf("catalog.pokemon_file is required")
	}

	p := cfg.Policy
	for name, v := range map[string]float64{
		"legendary_share":      p.LegendaryShare,
		"pseudo_share":         p.PseudoShare,
		"late_evolution_share": p.LateEvolutionShare,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("policy.%s must be between 0 and 1", name)
		}
	}
	if p.TypeImbalanceFactor <= 0 {
		return fmt.Errorf("policy.type_imbalance_factor must be positive")
	}
	if p.MinRosterSize < 0 || p.MissingTypesMinRoster < 0 || p.MissingTypesMinCount < 0 {
		return fmt.Errorf("policy roster sizes must not be negative")
	}

	for i, r := range cfg.Rules {
		if r.Name == "" {
			return fmt.Errorf("rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	return nil
}
