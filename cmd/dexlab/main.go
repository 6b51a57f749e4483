package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dexlab/dexlab/internal/config"
	"github.com/dexlab/dexlab/internal/rules"
)

// defaultConfigFile is read when neither --config nor DEXLAB_CONFIG is set.
// It is optional.
const defaultConfigFile = "dexlab.yaml"

var (
	configFlag   string
	logLevelFlag string

	// cfg and configPath are populated by setup before any subcommand runs.
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dexlab",
	Short: "Build Pokémon rosters and analyze their balance",
	Long: `dexlab filters the Pokémon dataset, keeps saved rosters ("dexes") on
local disk and reports type, egg group, base stat total and capture rate
statistics together with balance alerts.

Examples:
  dexlab search --type Dragon --bst-min 600
  dexlab dex new "Mono Water" && dexlab dex add 7 8 9
  dexlab analyze team.json --format prom --output /var/lib/node_exporter/dexlab.prom
  dexlab watch team.json`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default $"+config.EnvConfig+" or "+defaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override log level: debug|info|warn|error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads .env, the config file and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	envErr := godotenv.Load()

	configPath = configFlag
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfig)
	}
	if configPath == "" {
		configPath = defaultConfigFile
	}

	c, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	level := c.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("could not load .env", "err", envErr)
	}
	if err := rules.Check(c.Rules); err != nil {
		return fmt.Errorf("config rules: %w", err)
	}

	slog.Debug("config loaded",
		"path", configPath,
		"pokemon_file", c.Catalog.PokemonFile,
		"saves", c.Storage.Path,
		"rules", len(c.Rules),
	)
	cfg = c
	return nil
}
