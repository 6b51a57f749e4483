package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/promfile"
	"github.com/dexlab/dexlab/internal/rules"
	"github.com/dexlab/dexlab/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Print statistics for a roster file",
	Long: `Analyze a roster file and print its statistics report.

FILE is either a JSON array of Pokémon records or a dex export
({"name": ..., "pokemon": [...]}).

Examples:
  dexlab analyze team.json
  dexlab analyze team.json --format json
  dexlab analyze team.json --format prom --output dexlab.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFormat string
	analyzeOutput string
	analyzeName   string
	analyzeStrict bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text|json|prom")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "write to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "dex name used in output (default: from file)")
	analyzeCmd.Flags().BoolVar(&analyzeStrict, "strict", false, "reject records with missing types or out-of-range values")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	name, r, err := readRosterFile(path)
	if err != nil {
		return err
	}
	if analyzeName != "" {
		name = analyzeName
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	report, err := analyze(r)
	if err != nil {
		return err
	}
	hits := rules.Evaluate(cfg.Rules, report)

	format := strings.ToLower(analyzeFormat)
	if err := checkFormat(format); err != nil {
		return err
	}
	if analyzeOutput == "" {
		return render(cmd.OutOrStdout(), format, name, report, hits)
	}
	if format == "prom" {
		return promfile.WriteFile(analyzeOutput, name, report)
	}

	f, err := os.Create(analyzeOutput)
	if err != nil {
		return err
	}
	if err := render(f, format, name, report, hits); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyze(r types.Roster) (analytics.Report, error) {
	engine := analytics.New(cfg.Policy)
	if analyzeStrict {
		return engine.AnalyzeStrict(r)
	}
	return engine.Analyze(r), nil
}

// checkFormat rejects an unknown --format before any output file is touched.
func checkFormat(format string) error {
	switch format {
	case "json", "prom", "text", "":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or prom)", format)
}

func render(w io.Writer, format, name string, r analytics.Report, hits []rules.Hit) error {
	switch format {
	case "json":
		return renderJSON(w, name, r, hits)
	case "prom":
		return promfile.Write(w, name, r)
	case "text", "":
		return renderText(w, name, r, hits)
	default:
		return checkFormat(format)
	}
}
