package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/config"
	"github.com/dexlab/dexlab/internal/promfile"
	"github.com/dexlab/dexlab/internal/rules"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-analyze a roster file whenever it changes",
	Long: `Watch a roster file and print a fresh report each time it is saved.
The config file is watched too; threshold and rule changes apply to the
next report without a restart.

Examples:
  dexlab watch team.json
  dexlab watch team.json --prom-output /var/lib/node_exporter/dexlab.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchFormat     string
	watchPromOutput string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFormat, "format", "text", "output format: text|json|prom")
	watchCmd.Flags().StringVar(&watchPromOutput, "prom-output", "", "also write a textfile-collector file on every change")
}

// watcher re-runs the analysis for one roster file. The config watcher
// and the file watcher call into it from separate goroutines.
type watcher struct {
	path string
	out  io.Writer

	mu      sync.Mutex
	engine  *analytics.Engine
	rules   []config.Rule
	tracker *rules.Tracker
}

func runWatch(cmd *cobra.Command, args []string) error {
	w := &watcher{
		path:    args[0],
		out:     cmd.OutOrStdout(),
		engine:  analytics.New(cfg.Policy),
		rules:   cfg.Rules,
		tracker: rules.NewTracker(),
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.run(); err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		go func() {
			err := config.Watch(ctx, configPath, func(c *config.Config) {
				w.configure(c)
				w.rerun()
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	return config.WatchFile(ctx, w.path, w.rerun)
}

func (w *watcher) configure(c *config.Config) {
	if err := rules.Check(c.Rules); err != nil {
		slog.Error("watch: reloaded rules invalid, keeping previous", "err", err)
		return
	}
	w.mu.Lock()
	w.engine = analytics.New(c.Policy)
	w.rules = c.Rules
	w.mu.Unlock()
}

// rerun is the change callback. Errors are logged so a half-written file
// does not stop the watch.
func (w *watcher) rerun() {
	if err := w.run(); err != nil {
		slog.Warn("watch: analysis failed", "path", w.path, "err", err)
	}
}

func (w *watcher) run() error {
	name, r, err := readRosterFile(w.path)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(w.path), filepath.Ext(w.path))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	report := w.engine.Analyze(r)
	hits := rules.Evaluate(w.rules, report)
	slog.Debug("watch: analyzed", "path", w.path, "count", report.Count, "alerts", len(report.Alerts))

	if watchPromOutput != "" {
		if err := promfile.WriteFile(watchPromOutput, name, report); err != nil {
			return err
		}
	}
	fired, resolved := w.tracker.Observe(hits)

	format := strings.ToLower(watchFormat)
	if format == "text" {
		fmt.Fprintf(w.out, "\n--- %s ---\n", w.path)
		for _, e := range fired {
			fmt.Fprintf(w.out, "FIRING   %s\n", e.Message)
		}
		for _, e := range resolved {
			fmt.Fprintf(w.out, "RESOLVED %s (since %s)\n", e.Rule, e.FiredAt.Local().Format("15:04:05"))
		}
		if active := w.tracker.Active(); len(active) > 0 {
			names := make([]string, len(active))
			for i, e := range active {
				names[i] = e.Rule
			}
			fmt.Fprintf(w.out, "Active: %s\n", strings.Join(names, ", "))
		}
	}
	return render(w.out, format, name, report, hits)
}
