package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/dexlab/dexlab/internal/analytics"
	"github.com/dexlab/dexlab/internal/rules"
)

type jsonReport struct {
	Dex    string           `json:"dex"`
	Report analytics.Report `json:"report"`
	Hits   []rules.Hit      `json:"rule_hits"`
}

func renderJSON(w io.Writer, dex string, r analytics.Report, hits []rules.Hit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Dex: dex, Report: r, Hits: hits})
}

func renderText(w io.Writer, dex string, r analytics.Report, hits []rules.Hit) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Dex:\t%s\n", dex)
	fmt.Fprintf(tw, "Pokémon:\t%d\n", r.Count)
	fmt.Fprintf(tw, "Types:\t%s\n", tally(r.TypeCounts))
	fmt.Fprintf(tw, "Egg groups:\t%s\n", tally(r.EggGroupCounts))
	fmt.Fprintf(tw, "Common / rare type:\t%s / %s\n", r.CommonType, r.RareType)
	fmt.Fprintf(tw, "Common / rare egg group:\t%s / %s\n", r.CommonEggGroup, r.RareEggGroup)
	fmt.Fprintf(tw, "Families by stage:\t1: %d  2: %d  3: %d\n",
		r.EvolutionDepthCounts[1], r.EvolutionDepthCounts[2], r.EvolutionDepthCounts[3])
	fmt.Fprintf(tw, "Legendary / mythical / pseudo / late:\t%d / %d / %d / %d\n",
		r.LegendaryCount, r.MythicalCount, r.PseudoCount, r.LateEvolutionCount)
	fmt.Fprintf(tw, "BST avg:\t%d\n", r.AvgBST)
	fmt.Fprintf(tw, "BST min/q1/median/q3/max:\t%d / %d / %d / %d / %d\n",
		r.MinBST, r.Q1BST, r.MedianBST, r.Q3BST, r.MaxBST)
	fmt.Fprintf(tw, "BST distribution:\t%s\n", tally(r.BSTDistribution))
	fmt.Fprintf(tw, "BST outliers:\t%s\n", outliers(r.BSTBoxPlot))
	fmt.Fprintf(tw, "Capture rate avg:\t%d\n", r.AvgCaptureRate)
	fmt.Fprintf(tw, "Capture rate min/q1/median/q3/max:\t%d / %d / %d / %d / %d\n",
		r.MinCaptureRate, r.Q1CaptureRate, r.MedianCaptureRate, r.Q3CaptureRate, r.MaxCaptureRate)
	fmt.Fprintf(tw, "Capture rate outliers:\t%s\n", outliers(r.CaptureRateBoxPlot))
	fmt.Fprintf(tw, "Hardest to catch:\t%s\n", ranked(r.HardestToCatch))
	fmt.Fprintf(tw, "Easiest to catch:\t%s\n", ranked(r.EasiestToCatch))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Alerts) > 0 {
		fmt.Fprintln(w, "\nAlerts:")
		for _, a := range r.Alerts {
			fmt.Fprintf(w, "  ! %s\n", a)
		}
	}
	if len(hits) > 0 {
		fmt.Fprintln(w, "\nRules:")
		for _, m := range rules.Messages(hits) {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	return nil
}

func tally(t analytics.Tally) string {
	if t.Len() == 0 {
		return "-"
	}
	parts := make([]string, 0, t.Len())
	t.Each(func(name string, n int) { parts = append(parts, fmt.Sprintf("%s %d", name, n)) })
	return strings.Join(parts, ", ")
}

func outliers(b *analytics.BoxPlot) string {
	if b == nil || len(b.Outliers) == 0 {
		return "-"
	}
	parts := make([]string, len(b.Outliers))
	for i, o := range b.Outliers {
		parts[i] = fmt.Sprintf("%s (%d)", o.Name, o.Value)
	}
	return strings.Join(parts, ", ")
}

func ranked(rs []analytics.Ranked) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%s (%d)", r.Name, r.CaptureRate)
	}
	return strings.Join(parts, ", ")
}
