package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dexlab/dexlab/internal/catalog"
	"github.com/dexlab/dexlab/internal/store"
	"github.com/dexlab/dexlab/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [NAME]",
	Short: "List Pokémon matching filters",
	Long: `Search the dataset. Types and egg groups must all match; generations
and evolution stages match any. A --bst-min above --bst-max selects the
two outer tails of the range.

Examples:
  dexlab search char
  dexlab search --type Fire --type Flying
  dexlab search --gen 1 --gen 2 --evo 3 --bst-min 500
  dexlab search --in-dex --cr-max 45
  dexlab search --options`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var (
	searchFilter  = catalog.NewFilter()
	searchInDex   bool
	searchLimit   int
	searchOptions bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringSliceVar(&searchFilter.Types, "type", nil, "required type (repeatable)")
	f.IntSliceVar(&searchFilter.Gens, "gen", nil, "generation (repeatable)")
	f.IntSliceVar(&searchFilter.Evos, "evo", nil, "evolution stage 1-3 (repeatable)")
	f.StringSliceVar(&searchFilter.EggGroups, "egg-group", nil, "required egg group (repeatable)")
	f.IntVar(&searchFilter.BSTMin, "bst-min", catalog.BSTRangeMin, "minimum base stat total")
	f.IntVar(&searchFilter.BSTMax, "bst-max", catalog.BSTRangeMax, "maximum base stat total")
	f.IntVar(&searchFilter.CaptureRateMin, "cr-min", catalog.CaptureRateRangeMin, "minimum capture rate")
	f.IntVar(&searchFilter.CaptureRateMax, "cr-max", catalog.CaptureRateRangeMax, "maximum capture rate")
	f.BoolVar(&searchInDex, "in-dex", false, "only show Pokémon in the open dex")
	f.IntVar(&searchLimit, "limit", 0, "maximum rows to print (0 = all)")
	f.BoolVar(&searchOptions, "options", false, "list the available types, generations and egg groups")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchOptions {
		opts := cat.Options()
		gens := make([]string, len(opts.Gens))
		for i, g := range opts.Gens {
			gens[i] = fmt.Sprint(g)
		}
		fmt.Fprintf(out, "Types:       %s\n", strings.Join(opts.Types, ", "))
		fmt.Fprintf(out, "Generations: %s\n", strings.Join(gens, ", "))
		fmt.Fprintf(out, "Egg groups:  %s\n", strings.Join(opts.EggGroups, ", "))
		return nil
	}

	f := searchFilter
	if len(args) == 1 {
		f.Search = args[0]
	}
	if searchInDex {
		ids, err := openDexIDs()
		if err != nil {
			return err
		}
		found, _ := cat.Resolve(ids)
		f.InDex = catalog.InDex(found)
	}

	if !f.Active() {
		fmt.Fprintln(cmd.ErrOrStderr(), "no filters set, listing the whole dataset")
	}
	results := cat.Filter(f)
	printPokemon(out, results, searchLimit)
	return nil
}

// openDexIDs returns the ids of the last opened dex, or none.
func openDexIDs() ([]int, error) {
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	id, ok := st.Current()
	if !ok {
		return []int{}, nil
	}
	d, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	return d.PokemonIDs, nil
}

func printPokemon(w io.Writer, ps []types.Pokemon, limit int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPES\tGEN\tSTAGE\tBST\tCATCH")
	for i, p := range ps {
		if limit > 0 && i == limit {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
			p.ID, p.Name, strings.Join(p.Types, "/"), p.Gen, p.EvolutionDepth, p.BST, p.CaptureRate)
	}
	tw.Flush()
	if limit > 0 && len(ps) > limit {
		fmt.Fprintf(w, "... %d more\n", len(ps)-limit)
	} else {
		fmt.Fprintf(w, "%d result(s)\n", len(ps))
	}
}
