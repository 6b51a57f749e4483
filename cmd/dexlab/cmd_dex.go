package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dexlab/dexlab/internal/roster"
	"github.com/dexlab/dexlab/internal/store"
)

var dexCmd = &cobra.Command{
	Use:   "dex",
	Short: "Manage saved dexes",
	Long: `Create, open and edit saved dexes. Commands that change a dex act on the
dex that was opened last; the change is saved immediately.`,
}

var dexNewCmd = &cobra.Command{
	Use:   "new [NAME]",
	Short: "Create an empty dex and open it",
	Args:  cobra.MaximumNArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		id, err := m.Create(name, dexDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", m.Name(), id)
		return nil
	}),
}

var dexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved dexes, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tID\tNAME\tPOKEMON\tUPDATED")
		for _, d := range dexStore.List() {
			mark := ""
			if d.ID == m.ID() {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				mark, d.ID, d.Name, len(d.PokemonIDs), d.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	}),
}

var dexLoadCmd = &cobra.Command{
	Use:   "load ID",
	Short: "Open a saved dex",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		if err := m.Load(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "opened %s (%d pokémon)\n", m.Name(), len(m.Roster()))
		return nil
	}),
}

var dexDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved dex",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		if err := m.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	}),
}

var dexShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the open dex and its statistics",
	Args:  cobra.NoArgs,
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		out := cmd.OutOrStdout()
		if dexFormat == "text" {
			printPokemon(out, m.Roster(), 0)
			fmt.Fprintln(out)
		}
		u := m.Last()
		return render(out, dexFormat, m.Name(), u.Report, u.Hits)
	}),
}

var dexAddCmd = &cobra.Command{
	Use:   "add ID...",
	Short: "Add Pokémon to the open dex",
	Args:  cobra.MinimumNArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		return eachID(cmd, args, "added", m.Add)
	}),
}

var dexRemoveCmd = &cobra.Command{
	Use:   "remove ID...",
	Short: "Remove Pokémon from the open dex",
	Args:  cobra.MinimumNArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		return eachID(cmd, args, "removed", m.Remove)
	}),
}

var dexRenameCmd = &cobra.Command{
	Use:   "rename NAME",
	Short: "Rename the open dex",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		desc := m.Description()
		if cmd.Flags().Changed("description") {
			desc = dexDescription
		}
		return m.UpdateMeta(args[0], desc)
	}),
}

var dexTemplateCmd = &cobra.Command{
	Use:   "template [NAME]",
	Short: "List templates, or replace the open dex with one",
	Args:  cobra.MaximumNArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		if len(args) == 0 {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			for _, t := range cat.Templates() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\t%s\n", t.Name, len(t.PokemonIDs), t.Description)
			}
			return nil
		}
		if err := m.LoadTemplate(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %s into %s (%d pokémon)\n", args[0], m.Name(), len(m.Roster()))
		return nil
	}),
}

var dexExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the open dex as JSON",
	Long:  "Export the open dex. Without FILE the file is named after the dex; use - for stdout.",
	Args:  cobra.MaximumNArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		path := m.ExportFileName()
		if len(args) == 1 {
			path = args[0]
		}
		if path == "-" {
			return m.Export(cmd.OutOrStdout())
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := m.Export(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", m.Name(), filepath.Clean(path))
		return nil
	}),
}

var dexImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a dex from JSON and open it",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := m.Import(f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d pokémon) as %s\n", m.Name(), len(m.Roster()), m.ID())
		return nil
	}),
}

var dexResetCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the open dex without deleting it",
	Args:  cobra.NoArgs,
	RunE: withManager(func(cmd *cobra.Command, m *roster.Manager, args []string) error {
		return m.Reset()
	}),
}

var (
	dexDescription string
	dexFormat      string
)

func init() {
	rootCmd.AddCommand(dexCmd)
	dexCmd.AddCommand(dexNewCmd, dexListCmd, dexLoadCmd, dexDeleteCmd, dexShowCmd,
		dexAddCmd, dexRemoveCmd, dexRenameCmd, dexTemplateCmd, dexExportCmd,
		dexImportCmd, dexResetCmd)

	dexNewCmd.Flags().StringVar(&dexDescription, "description", "", "dex description")
	dexRenameCmd.Flags().StringVar(&dexDescription, "description", "", "new description")
	dexShowCmd.Flags().StringVar(&dexFormat, "format", "text", "output format: text|json|prom")
}

// dexStore is the store opened by withManager, for commands that list saves.
var dexStore *store.Store

func withManager(fn func(*cobra.Command, *roster.Manager, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		m, st, err := openManager()
		if err != nil {
			return err
		}
		dexStore = st
		return fn(cmd, m, args)
	}
}

func eachID(cmd *cobra.Command, args []string, verb string, op func(int) (bool, error)) error {
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid pokémon id %q", a)
		}
		ok, err := op(id)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", verb, id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped #%d\n", id)
		}
	}
	return nil
}
