package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kuro68k/kibom/internal/lookup"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults [designator]",
	Short: "Show the designator defaults table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("tables")
		if dir == "" {
			dir = cfg.Tables.Dir
		}
		if dir == "" {
			dir = "."
		}

		tables, err := loadTables(dir)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			formatDefaults(os.Stdout, tables.Defaults.All())
			return nil
		}

		def, ok := tables.Defaults.Lookup(args[0])
		if !ok {
			return eris.Errorf("defaults: no entry for designator %q", args[0])
		}
		formatDefaults(os.Stdout, []lookup.Default{def})
		return nil
	},
}

// formatDefaults writes a tabular list of defaults to out.
func formatDefaults(out io.Writer, defs []lookup.Default) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DESIGNATOR\tLONG NAME\tDEFAULT TYPE")
	for _, d := range defs {
		typ := d.DefaultType
		if !d.HasDefault() {
			typ = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Designator, d.LongName, typ)
	}
	_ = w.Flush()
}

func init() {
	defaultsCmd.Flags().String("tables", "", "lookup tables directory (default from config, else .)")
	rootCmd.AddCommand(defaultsCmd)
}
