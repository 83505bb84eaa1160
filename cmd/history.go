package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kuro68k/kibom/internal/report"
	"github.com/kuro68k/kibom/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List archived BOMs or show one",
	Long:  "Without an id, lists archived BOMs newest first. With an id, prints the archived BOM as JSON, or rendered with --format.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("history"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if len(args) == 0 {
			source, _ := cmd.Flags().GetString("source")
			limit, _ := cmd.Flags().GetInt("limit")
			recs, err := st.ListBOMs(ctx, store.BOMFilter{Source: source, Limit: limit})
			if err != nil {
				return eris.Wrap(err, "history list")
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stderr, "No BOMs archived.")
				return nil
			}
			formatHistory(os.Stdout, recs)
			return nil
		}

		rec, err := st.GetBOM(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		w, err := report.ForFormat(format)
		if err != nil {
			return err
		}
		doc := *rec.Document
		if cfg.Tables.Dir != "" {
			tables, err := loadTables(cfg.Tables.Dir)
			if err != nil {
				return err
			}
			doc.Defaults = tables.Defaults
		}
		return w.Write(os.Stdout, doc)
	},
}

// formatHistory writes a tabular list of archived BOMs to out.
func formatHistory(out io.Writer, recs []store.BOMRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tREV\tSOURCE\tLINES\tPARTS\tCREATED")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Title, r.Revision, r.Source, r.Lines, r.Parts,
			r.CreatedAt.Local().Format(time.DateTime),
		)
	}
	_ = w.Flush()
}

func init() {
	historyCmd.Flags().String("source", "", "filter by schematic source file")
	historyCmd.Flags().Int("limit", 50, "max number of BOMs to list")
	historyCmd.Flags().String("format", "", "render the BOM instead of printing JSON: tsv, md, xlsx, pdf, json, text")
	rootCmd.AddCommand(historyCmd)
}
