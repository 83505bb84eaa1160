package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kuro68k/kibom/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate <bom.xml>",
	Short: "Generate BOM files from a KiCad export",
	Long:  "Reads a KiCad BOM/netlist XML export, consolidates it and writes one file per output format next to the input (or into --out).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]

		if f, _ := cmd.Flags().GetStringSlice("format"); len(f) > 0 {
			cfg.Output.Formats = f
		}
		if d, _ := cmd.Flags().GetString("out"); d != "" {
			cfg.Output.Dir = d
		}
		if d, _ := cmd.Flags().GetString("tables"); d != "" {
			cfg.Tables.Dir = d
		}
		if l, _ := cmd.Flags().GetString("listing"); l != "" {
			cfg.BOM.Listing = l
		}
		if err := cfg.Validate("generate"); err != nil {
			return err
		}

		writers, err := writersFor(cfg.Output.Formats)
		if err != nil {
			return err
		}

		inputDir := filepath.Dir(input)
		tablesDir := cfg.Tables.Dir
		if tablesDir == "" {
			tablesDir = inputDir
		}
		outDir := cfg.Output.Dir
		if outDir == "" {
			outDir = inputDir
		}

		env, err := initEnv(ctx, cfg, tablesDir)
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(input) //nolint:gosec // user-supplied input path
		if err != nil {
			return eris.Wrapf(err, "generate: open %s", input)
		}
		defer f.Close() //nolint:errcheck

		doc, warns, err := env.buildDocument(ctx, f)
		if err != nil {
			return err
		}
		logWarnings(warns)

		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		paths, err := renderFiles(ctx, doc, writers, outDir, base)
		if err != nil {
			return err
		}
		for _, p := range paths {
			zap.L().Info("generated", zap.String("file", p))
		}

		if env.Store != nil {
			rec, err := env.Store.SaveBOM(ctx, doc)
			if err != nil {
				return eris.Wrap(err, "generate: archive bom")
			}
			zap.L().Info("archived", zap.String("id", rec.ID))
		}
		return nil
	},
}

func writersFor(formats []string) ([]report.Writer, error) {
	seen := make(map[string]bool, len(formats))
	var out []report.Writer
	for _, name := range formats {
		w, err := report.ForFormat(name)
		if err != nil {
			return nil, err
		}
		if seen[w.Ext()] {
			continue
		}
		seen[w.Ext()] = true
		out = append(out, w)
	}
	return out, nil
}

// renderFiles writes doc once per writer, concurrently, to dir/base.<ext>.
// It returns the paths in writer order.
func renderFiles(ctx context.Context, doc report.Document, writers []report.Writer, dir, base string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "generate: create %s", dir)
	}

	paths := make([]string, len(writers))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range writers {
		path := filepath.Join(dir, base+"."+w.Ext())
		paths[i] = path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return writeFile(path, w, doc)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "generate: render")
	}
	return paths, nil
}

func writeFile(path string, w report.Writer, doc report.Document) error {
	f, err := os.Create(path) //nolint:gosec // output path derived from input
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := w.Write(f, doc); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func init() {
	generateCmd.Flags().StringSlice("format", nil, "output formats: tsv, md, xlsx, pdf, json, text (default from config)")
	generateCmd.Flags().String("out", "", "output directory (default: next to the input)")
	generateCmd.Flags().String("tables", "", "lookup tables directory (default: next to the input)")
	generateCmd.Flags().String("listing", "", "record order within groups: reference or value")
	rootCmd.AddCommand(generateCmd)
}
