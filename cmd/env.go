package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kuro68k/kibom/internal/bom"
	"github.com/kuro68k/kibom/internal/config"
	"github.com/kuro68k/kibom/internal/kicad"
	"github.com/kuro68k/kibom/internal/lookup"
	"github.com/kuro68k/kibom/internal/model"
	"github.com/kuro68k/kibom/internal/report"
	"github.com/kuro68k/kibom/internal/store"
)

// bomEnv holds what a command or request needs to build a BOM.
type bomEnv struct {
	Tables  lookup.Tables
	Options bom.Options
	// Store is nil when archiving is disabled.
	Store store.Store
}

// Close releases the store, if any.
func (e *bomEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv loads the lookup tables from tablesDir and opens the store.
func initEnv(ctx context.Context, c *config.Config, tablesDir string) (*bomEnv, error) {
	opts, err := bomOptions(c)
	if err != nil {
		return nil, err
	}
	tables, err := loadTables(tablesDir)
	if err != nil {
		return nil, err
	}
	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}
	return &bomEnv{Tables: tables, Options: opts, Store: st}, nil
}

func bomOptions(c *config.Config) (bom.Options, error) {
	listing, err := bom.ParseListing(c.BOM.Listing)
	if err != nil {
		return bom.Options{}, err
	}
	opts := bom.Options{
		Scale:           bom.ScaleSI,
		Listing:         listing,
		RemoveUnknown:   c.BOM.RemoveUnknown,
		StripUnderscore: c.BOM.StripUnderscore,
	}
	if c.BOM.LegacyScale {
		opts.Scale = bom.ScaleLegacy
	}
	return opts, nil
}

// loadTables reads the lookup tables from dir. A missing table file is a
// warning: its table is left empty and the other table is still used.
// Without substitutions footprints pass through unnormalized; without
// defaults headings use the bare designator.
func loadTables(dir string) (lookup.Tables, error) {
	tables, err := lookup.LoadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("lookup table not found, continuing without it",
			zap.String("dir", dir),
			zap.Error(err),
		)
	} else if err != nil {
		return lookup.Tables{}, err
	}
	zap.L().Debug("lookup tables loaded",
		zap.String("dir", dir),
		zap.Int("substitutions", tables.Substitutions.Len()),
		zap.Int("defaults", tables.Defaults.Len()),
	)
	return tables, nil
}

// initStore opens and migrates the history store. It returns nil when no
// store is configured.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if !c.Store.Enabled() {
		return nil, nil
	}
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		st, err = store.NewSQLite(c.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// buildDocument decodes a KiCad export from r and consolidates it. The
// returned warnings include components the decoder had to skip.
func (e *bomEnv) buildDocument(ctx context.Context, r io.Reader) (report.Document, []model.Warning, error) {
	src, err := kicad.Load(ctx, r)
	if err != nil {
		return report.Document{}, nil, eris.Wrap(err, "build bom")
	}
	res := bom.Consolidate(src.Components, e.Tables, e.Options)
	warns := slices.Concat(src.Skipped, res.Warnings)
	return report.NewDocument(src.Header, res, e.Tables.Defaults), warns, nil
}

func logWarnings(warns []model.Warning) {
	for _, w := range warns {
		fields := []zap.Field{
			zap.String("ref", w.Reference),
			zap.String("kind", string(w.Kind)),
		}
		if w.Err != nil {
			fields = append(fields, zap.Error(w.Err))
		}
		zap.L().Warn("component warning", fields...)
	}
}
