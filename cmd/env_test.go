//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuro68k/kibom/internal/bom"
	"github.com/kuro68k/kibom/internal/config"
	"github.com/kuro68k/kibom/internal/lookup"
	"github.com/kuro68k/kibom/internal/model"
	"github.com/kuro68k/kibom/internal/store"
)

func TestInitStore_Disabled(t *testing.T) {
	st, err := initStore(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestInitStore_SQLite(t *testing.T) {
	c := &config.Config{Store: config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "history.db"),
	}}
	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, ok := st.(*store.SQLiteStore)
	assert.True(t, ok)
}

func TestInitStore_PostgresBadURL(t *testing.T) {
	c := &config.Config{Store: config.StoreConfig{
		Driver:      "postgres",
		DatabaseURL: "postgres://%zz",
	}}
	_, err := initStore(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: parse config")
}

func TestBOMOptions(t *testing.T) {
	c := &config.Config{BOM: config.BOMConfig{Listing: "value", LegacyScale: true, RemoveUnknown: true}}
	opts, err := bomOptions(c)
	require.NoError(t, err)
	assert.Equal(t, bom.ScaleLegacy, opts.Scale)
	assert.Equal(t, bom.ListingByValue, opts.Listing)
	assert.True(t, opts.RemoveUnknown)
	assert.False(t, opts.StripUnderscore)

	c.BOM.Listing = "sideways"
	_, err = bomOptions(c)
	assert.Error(t, err)
}

func TestLoadTables_MissingDir(t *testing.T) {
	tables, err := loadTables(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, tables.Defaults.Len())
	assert.Zero(t, tables.Substitutions.Len())
}

func TestLoadTables_KeepsSubstitutionsWithoutDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lookup.SubsFile), []byte("R_0603\t0603\n"), 0o644))

	tables, err := loadTables(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Substitutions.Len())
	assert.Zero(t, tables.Defaults.Len())

	res := bom.Consolidate([]model.Component{
		{Reference: "R1", Value: "10k", Footprint: "Resistor_SMD:R_0603_1608Metric"},
	}, tables, bom.DefaultOptions())
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "0603", res.Groups[0].Components[0].FootprintNormalized)
}

func TestLoadTables_ParseErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lookup.SubsFile), []byte("no tab\n"), 0o644))

	_, err := loadTables(dir)
	assert.Error(t, err)
}
