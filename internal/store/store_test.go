package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuro68k/kibom/internal/model"
	"github.com/kuro68k/kibom/internal/report"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testDocument(title, source string) report.Document {
	return report.Document{
		Header: model.Header{Title: title, Source: source, Revision: "A", Date: "2024-01-01"},
		Groups: []model.DesignatorGroup{
			{Designator: "C", Components: []model.Component{
				{Reference: "C1", References: []string{"C1", "C3"}, Value: "100n", Count: 2},
			}},
			{Designator: "R", Components: []model.Component{
				{Reference: "R1", References: []string{"R1"}, Value: "4.7k", Count: 1},
				{Reference: "R2", References: []string{"R2", "R5", "R10"}, Value: "10k", Count: 3},
			}},
		},
		NoFit: []model.DesignatorGroup{
			{Designator: "J", Components: []model.Component{
				{Reference: "J1", References: []string{"J1"}, Value: "CONN", NoFit: true, Count: 1},
			}},
		},
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGetBOM", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		doc := testDocument("Bench PSU", "psu.sch")
		rec, err := s.SaveBOM(ctx, doc)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, 3, rec.Lines)
		assert.Equal(t, 6, rec.Parts)

		got, err := s.GetBOM(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, "Bench PSU", got.Title)
		assert.Equal(t, "psu.sch", got.Source)
		assert.Equal(t, "A", got.Revision)
		assert.Equal(t, 3, got.Lines)
		assert.False(t, got.CreatedAt.IsZero())
		require.NotNil(t, got.Document)
		assert.Equal(t, doc.Header, got.Document.Header)
		assert.Equal(t, []string{"R2", "R5", "R10"}, got.Document.Groups[1].Components[1].References)
		require.Len(t, got.Document.NoFit, 1)
		assert.True(t, got.Document.NoFit[0].Components[0].NoFit)
	})

	t.Run("GetBOMNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetBOM(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("ListBOMs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.SaveBOM(ctx, testDocument("one", "a.sch"))
		require.NoError(t, err)
		second, err := s.SaveBOM(ctx, testDocument("two", "b.sch"))
		require.NoError(t, err)
		third, err := s.SaveBOM(ctx, testDocument("three", "a.sch"))
		require.NoError(t, err)

		all, err := s.ListBOMs(ctx, BOMFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, third.ID, all[0].ID)
		assert.Nil(t, all[0].Document)

		bySource, err := s.ListBOMs(ctx, BOMFilter{Source: "a.sch"})
		require.NoError(t, err)
		require.Len(t, bySource, 2)
		assert.Equal(t, third.ID, bySource[0].ID)
		assert.Equal(t, first.ID, bySource[1].ID)

		page, err := s.ListBOMs(ctx, BOMFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, second.ID, page[0].ID)
	})

	t.Run("DeleteBOM", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rec, err := s.SaveBOM(ctx, testDocument("gone", "x.sch"))
		require.NoError(t, err)
		require.NoError(t, s.DeleteBOM(ctx, rec.ID))

		_, err = s.GetBOM(ctx, rec.ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		err = s.DeleteBOM(ctx, rec.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("MigrateIdempotent", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Migrate(context.Background()))
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
