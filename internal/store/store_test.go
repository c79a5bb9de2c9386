package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/db"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

func openSQL(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(conn)
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": openSQL(t),
	}
}

func TestLatestOnEmptyStore(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.LatestCatalog(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.LatestResult(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := catalog.New([]scorecard.RawRow{{ID: "a", GoalNumber: 1, Dimension: "econ"}}, "Textiles")
			second := catalog.New([]scorecard.RawRow{
				{ID: "b", GoalNumber: "2", Dimension: "social", Question: "why?"},
				{ID: "c", GoalNumber: 3, Dimension: "circular", Sector: "pack"},
			}, "Fertilizers")
			second.Source = catalog.SourceUploaded

			require.NoError(t, s.PutCatalog(ctx, CatalogRecord{ID: "c1", Catalog: first, CreatedAt: base}))
			require.NoError(t, s.PutCatalog(ctx, CatalogRecord{ID: "c2", Catalog: second, CreatedAt: base.Add(time.Minute)}))

			got, err := s.LatestCatalog(ctx)
			require.NoError(t, err)
			assert.Equal(t, "c2", got.ID)
			assert.Equal(t, "Fertilizers", got.Catalog.Sector)
			assert.Equal(t, catalog.SourceUploaded, got.Catalog.Source)
			assert.Equal(t, 2, got.Catalog.TotalQuestions)
			assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))

			rows := got.Catalog.Rows()
			require.Len(t, rows, 2)
			assert.Equal(t, 2, rows[0].Goal())
			assert.Equal(t, scorecard.Social, rows[0].Dimension)
			assert.Equal(t, scorecard.Packaging, rows[1].Sector)
		})
	}
}

func TestResultRoundTripAndClear(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := scorecard.ScoreResponses(scorecard.Submission{
		Sector:    scorecard.Textiles,
		Questions: []scorecard.RawRow{{GoalNumber: 7, Dimension: "env"}},
		Responses: []scorecard.Response{{QuestionID: "textiles|7|environmental performance", Score: 4}},
	})
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.PutCatalog(ctx, CatalogRecord{ID: "c1", Catalog: catalog.New(nil, ""), CreatedAt: base}))
			require.NoError(t, s.PutResult(ctx, ResultRecord{ID: "r1", SessionID: "s", Result: res, CreatedAt: base}))

			got, err := s.LatestResult(ctx)
			require.NoError(t, err)
			assert.Equal(t, "r1", got.ID)
			assert.Equal(t, "s", got.SessionID)
			grid, err := scorecard.Aggregate(got.Result.Rows(scorecard.Textiles), scorecard.Textiles)
			require.NoError(t, err)
			assert.Equal(t, 4, grid.At(7, scorecard.Environmental).Score)

			require.NoError(t, s.Clear(ctx))
			_, err = s.LatestResult(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.LatestCatalog(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
