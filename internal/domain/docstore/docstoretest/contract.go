// Package docstoretest holds the behaviour every docstore.Store driver must
// share, run against each driver from its own tests.
package docstoretest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
)

func day(d int) *time.Time {
	v := time.Date(2026, 10, d, 15, 0, 0, 0, time.UTC)
	return &v
}

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		_, ok, err := store.Get(context.Background(), docstore.CollectionMatches, "nope")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("upsert replaces body", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "1", CompetitionID: "PL", Date: day(18), Body: []byte(`{"v":1}`)},
		}))
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "1", CompetitionID: "PL", Date: day(18), Body: []byte(`{"v":2}`)},
		}))

		doc, ok, err := store.Get(ctx, docstore.CollectionMatches, "1")
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, `{"v":2}`, string(doc.Body))
		require.Equal(t, "PL", doc.CompetitionID)
		require.True(t, doc.Date.Equal(*day(18)))
	})

	t.Run("admin flag is sticky", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "1", AdminCurated: true, Body: []byte(`{}`)},
		}))
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "1", Body: []byte(`{"v":1}`)},
		}))

		doc, ok, err := store.Get(ctx, docstore.CollectionMatches, "1")
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, doc.AdminCurated)
	})

	t.Run("rejects missing key", func(t *testing.T) {
		store := newStore(t)
		err := store.UpsertMany(context.Background(), []docstore.Document{{Collection: docstore.CollectionMatches}})
		require.Error(t, err)
	})

	t.Run("find orders by date then key", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "c", Date: day(19), Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "b", Date: day(18), Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "a", Date: day(18), Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "z", Body: []byte(`{}`)},
			{Collection: docstore.CollectionNews, Key: "n", Body: []byte(`{}`)},
		}))

		docs, err := store.Find(ctx, docstore.Filter{Collection: docstore.CollectionMatches})
		require.NoError(t, err)
		keys := make([]string, 0, len(docs))
		for _, d := range docs {
			keys = append(keys, d.Key)
		}
		require.Equal(t, []string{"a", "b", "c", "z"}, keys)
	})

	t.Run("distinct", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "1", CompetitionID: "SA", Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "2", CompetitionID: "PL", Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "3", CompetitionID: "PL", Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "4", Body: []byte(`{}`)},
		}))

		values, err := store.Distinct(ctx, docstore.Filter{Collection: docstore.CollectionMatches}, docstore.FieldCompetitionID)
		require.NoError(t, err)
		require.Equal(t, []string{"PL", "SA"}, values)

		_, err = store.Distinct(ctx, docstore.Filter{Collection: docstore.CollectionMatches}, "body")
		require.Error(t, err)
	})

	t.Run("delete many honours filter", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.UpsertMany(ctx, []docstore.Document{
			{Collection: docstore.CollectionMatches, Key: "old", CompetitionID: "PL", Date: day(1), Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "admin", CompetitionID: "PL", Date: day(1), AdminCurated: true, Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "keep", CompetitionID: "PL", Date: day(20), Body: []byte(`{}`)},
			{Collection: docstore.CollectionMatches, Key: "other", CompetitionID: "SA", Date: day(1), Body: []byte(`{}`)},
		}))

		n, err := store.DeleteMany(ctx, docstore.Filter{
			Collection:          docstore.CollectionMatches,
			CompetitionID:       "PL",
			DateTo:              day(10),
			ExcludeAdminCurated: true,
		})
		require.NoError(t, err)
		require.Equal(t, 1, n)

		docs, err := store.Find(ctx, docstore.Filter{Collection: docstore.CollectionMatches})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for _, d := range docs {
			require.NotEqual(t, "old", d.Key)
		}
	})
}
