package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/internal/database"
	"lexicon/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func searchCount(t *testing.T, db *database.DB, wordID int64) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COALESCE(SUM(search_count), 0) FROM search_stats WHERE word_id = ?", wordID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestWordRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)
	ctx := context.Background()

	n, err := repo.CountWords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	random, err := repo.RandomWord(ctx)
	require.NoError(t, err)
	assert.Nil(t, random)

	require.NoError(t, repo.InsertWords(ctx, []models.WordPair{
		{Word: "apple", Definition: "a fruit"},
		{Word: "cherry", Definition: "red fruit"},
		{Word: "apple", Definition: "a company"},
	}))

	n, err = repo.CountWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	t.Run("lowest id wins", func(t *testing.T) {
		e, err := repo.FindByWord(ctx, "apple")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "a fruit", e.Definition)
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("exact match only", func(t *testing.T) {
		for _, q := range []string{"Apple", "apple ", " apple", "appl", "kiwi"} {
			e, err := repo.FindByWord(ctx, q)
			require.NoError(t, err)
			assert.Nil(t, e, "query %q", q)
		}
	})

	t.Run("random", func(t *testing.T) {
		e, err := repo.RandomWord(ctx)
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Contains(t, []string{"apple", "cherry"}, e.Word)
	})

	require.NoError(t, repo.PurgeWords(ctx))
	n, err = repo.CountWords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchRepository(t *testing.T) {
	db := setupTestDB(t)
	words := NewWordRepository(db)
	searches := NewSearchRepository(db)
	ctx := context.Background()

	require.NoError(t, words.InsertWords(ctx, []models.WordPair{
		{Word: "apple", Definition: "a fruit"},
		{Word: "cherry", Definition: "red fruit"},
	}))
	apple, err := words.FindByWord(ctx, "apple")
	require.NoError(t, err)
	cherry, err := words.FindByWord(ctx, "cherry")
	require.NoError(t, err)

	assert.Zero(t, searchCount(t, db, apple.ID))

	require.NoError(t, searches.RecordSearch(ctx, apple.ID, "10.0.0.1"))
	require.NoError(t, searches.RecordSearch(ctx, cherry.ID, "10.0.0.2"))
	require.NoError(t, searches.RecordSearch(ctx, apple.ID, "10.0.0.1"))

	assert.Equal(t, 2, searchCount(t, db, apple.ID))
	assert.Equal(t, 1, searchCount(t, db, cherry.ID))

	recent, err := searches.RecentWords(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "cherry"}, recent)

	recent, err = searches.RecentWords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple"}, recent)

	stats, err := searches.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalWords: 2, TotalSearches: 3, TodaySearches: 3}, stats)

	require.NoError(t, words.PurgeWords(ctx))
	stats, err = searches.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)
}

func TestRecordSearchUnknownWord(t *testing.T) {
	db := setupTestDB(t)
	searches := NewSearchRepository(db)

	err := searches.RecordSearch(context.Background(), 999, "10.0.0.1")
	assert.Error(t, err)
}
