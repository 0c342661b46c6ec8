package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/internal/apperrors"
	"lexicon/internal/config"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "lexicon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

var wordColumns = []string{"word", "definition"}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureSchema(ctx))

	for _, table := range []string{"words", "search_stats", "search_history", "migrations"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestConnectUnsupportedType(t *testing.T) {
	_, err := Connect(context.Background(), config.DatabaseConfig{Type: "oracle"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConnection)
}

func TestInsertBatchAndCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := [][]any{{"apple", "a fruit"}, {"cherry", "red fruit"}, {"apple", "a company"}}
	require.NoError(t, db.InsertBatch(ctx, RelationWords, wordColumns, rows))

	n, err := db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, db.InsertBatch(ctx, RelationWords, wordColumns, nil))
	n, err = db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInsertBatchSplitsAtPlaceholderLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// 600 rows * 2 columns exceeds SQLite's 999 bind parameters.
	rows := make([][]any, 600)
	for i := range rows {
		rows[i] = []any{"w", "d"}
	}
	require.NoError(t, db.InsertBatch(ctx, RelationWords, wordColumns, rows))

	n, err := db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 600, n)
}

func TestInsertBatchIsAtomic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := make([][]any, 700)
	for i := range rows {
		rows[i] = []any{"w", "d"}
	}
	// NOT NULL violation in the second statement must undo the first one too.
	rows[650] = []any{"w", nil}

	err := db.InsertBatch(ctx, RelationWords, wordColumns, rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))

	n, err := db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsertBatchRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.InsertBatch(ctx, Relation("users"), wordColumns, [][]any{{"a", "b"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = db.InsertBatch(ctx, RelationWords, wordColumns, [][]any{{"a"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteAllCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertBatch(ctx, RelationWords, wordColumns, [][]any{{"apple", "a fruit"}}))

	var id int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT id FROM words WHERE word = ?", "apple").Scan(&id))
	_, err := db.ExecContext(ctx, db.Dialect.UpsertSearchStat(), id)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO search_history (word_id, ip_address) VALUES (?, ?)", id, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, db.DeleteAll(ctx, RelationWords))

	for _, rel := range []Relation{RelationWords, RelationSearchStats, RelationSearchHistory} {
		n, err := db.Count(ctx, rel)
		require.NoError(t, err)
		assert.Equal(t, 0, n, "relation %s", rel)
	}
}

func TestFindByExactKeyOrdersByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := [][]any{{"apple", "first"}, {"Apple", "capital"}, {"apple", "second"}, {"apple ", "padded"}}
	require.NoError(t, db.InsertBatch(ctx, RelationWords, wordColumns, rows))

	var defs []string
	err := db.FindByExactKey(ctx, RelationWords, "word", "apple", []string{"definition"}, func(r *sql.Rows) error {
		var d string
		if err := r.Scan(&d); err != nil {
			return err
		}
		defs = append(defs, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, defs)

	defs = nil
	err = db.FindByExactKey(ctx, RelationWords, "word", "kiwi", []string{"definition"}, func(r *sql.Rows) error {
		defs = append(defs, "unexpected")
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestInTxRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO words (word, definition) VALUES (?, ?)", "apple", "a fruit"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, db.InTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO words (word, definition) VALUES (?, ?)", "apple", "a fruit")
		return err
	}))

	n, err = db.Count(ctx, RelationWords)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
