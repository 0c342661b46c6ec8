package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lexicon/internal/database"
	"lexicon/internal/models"
)

var (
	wordInsertColumns = []string{"word", "definition"}
	wordSelectColumns = []string{"id", "word", "definition", "created_at"}
)

// WordRepository handles database operations for dictionary entries
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

// CountWords returns the number of stored entries
func (r *WordRepository) CountWords(ctx context.Context) (int, error) {
	return r.db.Count(ctx, database.RelationWords)
}

// PurgeWords deletes every entry along with its stats and history
func (r *WordRepository) PurgeWords(ctx context.Context) error {
	return r.db.DeleteAll(ctx, database.RelationWords)
}

// InsertWords stores pairs as one atomic batch
func (r *WordRepository) InsertWords(ctx context.Context, pairs []models.WordPair) error {
	rows := make([][]any, len(pairs))
	for i, p := range pairs {
		rows[i] = []any{p.Word, p.Definition}
	}
	return r.db.InsertBatch(ctx, database.RelationWords, wordInsertColumns, rows)
}

// FindByWord returns the lowest-id entry whose word equals word exactly, or
// nil when there is none. The comparison is repeated here because some
// collations treat trailing spaces as insignificant.
func (r *WordRepository) FindByWord(ctx context.Context, word string) (*models.WordEntry, error) {
	var found *models.WordEntry

	err := r.db.FindByExactKey(ctx, database.RelationWords, "word", word, wordSelectColumns, func(rows *sql.Rows) error {
		if found != nil {
			return nil
		}
		var e models.WordEntry
		if err := rows.Scan(&e.ID, &e.Word, &e.Definition, &e.CreatedAt); err != nil {
			return err
		}
		if e.Word == word {
			found = &e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// RandomWord returns an arbitrary entry, or nil when the store is empty
func (r *WordRepository) RandomWord(ctx context.Context) (*models.WordEntry, error) {
	query := "SELECT id, word, definition, created_at FROM words ORDER BY " + r.db.Dialect.RandomOrder() + " LIMIT 1"

	e := &models.WordEntry{}
	err := r.db.QueryRowContext(ctx, query).Scan(&e.ID, &e.Word, &e.Definition, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random word: %w", err)
	}

	return e, nil
}
