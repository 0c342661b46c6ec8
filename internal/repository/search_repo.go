package repository

import (
	"context"
	"fmt"

	"lexicon/internal/database"
	"lexicon/internal/models"
)

// SearchRepository records lookups and reads them back for the stats pages
type SearchRepository struct {
	db *database.DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(db *database.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// RecordSearch bumps the entry's search count and appends a history row in
// one transaction.
func (r *SearchRepository) RecordSearch(ctx context.Context, wordID int64, ip string) error {
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertSearchStat(), wordID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO search_history (word_id, ip_address) VALUES (?, ?)", wordID, ip)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record search for word %d: %w", wordID, err)
	}
	return nil
}

// RecentWords returns up to limit distinct searched words, most recent first.
// History ids grow with time, so the newest id stands in for the newest
// timestamp.
func (r *SearchRepository) RecentWords(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT w.word
		FROM words w
		INNER JOIN search_history h ON w.id = h.word_id
		GROUP BY w.word
		ORDER BY MAX(h.id) DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	words := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// Stats returns word and search totals
func (r *SearchRepository) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	var err error

	if stats.TotalWords, err = r.db.Count(ctx, database.RelationWords); err != nil {
		return stats, err
	}
	if stats.TotalSearches, err = r.db.Count(ctx, database.RelationSearchHistory); err != nil {
		return stats, err
	}

	query := "SELECT COUNT(*) FROM search_history WHERE " + r.db.Dialect.TodayCondition("searched_at")
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TodaySearches); err != nil {
		return stats, fmt.Errorf("failed to count today's searches: %w", err)
	}

	return stats, nil
}
