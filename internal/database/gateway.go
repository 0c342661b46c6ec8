package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lexicon/internal/apperrors"
)

// Relation names one of the tables the gateway may touch. Only the known
// relations are accepted so table names never come from input.
type Relation string

const (
	RelationWords         Relation = "words"
	RelationSearchStats   Relation = "search_stats"
	RelationSearchHistory Relation = "search_history"
)

func (r Relation) valid() bool {
	switch r {
	case RelationWords, RelationSearchStats, RelationSearchHistory:
		return true
	}
	return false
}

// Count returns the number of rows in rel
func (db *DB) Count(ctx context.Context, rel Relation) (int, error) {
	if !rel.valid() {
		return 0, fmt.Errorf("%w: unknown relation %q", apperrors.ErrInvalidInput, rel)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(rel)).Scan(&count); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err, "count %s", rel)
	}
	return count, nil
}

// DeleteAll removes every row of rel in one transaction. Dependent rows go
// with it through the ON DELETE CASCADE foreign keys.
func (db *DB) DeleteAll(ctx context.Context, rel Relation) error {
	if !rel.valid() {
		return fmt.Errorf("%w: unknown relation %q", apperrors.ErrInvalidInput, rel)
	}

	err := db.InTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM "+string(rel))
		return err
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err, "delete all from %s", rel)
	}
	return nil
}

// InsertBatch writes rows into rel atomically: either every row commits or
// none does. Rows are sent as multi-row INSERTs, split only when the
// dialect's placeholder limit requires it, all within one transaction.
func (db *DB) InsertBatch(ctx context.Context, rel Relation, columns []string, rows [][]any) error {
	if !rel.valid() {
		return fmt.Errorf("%w: unknown relation %q", apperrors.ErrInvalidInput, rel)
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: no columns for %s", apperrors.ErrInvalidInput, rel)
	}
	if len(rows) == 0 {
		return nil
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("%w: row %d has %d values, want %d", apperrors.ErrInvalidInput, i, len(row), len(columns))
		}
	}

	perStmt := db.Dialect.MaxPlaceholders() / len(columns)
	if perStmt < 1 {
		perStmt = 1
	}

	err := db.InTx(ctx, func(tx *Tx) error {
		for start := 0; start < len(rows); start += perStmt {
			end := min(start+perStmt, len(rows))
			query, args := buildInsert(rel, columns, rows[start:end])
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err, "insert %d rows into %s", len(rows), rel)
	}
	return nil
}

func buildInsert(rel Relation, columns []string, rows [][]any) (string, []any) {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(string(rel))
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
		args = append(args, row...)
	}
	return b.String(), args
}

// FindByExactKey selects columns from rel where keyColumn equals key,
// ordered by id so the first row is always the oldest. scan is called once
// per row; the rows are closed before FindByExactKey returns.
func (db *DB) FindByExactKey(ctx context.Context, rel Relation, keyColumn string, key any, columns []string, scan func(*sql.Rows) error) error {
	if !rel.valid() {
		return fmt.Errorf("%w: unknown relation %q", apperrors.ErrInvalidInput, rel)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id ASC",
		strings.Join(columns, ", "), rel, keyColumn)

	rows, err := db.QueryContext(ctx, query, key)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err, "query %s by %s", rel, keyColumn)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err, "scan %s", rel)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err, "iterate %s", rel)
	}
	return nil
}
