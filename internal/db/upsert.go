// internal/db/upsert.go
package db

import (
	"context"
	"fmt"
	"strings"
)

var knownTables = map[string]bool{
	"tournaments":       true,
	"series":            true,
	"tournament_series": true,
	"teams":             true,
	"team_tournaments":  true,
	"tournament_phases": true,
	"phase_groups":      true,
	"matches":           true,
	"next_matches":      true,
	"standings":         true,
	"suspended_players": true,
	"gallery":           true,
	"club_info":         true,
}

// UpsertRow is one row of an upsert. Columns and Values are parallel.
type UpsertRow struct {
	Columns []string
	Values  []any
}

// UpsertBatch describes an insert-or-update keyed by a unique column.
type UpsertBatch struct {
	Table          string
	ConflictColumn string
	// Immutable columns are written on insert but never overwritten on conflict.
	Immutable []string
	// TouchUpdatedAt sets updated_at on conflict for tables that carry it.
	TouchUpdatedAt bool
	Rows           []UpsertRow
}

func (b UpsertBatch) validate() error {
	if !knownTables[b.Table] {
		return fmt.Errorf("unknown table %q", b.Table)
	}
	if b.ConflictColumn == "" {
		return fmt.Errorf("conflict column is required")
	}
	for i, row := range b.Rows {
		if len(row.Columns) != len(row.Values) {
			return fmt.Errorf("row %d: %d columns but %d values", i, len(row.Columns), len(row.Values))
		}
		if !containsColumn(row.Columns, b.ConflictColumn) {
			return fmt.Errorf("row %d: missing conflict column %q", i, b.ConflictColumn)
		}
	}
	return nil
}

func containsColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// upsertStatement builds the INSERT ... ON CONFLICT statement for one row.
// Column names come from a fixed schema, never from request input.
func upsertStatement(b UpsertBatch, row UpsertRow) string {
	var set []string
	for _, c := range row.Columns {
		if c == b.ConflictColumn || containsColumn(b.Immutable, c) {
			continue
		}
		set = append(set, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	if b.TouchUpdatedAt {
		set = append(set, "updated_at = CURRENT_TIMESTAMP")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(row.Columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		b.Table, strings.Join(row.Columns, ", "), placeholders, b.ConflictColumn)
	if len(set) == 0 {
		return stmt + "DO NOTHING"
	}
	return stmt + "DO UPDATE SET " + strings.Join(set, ", ")
}

// Upsert writes every row of the batch. Callers wanting all-or-nothing
// semantics run it through RunInTx.
func (q *Queries) Upsert(ctx context.Context, b UpsertBatch) (int, error) {
	if err := b.validate(); err != nil {
		return 0, err
	}
	for i, row := range b.Rows {
		if _, err := q.exec(ctx, upsertStatement(b, row), row.Values...); err != nil {
			return i, fmt.Errorf("upsert %s row %d: %w", b.Table, i, err)
		}
	}
	return len(b.Rows), nil
}

// UpsertInTx applies the batch inside a single transaction.
func (db *DB) UpsertInTx(ctx context.Context, b UpsertBatch) (int, error) {
	var n int
	err := db.RunInTx(ctx, func(tx *DB) error {
		var err error
		n, err = tx.Queries.Upsert(ctx, b)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
