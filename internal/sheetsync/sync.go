// internal/sheetsync/sync.go
package sheetsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/db"
)

// Store applies one upsert batch atomically.
type Store interface {
	UpsertInTx(ctx context.Context, batch db.UpsertBatch) (int, error)
}

// UpsertError carries a store rejection; its message is the store's.
type UpsertError struct {
	Type Type
	Err  error
}

func (e *UpsertError) Error() string {
	return e.Err.Error()
}

func (e *UpsertError) Unwrap() error {
	return e.Err
}

type Request struct {
	Type string           `json:"type"`
	Data []map[string]any `json:"data"`
}

type Result struct {
	Type    Type
	Rows    int
	Message string
}

type Service struct {
	store Store
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// Apply upserts req.Data into the table selected by req.Type. Rows are
// validated up front; the store is called once, and only when every row
// maps cleanly.
func (s *Service) Apply(ctx context.Context, req Request) (Result, error) {
	logger := log.Ctx(ctx)

	syncType, err := ParseType(req.Type)
	if err != nil {
		return Result{}, err
	}
	spec := specs[syncType]

	logger.Info().Str("type", string(syncType)).Int("rows", len(req.Data)).Msg("Processing sync update")

	batch, err := s.buildBatch(spec, req.Data)
	if err != nil {
		return Result{}, err
	}

	n, err := s.store.UpsertInTx(ctx, batch)
	if err != nil {
		return Result{}, &UpsertError{Type: syncType, Err: err}
	}

	result := Result{
		Type:    syncType,
		Rows:    n,
		Message: fmt.Sprintf("%s updated successfully", spec.Label),
	}
	logger.Info().Str("type", string(syncType)).Int("rows", n).Msg("Sync update applied")
	return result, nil
}

func (s *Service) buildBatch(spec TableSpec, data []map[string]any) (db.UpsertBatch, error) {
	batch := db.UpsertBatch{
		Table:          spec.Table,
		ConflictColumn: spec.ConflictKey,
		TouchUpdatedAt: spec.TouchUpdatedAt,
		Rows:           make([]db.UpsertRow, 0, len(data)),
	}
	if spec.ConflictKey != "id" {
		batch.Immutable = []string{"id"}
	}

	for i, raw := range data {
		row, err := s.mapRow(spec, i, raw)
		if err != nil {
			return db.UpsertBatch{}, err
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

// mapRow validates one incoming row against the table's columns. Column
// order follows the table definition so statements are deterministic.
func (s *Service) mapRow(spec TableSpec, index int, raw map[string]any) (db.UpsertRow, error) {
	if raw == nil {
		return db.UpsertRow{}, &RowError{Index: index, Reason: "must be an object"}
	}

	var unknown []string
	for name := range raw {
		if ignoredColumns[name] {
			continue
		}
		if _, ok := spec.column(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return db.UpsertRow{}, &RowError{Index: index, Column: unknown[0], Reason: "is not a known column"}
	}

	var row db.UpsertRow
	for _, col := range spec.Columns {
		value, present := raw[col.Name]
		coerced, err := coerce(col.Kind, value)
		if err != nil {
			return db.UpsertRow{}, &RowError{Index: index, Column: col.Name, Reason: err.Error()}
		}

		if coerced == nil {
			switch {
			case col.Name == "id" && spec.GenerateID:
				coerced = s.newID()
			case col.Required:
				return db.UpsertRow{}, &RowError{Index: index, Column: col.Name, Reason: "is required"}
			case col.Defaulted || !present:
				continue
			}
		}

		row.Columns = append(row.Columns, col.Name)
		row.Values = append(row.Values, coerced)
	}
	return row, nil
}
