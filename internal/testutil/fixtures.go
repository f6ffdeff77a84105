package testutil

import (
	"context"
	"testing"

	"github.com/clubfutbol/clubsite/internal/db"
)

// Fixture identifiers seeded by SeedClub.
const (
	TournamentID         = "7f1c2a8e-0c1b-4c61-9f0a-1a2b3c4d5e01"
	ClosedTournamentID   = "7f1c2a8e-0c1b-4c61-9f0a-1a2b3c4d5e02"
	SeriesInfantilID     = "5b0e9d3a-7a41-4b1e-8c2d-000000000001"
	SeriesAdultosID      = "5b0e9d3a-7a41-4b1e-8c2d-000000000002"
	SeriesSeniorID       = "5b0e9d3a-7a41-4b1e-8c2d-000000000003"
	TeamXID              = "c3a1f6b2-2d5e-4f7a-9b8c-00000000000a"
	TeamYID              = "c3a1f6b2-2d5e-4f7a-9b8c-00000000000b"
	TeamZID              = "c3a1f6b2-2d5e-4f7a-9b8c-00000000000c"
	TeamWID              = "c3a1f6b2-2d5e-4f7a-9b8c-00000000000d"
	TournamentSeriesAdID = "9d8e7f60-1a2b-4c3d-8e4f-000000000001"
	TournamentSeriesSeID = "9d8e7f60-1a2b-4c3d-8e4f-000000000002"
	PhaseSeniorID        = "a0b1c2d3-e4f5-4a6b-8c7d-000000000001"
	GroupAID             = "e1d2c3b4-a5f6-4e7d-9c8b-00000000000a"
	GroupBID             = "e1d2c3b4-a5f6-4e7d-9c8b-00000000000b"
)

var seedStatements = []struct {
	query string
	args  []any
}{
	{`INSERT INTO tournaments (id, name, status, points_win, points_draw, points_loss, created_at) VALUES (?, ?, ?, 3, 1, 0, '2024-03-01 10:00:00')`,
		[]any{TournamentID, "Apertura 2024", "active"}},
	{`INSERT INTO tournaments (id, name, status, points_win, points_draw, points_loss, created_at) VALUES (?, ?, ?, 2, 1, 0, '2023-03-01 10:00:00')`,
		[]any{ClosedTournamentID, "Clausura 2023", "completed"}},
	{`INSERT INTO series (id, name, position) VALUES (?, ?, ?)`, []any{SeriesInfantilID, "Infantil", 1}},
	{`INSERT INTO series (id, name, position) VALUES (?, ?, ?)`, []any{SeriesAdultosID, "Adultos", 2}},
	{`INSERT INTO series (id, name, position) VALUES (?, ?, ?)`, []any{SeriesSeniorID, "Senior", 3}},
	{`INSERT INTO tournament_series (id, tournament_id, series_id) VALUES (?, ?, ?)`, []any{TournamentSeriesAdID, TournamentID, SeriesAdultosID}},
	{`INSERT INTO tournament_series (id, tournament_id, series_id) VALUES (?, ?, ?)`, []any{TournamentSeriesSeID, TournamentID, SeriesSeniorID}},
	{`INSERT INTO teams (id, name, series_id) VALUES (?, ?, ?)`, []any{TeamXID, "Team X", SeriesAdultosID}},
	{`INSERT INTO teams (id, name, series_id) VALUES (?, ?, ?)`, []any{TeamYID, "Team Y", SeriesAdultosID}},
	{`INSERT INTO teams (id, name, series_id) VALUES (?, ?, ?)`, []any{TeamZID, "Team Z", SeriesSeniorID}},
	{`INSERT INTO teams (id, name, series_id) VALUES (?, ?, ?)`, []any{TeamWID, "Team W", SeriesSeniorID}},
	{`INSERT INTO tournament_phases (id, tournament_series_id, name, phase_order, phase_type) VALUES (?, ?, ?, 1, 'groups')`,
		[]any{PhaseSeniorID, TournamentSeriesSeID, "Fase de grupos"}},
	{`INSERT INTO phase_groups (id, phase_id, group_name, group_order) VALUES (?, ?, ?, ?)`, []any{GroupAID, PhaseSeniorID, "Grupo A", 1}},
	{`INSERT INTO phase_groups (id, phase_id, group_name, group_order) VALUES (?, ?, ?, ?)`, []any{GroupBID, PhaseSeniorID, "Grupo B", 2}},
}

// SeedClub inserts one active tournament with an ungrouped series (Adultos)
// and a grouped series (Senior, Grupo A and Grupo B), plus a closed tournament.
func SeedClub(t *testing.T, database *db.DB) {
	t.Helper()

	ctx := context.Background()
	for _, stmt := range seedStatements {
		if _, err := database.ExecContext(ctx, database.Dialect.Rebind(stmt.query), stmt.args...); err != nil {
			t.Fatalf("seed %q: %v", stmt.query, err)
		}
	}
}

// Exec runs a statement against the test database, failing the test on error.
func Exec(t *testing.T, database *db.DB, query string, args ...any) {
	t.Helper()

	if _, err := database.ExecContext(context.Background(), database.Dialect.Rebind(query), args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
