package sheetsync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/testutil"
)

type recordingStore struct {
	calls   int
	batches []db.UpsertBatch
	err     error
}

func (s *recordingStore) UpsertInTx(_ context.Context, batch db.UpsertBatch) (int, error) {
	s.calls++
	s.batches = append(s.batches, batch)
	if s.err != nil {
		return 0, s.err
	}
	return len(batch.Rows), nil
}

func TestApplyRejectsUnknownType(t *testing.T) {
	store := &recordingStore{}
	service := NewService(store)

	_, err := service.Apply(context.Background(), Request{Type: "foo", Data: []map[string]any{{"id": "x"}}})
	var typeErr *UnknownTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Apply() error = %v, want UnknownTypeError", err)
	}
	if err.Error() != "Unknown data type: foo" {
		t.Fatalf("error message = %q", err.Error())
	}
	if store.calls != 0 {
		t.Fatalf("store called %d times, want 0", store.calls)
	}
}

func TestParseTypeIsExact(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
		ok   bool
	}{
		{raw: "matches", want: TypeMatches, ok: true},
		{raw: "club_info", want: TypeClubInfo, ok: true},
		{raw: " matches", ok: false},
		{raw: "matches\n", ok: false},
		{raw: "Matches", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.raw)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Fatalf("ParseType(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
			}
			continue
		}
		var typeErr *UnknownTypeError
		if !errors.As(err, &typeErr) {
			t.Fatalf("ParseType(%q) error = %v, want UnknownTypeError", tt.raw, err)
		}
	}
}

func TestApplyRowValidation(t *testing.T) {
	validMatch := func() map[string]any {
		return map[string]any{
			"id":            "0d9f8e7c-6b5a-4d3c-8b2a-000000000001",
			"tournament_id": testutil.TournamentID,
			"series_id":     testutil.SeriesAdultosID,
			"home_team_id":  testutil.TeamXID,
			"away_team_id":  testutil.TeamYID,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		column string
	}{
		{name: "missing_id", mutate: func(r map[string]any) { delete(r, "id") }, column: "id"},
		{name: "null_required", mutate: func(r map[string]any) { r["home_team_id"] = nil }, column: "home_team_id"},
		{name: "unknown_column", mutate: func(r map[string]any) { r["referee"] = "Pepe" }, column: "referee"},
		{name: "bad_uuid", mutate: func(r map[string]any) { r["series_id"] = "adultos" }, column: "series_id"},
		{name: "fractional_score", mutate: func(r map[string]any) { r["home_score"] = 1.5 }, column: "home_score"},
		{name: "negative_score", mutate: func(r map[string]any) { r["away_score"] = float64(-1) }, column: "away_score"},
		{name: "bad_date", mutate: func(r map[string]any) { r["match_date"] = "06/04/2024" }, column: "match_date"},
		{name: "bad_status", mutate: func(r map[string]any) { r["status"] = "postponed" }, column: "status"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := &recordingStore{}
			service := NewService(store)

			ok := validMatch()
			row := validMatch()
			test.mutate(row)

			_, err := service.Apply(context.Background(), Request{Type: "matches", Data: []map[string]any{ok, row}})
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("Apply() error = %v, want RowError", err)
			}
			if rowErr.Index != 1 || rowErr.Column != test.column {
				t.Fatalf("RowError = %+v, want row 1 column %s", rowErr, test.column)
			}
			if store.calls != 0 {
				t.Fatalf("store called %d times, want 0", store.calls)
			}
		})
	}
}

func TestApplyCoercesValues(t *testing.T) {
	store := &recordingStore{}
	service := NewService(store)

	_, err := service.Apply(context.Background(), Request{Type: "standings", Data: []map[string]any{{
		"id":                "6A5B4C3D-2E1F-4A0B-9C8D-000000000001",
		"tournament_id":     testutil.TournamentID,
		"series_id":         testutil.SeriesAdultosID,
		"team_id":           testutil.TeamXID,
		"position":          "2",
		"wins":              float64(3),
		"draws":             nil,
		"points":            "-1",
		"punishment_reason": float64(4),
		"created_at":        "2024-01-01T00:00:00Z",
	}}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	row := store.batches[0].Rows[0]
	got := make(map[string]any)
	for i, c := range row.Columns {
		got[c] = row.Values[i]
	}
	want := map[string]any{
		"id":                "6a5b4c3d-2e1f-4a0b-9c8d-000000000001",
		"tournament_id":     testutil.TournamentID,
		"series_id":         testutil.SeriesAdultosID,
		"team_id":           testutil.TeamXID,
		"position":          2,
		"wins":              3,
		"points":            -1,
		"punishment_reason": "4",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
}

func TestApplyUpsertErrorPassesMessageThrough(t *testing.T) {
	store := &recordingStore{err: errors.New("FOREIGN KEY constraint failed")}
	service := NewService(store)

	_, err := service.Apply(context.Background(), Request{Type: "club_info", Data: []map[string]any{{
		"section": "history", "title": "Historia", "content": "Desde 1950",
	}}})
	var upsertErr *UpsertError
	if !errors.As(err, &upsertErr) {
		t.Fatalf("Apply() error = %v, want UpsertError", err)
	}
	if err.Error() != "FOREIGN KEY constraint failed" {
		t.Fatalf("error message = %q", err.Error())
	}
}

func TestApplyClubInfoGeneratesID(t *testing.T) {
	store := &recordingStore{}
	service := NewService(store)
	service.newID = func() string { return "4f3e2d1c-0b9a-4876-9543-0000000000aa" }

	_, err := service.Apply(context.Background(), Request{Type: "club_info", Data: []map[string]any{{
		"section": "history", "title": "Historia", "content": "Desde 1950",
	}}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	batch := store.batches[0]
	if batch.ConflictColumn != "section" || len(batch.Immutable) != 1 || batch.Immutable[0] != "id" {
		t.Fatalf("batch = %+v, want section conflict with immutable id", batch)
	}
	if batch.Rows[0].Columns[0] != "id" || batch.Rows[0].Values[0] != "4f3e2d1c-0b9a-4876-9543-0000000000aa" {
		t.Fatalf("row = %+v, want generated id first", batch.Rows[0])
	}
}

func TestTypes(t *testing.T) {
	got := fmt.Sprint(Types())
	if got != "[club_info gallery matches standings suspended_players]" {
		t.Fatalf("Types() = %s", got)
	}
}

// payloads returns one valid batch per sync type against the seeded club.
func payloads() map[Type][]map[string]any {
	return map[Type][]map[string]any{
		TypeMatches: {
			{
				"id": "0d9f8e7c-6b5a-4d3c-8b2a-000000000001", "tournament_id": testutil.TournamentID,
				"series_id": testutil.SeriesAdultosID, "home_team_id": testutil.TeamXID, "away_team_id": testutil.TeamYID,
				"round": float64(1), "match_date": "2024-04-06", "match_time": "10:30", "status": "completed",
				"home_score": float64(2), "away_score": "1",
			},
			{
				"id": "0d9f8e7c-6b5a-4d3c-8b2a-000000000002", "tournament_id": testutil.TournamentID,
				"series_id": testutil.SeriesSeniorID, "home_team_id": testutil.TeamZID, "away_team_id": testutil.TeamWID,
				"group_id": testutil.GroupAID, "round": "1", "match_date": nil,
			},
		},
		TypeStandings: {
			{
				"id": "6a5b4c3d-2e1f-4a0b-9c8d-000000000001", "tournament_id": testutil.TournamentID,
				"series_id": testutil.SeriesAdultosID, "team_id": testutil.TeamXID, "position": float64(1),
				"wins": float64(1), "points": float64(3),
			},
		},
		TypeSuspendedPlayers: {
			{
				"id": "2f3e4d5c-6b7a-4899-8a0b-000000000001", "series_id": testutil.SeriesAdultosID,
				"team_id": testutil.TeamXID, "name": "Ana", "remaining_matches": float64(2), "reason": "Roja directa",
			},
		},
		TypeGallery: {
			{
				"id": "3a4b5c6d-7e8f-4901-8a2b-000000000001", "series": "Adultos A", "match_date": "2024-04-06",
				"image_url": "https://cdn.club.test/a.jpg", "title": "Debut",
			},
		},
		TypeClubInfo: {
			{"section": "history", "title": "Historia", "content": "Desde 1950"},
			{"section": "mission", "title": "Mision", "content": "Formar personas"},
		},
	}
}

func TestApplyIsIdempotentForEveryType(t *testing.T) {
	for syncType, data := range payloads() {
		t.Run(string(syncType), func(t *testing.T) {
			database := testutil.NewTestDB(t)
			testutil.SeedClub(t, database)
			service := NewService(database)
			ctx := context.Background()
			spec, _ := SpecFor(syncType)

			snapshot := func() (int, string) {
				count, err := database.Queries.CountRows(ctx, spec.Table)
				if err != nil {
					t.Fatalf("CountRows() error = %v", err)
				}
				return count, dumpTable(t, database, spec)
			}

			first, err := service.Apply(ctx, Request{Type: string(syncType), Data: data})
			if err != nil {
				t.Fatalf("first Apply() error = %v", err)
			}
			if first.Rows != len(data) {
				t.Fatalf("first Apply() rows = %d, want %d", first.Rows, len(data))
			}
			countOnce, dumpOnce := snapshot()
			if countOnce != len(data) {
				t.Fatalf("row count = %d, want %d", countOnce, len(data))
			}

			if _, err := service.Apply(ctx, Request{Type: string(syncType), Data: data}); err != nil {
				t.Fatalf("second Apply() error = %v", err)
			}
			countTwice, dumpTwice := snapshot()
			if countTwice != countOnce || dumpTwice != dumpOnce {
				t.Fatalf("second apply changed the table:\n%s\nvs\n%s", dumpOnce, dumpTwice)
			}
		})
	}
}

func TestApplyUpdatesExistingRows(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedClub(t, database)
	service := NewService(database)
	ctx := context.Background()

	data := payloads()[TypeClubInfo]
	if _, err := service.Apply(ctx, Request{Type: "club_info", Data: data}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	update := []map[string]any{{"section": "history", "title": "Nuestra historia", "content": "Desde 1950"}}
	result, err := service.Apply(ctx, Request{Type: "club_info", Data: update})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Message != "Club info updated successfully" {
		t.Fatalf("message = %q", result.Message)
	}

	rows, err := database.Queries.ListClubInfo(ctx)
	if err != nil {
		t.Fatalf("ListClubInfo() error = %v", err)
	}
	if len(rows) != 2 || rows[0].Section != "history" || rows[0].Title != "Nuestra historia" {
		t.Fatalf("club info = %+v", rows)
	}
}

func TestApplyReportsStoreRejection(t *testing.T) {
	database := testutil.NewTestDB(t)
	service := NewService(database)

	// No seed: the referenced tournament and teams do not exist.
	_, err := service.Apply(context.Background(), Request{Type: "matches", Data: payloads()[TypeMatches]})
	var upsertErr *UpsertError
	if !errors.As(err, &upsertErr) {
		t.Fatalf("Apply() error = %v, want UpsertError", err)
	}
	count, err := database.Queries.CountRows(context.Background(), "matches")
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("matches count = %d, want 0", count)
	}
}

func dumpTable(t *testing.T, database *db.DB, spec TableSpec) string {
	t.Helper()

	var names []string
	for _, c := range spec.Columns {
		names = append(names, c.Name)
	}
	query := "SELECT " + joinColumns(names) + " FROM " + spec.Table + " ORDER BY " + spec.ConflictKey
	rows, err := database.QueryContext(context.Background(), query)
	if err != nil {
		t.Fatalf("dump %s: %v", spec.Table, err)
	}
	defer rows.Close()

	var out string
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			t.Fatalf("scan %s: %v", spec.Table, err)
		}
		out += fmt.Sprintln(values...)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows %s: %v", spec.Table, err)
	}
	return out
}

func joinColumns(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
