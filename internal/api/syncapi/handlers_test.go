package syncapi

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/sheetsync"
	"github.com/clubfutbol/clubsite/internal/testutil"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func setupSyncTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	testutil.SeedClub(t, database)

	service = nil
	serviceOnce = sync.Once{}
	InitHandlers(sheetsync.NewService(database))

	t.Cleanup(func() {
		service = nil
		serviceOnce = sync.Once{}
	})
	return database
}

func doSync(t *testing.T, method, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	req := httptest.NewRequest(method, "/functions/v1/google-sheets-api", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	HandleSync(recorder, req)

	var resp response
	if recorder.Body.Len() > 0 {
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
		}
	}
	return recorder, resp
}

func countRows(t *testing.T, database *db.DB, table string) int {
	t.Helper()
	n, err := database.Queries.CountRows(context.Background(), table)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestHandleSync_ClubInfoIsIdempotent(t *testing.T) {
	database := setupSyncTest(t)

	body := `{"type":"club_info","data":[
		{"section":"history","title":"Historia","content":"Fundado en 1987"},
		{"section":"contact","title":"Contacto","content":"Calle Mayor 1"}
	]}`

	for i := 0; i < 2; i++ {
		recorder, resp := doSync(t, http.MethodPost, body)
		if recorder.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d body = %s", i, recorder.Code, recorder.Body.String())
		}
		if !resp.Success || resp.Message != "Club info updated successfully" {
			t.Fatalf("attempt %d unexpected response: %+v", i, resp)
		}
		if got := countRows(t, database, "club_info"); got != 2 {
			t.Fatalf("attempt %d club_info rows = %d, want 2", i, got)
		}
	}
}

func syncBody(t *testing.T, syncType string, rows ...map[string]any) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{"type": syncType, "data": rows})
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return string(body)
}

func TestHandleSync_MatchesUpdateInPlace(t *testing.T) {
	database := setupSyncTest(t)

	match := map[string]any{
		"id":            "0d9f8e7c-6b5a-4d3c-8b2a-000000000001",
		"tournament_id": testutil.TournamentID,
		"series_id":     testutil.SeriesAdultosID,
		"home_team_id":  testutil.TeamXID,
		"away_team_id":  testutil.TeamYID,
		"round":         "1",
		"status":        "pending",
		"home_score":    nil,
		"away_score":    nil,
	}
	recorder, resp := doSync(t, http.MethodPost, syncBody(t, "matches", match))
	if recorder.Code != http.StatusOK || resp.Message != "Matches updated successfully" {
		t.Fatalf("insert status = %d resp = %+v", recorder.Code, resp)
	}

	match["status"] = "completed"
	match["home_score"] = "2"
	match["away_score"] = 1
	recorder, _ = doSync(t, http.MethodPost, syncBody(t, "matches", match))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", recorder.Code, recorder.Body.String())
	}

	if got := countRows(t, database, "matches"); got != 1 {
		t.Fatalf("matches rows = %d, want 1", got)
	}
	var status string
	var home, away int
	err := database.QueryRowContext(context.Background(),
		`SELECT status, home_score, away_score FROM matches WHERE id = ?`, "0d9f8e7c-6b5a-4d3c-8b2a-000000000001",
	).Scan(&status, &home, &away)
	if err != nil {
		t.Fatalf("load match: %v", err)
	}
	if status != "completed" || home != 2 || away != 1 {
		t.Fatalf("match = %s %d-%d, want completed 2-1", status, home, away)
	}
}

func TestHandleSync_Errors(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		body      string
		status    int
		errSubstr string
	}{
		{
			name:      "unknown type",
			method:    http.MethodPost,
			body:      `{"type":"players","data":[]}`,
			status:    http.StatusInternalServerError,
			errSubstr: "Unknown data type: players",
		},
		{
			name:      "type with surrounding whitespace",
			method:    http.MethodPost,
			body:      `{"type":" suspended_players","data":[]}`,
			status:    http.StatusInternalServerError,
			errSubstr: "Unknown data type:  suspended_players",
		},
		{
			name:      "malformed body",
			method:    http.MethodPost,
			body:      `{"type":`,
			status:    http.StatusInternalServerError,
			errSubstr: "Invalid request body",
		},
		{
			name:      "row missing required column",
			method:    http.MethodPost,
			body:      `{"type":"club_info","data":[{"title":"Sin sección","content":"x"}]}`,
			status:    http.StatusInternalServerError,
			errSubstr: "row 0: section is required",
		},
		{
			name:   "store rejects foreign key",
			method: http.MethodPost,
			body: `{"type":"suspended_players","data":[{"id":"2b3c4d5e-6f70-4812-9a3b-000000000001",` +
				`"series_id":"5b0e9d3a-7a41-4b1e-8c2d-0000000000ff","name":"Pedro","remaining_matches":2}]}`,
			status:    http.StatusInternalServerError,
			errSubstr: "FOREIGN KEY",
		},
		{
			name:      "wrong method",
			method:    http.MethodGet,
			body:      ``,
			status:    http.StatusMethodNotAllowed,
			errSubstr: "Method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := setupSyncTest(t)

			recorder, resp := doSync(t, tt.method, tt.body)
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", recorder.Code, tt.status, recorder.Body.String())
			}
			if resp.Success {
				t.Fatalf("success = true on failure")
			}
			if !strings.Contains(resp.Error, tt.errSubstr) {
				t.Fatalf("error = %q, want substring %q", resp.Error, tt.errSubstr)
			}
			if got := countRows(t, database, "suspended_players"); got != 0 {
				t.Fatalf("suspended_players rows = %d, want 0", got)
			}
		})
	}
}

func TestHandleSync_IgnoresExtraTopLevelFields(t *testing.T) {
	database := setupSyncTest(t)

	body := `{"type":"club_info","sheet":"Club","timestamp":"2024-03-01T10:00:00Z",` +
		`"data":[{"section":"history","title":"Historia","content":"Fundado en 1987"}]}`
	recorder, resp := doSync(t, http.MethodPost, body)
	if recorder.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	if got := countRows(t, database, "club_info"); got != 1 {
		t.Fatalf("club_info rows = %d, want 1", got)
	}
}

func TestHandleSync_NotInitialized(t *testing.T) {
	service = nil
	serviceOnce = sync.Once{}

	recorder, _ := doSync(t, http.MethodPost, `{"type":"gallery","data":[]}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
}
