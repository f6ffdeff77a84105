package siteapi

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/models"
	"github.com/clubfutbol/clubsite/internal/site"
	"github.com/clubfutbol/clubsite/internal/testutil"
)

type failingSeriesStore struct {
	*db.Queries
}

func (failingSeriesStore) ListSeries(context.Context) ([]models.Series, error) {
	return nil, errors.New("connection refused")
}

func setupSiteTest(t *testing.T, store site.Store) {
	t.Helper()

	service = nil
	serviceOnce = sync.Once{}
	InitHandlers(site.NewService(store, nil))

	t.Cleanup(func() {
		service = nil
		serviceOnce = sync.Once{}
	})
}

func seedDatabase(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	testutil.SeedClub(t, database)
	testutil.Exec(t, database, `INSERT INTO matches (id, tournament_id, series_id, home_team_id, away_team_id, group_id, round, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"0d9f8e7c-6b5a-4d3c-8b2a-000000000001", testutil.TournamentID, testutil.SeriesSeniorID,
		testutil.TeamZID, testutil.TeamWID, testutil.GroupAID, "1", "pending")
	testutil.Exec(t, database, `INSERT INTO club_info (id, section, title, content) VALUES (?, ?, ?, ?)`,
		"4f3e2d1c-0b9a-4876-8543-000000000001", "history", "Historia", "Fundado en 1987")
	return database
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func TestHandleFixture(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, database.Queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/"+testutil.TournamentID+"/fixture", nil)
	req.SetPathValue("id", testutil.TournamentID)
	recorder := serve(HandleFixture, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("X-View-Degraded") != "" {
		t.Fatalf("healthy view marked degraded")
	}

	var view site.FixtureView
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Series) != 1 || view.Series[0].SeriesName != "Senior" {
		t.Fatalf("unexpected series: %+v", view.Series)
	}
	if got := view.Series[0].Groups[0].GroupName; got != "Grupo A" {
		t.Fatalf("group = %q, want Grupo A", got)
	}
	if len(view.AvailableSeries) != 2 {
		t.Fatalf("available series = %v, want Adultos and Senior", view.AvailableSeries)
	}
}

func TestHandleFixture_InvalidID(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, database.Queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/abc/fixture", nil)
	req.SetPathValue("id", "abc")
	recorder := serve(HandleFixture, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestHandleFixture_DegradesOnFetchFailure(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, failingSeriesStore{database.Queries})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/"+testutil.TournamentID+"/fixture", nil)
	req.SetPathValue("id", testutil.TournamentID)
	recorder := serve(HandleFixture, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if recorder.Header().Get("X-View-Degraded") != "true" {
		t.Fatalf("missing degraded marker")
	}
	var view site.FixtureView
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Series) != 0 {
		t.Fatalf("degraded view has %d series, want 0", len(view.Series))
	}
}

func TestHandleTournaments(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, database.Queries)

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"", http.StatusOK, 2},
		{"?active=true", http.StatusOK, 1},
		{"?active=maybe", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			recorder := serve(HandleTournaments, httptest.NewRequest(http.MethodGet, "/api/v1/tournaments"+tt.query, nil))
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp tournamentsResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Tournaments) != tt.count {
				t.Fatalf("tournaments = %d, want %d", len(resp.Tournaments), tt.count)
			}
		})
	}
}

func TestHandleClubInfo(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, database.Queries)

	recorder := serve(HandleClubInfo, httptest.NewRequest(http.MethodGet, "/api/v1/club-info", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var view site.ClubInfoView
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Sections["history"].Title != "Historia" {
		t.Fatalf("unexpected sections: %+v", view.Sections)
	}
}

func TestViewHandlersRejectPost(t *testing.T) {
	database := seedDatabase(t)
	setupSiteTest(t, database.Queries)

	for name, handler := range map[string]http.HandlerFunc{
		"home":     HandleHome,
		"tribunal": HandleTribunal,
		"gallery":  HandleGallery,
	} {
		recorder := serve(handler, httptest.NewRequest(http.MethodPost, "/", nil))
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: status = %d, want 405", name, recorder.Code)
		}
	}
}
