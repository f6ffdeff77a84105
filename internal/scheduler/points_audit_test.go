package scheduler

import (
	"context"
	"testing"

	"github.com/clubfutbol/clubsite/internal/sheetsync"
	"github.com/clubfutbol/clubsite/internal/testutil"
)

const (
	standingOK      = "6a5b4c3d-2e1f-4a0b-9c8d-0000000000a1"
	standingDrifted = "6a5b4c3d-2e1f-4a0b-9c8d-0000000000a2"
	standingPunish  = "6a5b4c3d-2e1f-4a0b-9c8d-0000000000a3"
)

func TestAuditStandingPointsReportsDrift(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedClub(t, database)

	insert := `INSERT INTO standings (id, tournament_id, series_id, team_id, position, wins, draws, losses, points, punishment_points) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	// 3/1/0 scoring: 2W 1D 1L = 7.
	testutil.Exec(t, database, insert, standingOK, testutil.TournamentID, testutil.SeriesAdultosID, testutil.TeamXID, 1, 2, 1, 1, 7, 0)
	testutil.Exec(t, database, insert, standingDrifted, testutil.TournamentID, testutil.SeriesAdultosID, testutil.TeamYID, 2, 1, 1, 2, 9, 0)
	// 2/1/0 scoring on the closed tournament: 3W = 6, minus 2 punishment.
	testutil.Exec(t, database, insert, standingPunish, testutil.ClosedTournamentID, testutil.SeriesSeniorID, testutil.TeamZID, 1, 3, 0, 0, 6, 2)

	ctx := context.Background()
	result, err := AuditStandingPoints(ctx, database)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if result.Checked != 3 || result.Drifted != 2 {
		t.Fatalf("result = %+v, want 3 checked, 2 drifted", result)
	}

	want := map[string]struct{ points, position int }{
		standingOK:      {7, 1},
		standingDrifted: {9, 2},
		standingPunish:  {6, 1},
	}
	for id, w := range want {
		var points, position int
		if err := database.QueryRowContext(ctx, `SELECT points, position FROM standings WHERE id = ?`, id).Scan(&points, &position); err != nil {
			t.Fatalf("load standing %s: %v", id, err)
		}
		if points != w.points || position != w.position {
			t.Fatalf("standing %s = %d pts pos %d, want %d pts pos %d", id, points, position, w.points, w.position)
		}
	}

	again, err := AuditStandingPoints(ctx, database)
	if err != nil {
		t.Fatalf("second audit: %v", err)
	}
	if again.Drifted != 2 {
		t.Fatalf("second audit drifted = %d, want 2", again.Drifted)
	}
}

func TestAuditStandingPointsKeepsSyncedValues(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedClub(t, database)
	ctx := context.Background()

	_, err := sheetsync.NewService(database).Apply(ctx, sheetsync.Request{Type: "standings", Data: []map[string]any{{
		"id":            standingDrifted,
		"tournament_id": testutil.TournamentID,
		"series_id":     testutil.SeriesAdultosID,
		"team_id":       testutil.TeamYID,
		"position":      1,
		"wins":          1,
		"draws":         1,
		"losses":        2,
		"points":        9,
	}}})
	if err != nil {
		t.Fatalf("sync standing: %v", err)
	}

	if _, err := AuditStandingPoints(ctx, database); err != nil {
		t.Fatalf("audit: %v", err)
	}

	var points int
	if err := database.QueryRowContext(ctx, `SELECT points FROM standings WHERE id = ?`, standingDrifted).Scan(&points); err != nil {
		t.Fatalf("load standing: %v", err)
	}
	if points != 9 {
		t.Fatalf("points = %d after audit, want synced value 9", points)
	}
}

func TestAuditStandingPointsRequiresDatabase(t *testing.T) {
	if _, err := AuditStandingPoints(context.Background(), nil); err == nil {
		t.Fatalf("expected error without database")
	}
}

func TestAddJobValidation(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	if _, err := svc.AddJob(" ", "* * * * *", func() {}); err != ErrEmptyJobName {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", "", func() {}); err != ErrEmptyCronExpr {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}

	var nilSvc *Service
	if _, err := nilSvc.AddJob("job", "* * * * *", func() {}); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRegisterPointsAuditJob(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	if err := RegisterPointsAuditJob(svc, database, "*/30 * * * *"); err != nil {
		t.Fatalf("register job: %v", err)
	}
	jobs := svc.Jobs()
	if len(jobs) != 1 || jobs[0].Name() != PointsAuditJobName {
		t.Fatalf("unexpected jobs: %v", jobs)
	}
	if err := RegisterPointsAuditJob(svc, database, "not a cron"); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}
