package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/db"
)

const PointsAuditJobName = "standings_points_audit"

// AuditResult summarizes one audit pass.
type AuditResult struct {
	Checked int
	Drifted int
}

// AuditStandingPoints recomputes each standing's points from its tournament's
// scoring rule and logs rows that drifted. Stored rows are never written;
// standings change only through sync.
func AuditStandingPoints(ctx context.Context, database *db.DB) (AuditResult, error) {
	if database == nil {
		return AuditResult{}, fmt.Errorf("points audit requires database")
	}
	logger := log.Ctx(ctx)

	rows, err := database.Queries.ListStandingPoints(ctx)
	if err != nil {
		return AuditResult{}, fmt.Errorf("load standings: %w", err)
	}

	result := AuditResult{Checked: len(rows)}
	for _, row := range rows {
		s := row.Standing
		expected := row.Tournament.Points(s.Wins, s.Draws, s.Losses, s.PunishmentPoints)
		if expected == s.Points {
			continue
		}
		logger.Warn().
			Str("standing_id", s.ID).
			Str("tournament", row.Tournament.Name).
			Str("team", s.TeamName).
			Int("stored_points", s.Points).
			Int("expected_points", expected).
			Msg("Standing points drifted from results")
		result.Drifted++
	}
	return result, nil
}

// RegisterPointsAuditJob schedules AuditStandingPoints on cronExpr.
func RegisterPointsAuditJob(svc *Service, database *db.DB, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("points audit job requires database")
	}

	jobLogger := log.With().
		Str("component", "points_audit_job").
		Str("job_name", PointsAuditJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(PointsAuditJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		result, err := AuditStandingPoints(ctx, database)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to audit standing points")
			return
		}
		jobLogger.Info().
			Int("checked", result.Checked).
			Int("drifted", result.Drifted).
			Msg("Standing points audit finished")
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add points audit job: %w", err)
	}
	return nil
}
