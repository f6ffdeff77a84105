// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clubfutbol/clubsite/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func NewQueries(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type scanner interface {
	Scan(dest ...any) error
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
}

// collect drains rows through scan, closing rows in every path.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const tournamentColumns = `id, name, status, start_date, end_date, points_win, points_draw, points_loss`

func scanTournament(row scanner) (models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.StartDate, &t.EndDate, &t.PointsWin, &t.PointsDraw, &t.PointsLoss)
	return t, err
}

// ListTournaments returns tournaments newest first, optionally only active ones.
func (q *Queries) ListTournaments(ctx context.Context, activeOnly bool) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments`
	var args []any
	if activeOnly {
		query += ` WHERE status = ?`
		args = append(args, string(models.TournamentStatusActive))
	}
	query += ` ORDER BY created_at DESC, name`

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return collect(rows, scanTournament)
}

func (q *Queries) GetTournament(ctx context.Context, id string) (models.Tournament, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.Rebind(`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`), id)
	return scanTournament(row)
}

func scanSeries(row scanner) (models.Series, error) {
	var s models.Series
	err := row.Scan(&s.ID, &s.Name, &s.Position)
	return s, err
}

// ListSeries returns every series ordered by display position.
func (q *Queries) ListSeries(ctx context.Context) ([]models.Series, error) {
	rows, err := q.query(ctx, `SELECT id, name, position FROM series ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return collect(rows, scanSeries)
}

// ListTournamentSeries returns the series linked to a tournament, ordered by position.
func (q *Queries) ListTournamentSeries(ctx context.Context, tournamentID string) ([]models.Series, error) {
	rows, err := q.query(ctx, `
SELECT s.id, s.name, s.position
FROM tournament_series ts
JOIN series s ON s.id = ts.series_id
WHERE ts.tournament_id = ?
ORDER BY s.position, s.name`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament series: %w", err)
	}
	return collect(rows, scanSeries)
}

func (q *Queries) ListPhaseGroups(ctx context.Context) ([]models.PhaseGroup, error) {
	rows, err := q.query(ctx, `SELECT id, phase_id, group_name, group_order FROM phase_groups ORDER BY group_order, group_name`)
	if err != nil {
		return nil, fmt.Errorf("list phase groups: %w", err)
	}
	return collect(rows, func(row scanner) (models.PhaseGroup, error) {
		var g models.PhaseGroup
		err := row.Scan(&g.ID, &g.PhaseID, &g.GroupName, &g.GroupOrder)
		return g, err
	})
}

const matchSelect = `
SELECT m.id, m.tournament_id, m.series_id,
       m.home_team_id, ht.name, m.away_team_id, awt.name,
       m.home_score, m.away_score, COALESCE(m.round, ''),
       m.match_date, m.match_time, m.match_label, m.venue, m.status,
       m.phase_id, m.group_id
FROM matches m
JOIN teams ht ON ht.id = m.home_team_id
JOIN teams awt ON awt.id = m.away_team_id`

func scanMatch(row scanner) (models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.SeriesID,
		&m.HomeTeamID, &m.HomeTeamName, &m.AwayTeamID, &m.AwayTeamName,
		&m.HomeScore, &m.AwayScore, &m.Round,
		&m.MatchDate, &m.MatchTime, &m.MatchLabel, &m.Venue, &m.Status,
		&m.PhaseID, &m.GroupID,
	)
	return m, err
}

// ListMatchesByTournament returns a tournament's matches in fetch order:
// dated matches first by date and time, then undated ones.
func (q *Queries) ListMatchesByTournament(ctx context.Context, tournamentID string) ([]models.Match, error) {
	rows, err := q.query(ctx, matchSelect+`
WHERE m.tournament_id = ?
ORDER BY m.match_date IS NULL, m.match_date, m.match_time, m.created_at, m.id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return collect(rows, scanMatch)
}

// ListTeamResults returns the team's most recent completed matches with both
// scores recorded, newest first. Undated matches sort last on every dialect.
func (q *Queries) ListTeamResults(ctx context.Context, teamID string, limit int) ([]models.Match, error) {
	rows, err := q.query(ctx, matchSelect+`
WHERE (m.home_team_id = ? OR m.away_team_id = ?)
  AND m.status = ?
  AND m.home_score IS NOT NULL
  AND m.away_score IS NOT NULL
ORDER BY m.match_date IS NULL, m.match_date DESC, m.match_time IS NULL, m.match_time DESC, m.id
LIMIT ?`, teamID, teamID, string(models.MatchStatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("list team results: %w", err)
	}
	return collect(rows, scanMatch)
}

func (q *Queries) ListNextMatches(ctx context.Context) ([]models.NextMatch, error) {
	rows, err := q.query(ctx, `
SELECT nm.id, nm.tournament_id, tr.name, nm.series_id,
       nm.team_id, t.name, nm.vs_team_id, vt.name,
       nm.match_date, nm.match_time, nm.venue, nm.round
FROM next_matches nm
JOIN tournaments tr ON tr.id = nm.tournament_id
JOIN teams t ON t.id = nm.team_id
JOIN teams vt ON vt.id = nm.vs_team_id
ORDER BY nm.match_date, nm.match_time, nm.id`)
	if err != nil {
		return nil, fmt.Errorf("list next matches: %w", err)
	}
	return collect(rows, func(row scanner) (models.NextMatch, error) {
		var nm models.NextMatch
		err := row.Scan(
			&nm.ID, &nm.TournamentID, &nm.TournamentName, &nm.SeriesID,
			&nm.TeamID, &nm.TeamName, &nm.VsTeamID, &nm.VsTeamName,
			&nm.MatchDate, &nm.MatchTime, &nm.Venue, &nm.Round,
		)
		return nm, err
	})
}

const standingSelect = `
SELECT s.id, s.tournament_id, s.series_id, s.phase_id, s.group_id,
       s.team_id, t.name, s.position, s.matches_played,
       s.wins, s.draws, s.losses, s.goals_for, s.goals_against,
       s.points, s.punishment_points, s.punishment_reason
FROM standings s
JOIN teams t ON t.id = s.team_id`

func scanStanding(row scanner) (models.Standing, error) {
	var s models.Standing
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.SeriesID, &s.PhaseID, &s.GroupID,
		&s.TeamID, &s.TeamName, &s.Position, &s.MatchesPlayed,
		&s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst,
		&s.Points, &s.PunishmentPoints, &s.PunishmentReason,
	)
	return s, err
}

// ListStandingsByTournament returns a tournament's standings by stored position.
func (q *Queries) ListStandingsByTournament(ctx context.Context, tournamentID string) ([]models.Standing, error) {
	rows, err := q.query(ctx, standingSelect+`
WHERE s.tournament_id = ?
ORDER BY s.position, s.id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	return collect(rows, scanStanding)
}

// StandingPoints pairs a standing row with the scoring rule of its tournament.
type StandingPoints struct {
	Standing   models.Standing
	Tournament models.Tournament
}

// ListStandingPoints returns every standing with its tournament's points rule.
func (q *Queries) ListStandingPoints(ctx context.Context) ([]StandingPoints, error) {
	rows, err := q.query(ctx, `
SELECT s.id, s.tournament_id, s.series_id, s.phase_id, s.group_id,
       s.team_id, t.name, s.position, s.matches_played,
       s.wins, s.draws, s.losses, s.goals_for, s.goals_against,
       s.points, s.punishment_points, s.punishment_reason,
       tr.name, tr.points_win, tr.points_draw, tr.points_loss
FROM standings s
JOIN teams t ON t.id = s.team_id
JOIN tournaments tr ON tr.id = s.tournament_id
ORDER BY s.tournament_id, s.series_id, s.position, s.id`)
	if err != nil {
		return nil, fmt.Errorf("list standing points: %w", err)
	}
	return collect(rows, func(row scanner) (StandingPoints, error) {
		var sp StandingPoints
		s := &sp.Standing
		err := row.Scan(
			&s.ID, &s.TournamentID, &s.SeriesID, &s.PhaseID, &s.GroupID,
			&s.TeamID, &s.TeamName, &s.Position, &s.MatchesPlayed,
			&s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst,
			&s.Points, &s.PunishmentPoints, &s.PunishmentReason,
			&sp.Tournament.Name, &sp.Tournament.PointsWin, &sp.Tournament.PointsDraw, &sp.Tournament.PointsLoss,
		)
		sp.Tournament.ID = s.TournamentID
		return sp, err
	})
}

// ListActiveSuspensions returns players with matches left to serve, most first.
func (q *Queries) ListActiveSuspensions(ctx context.Context) ([]models.SuspendedPlayer, error) {
	rows, err := q.query(ctx, `
SELECT sp.id, sp.series_id, se.name, sp.team_id, t.name, sp.tournament_id,
       sp.name, sp.remaining_matches, sp.reason
FROM suspended_players sp
JOIN series se ON se.id = sp.series_id
LEFT JOIN teams t ON t.id = sp.team_id
WHERE sp.remaining_matches > 0
ORDER BY sp.remaining_matches DESC, sp.name`)
	if err != nil {
		return nil, fmt.Errorf("list suspended players: %w", err)
	}
	return collect(rows, func(row scanner) (models.SuspendedPlayer, error) {
		var p models.SuspendedPlayer
		err := row.Scan(&p.ID, &p.SeriesID, &p.SeriesName, &p.TeamID, &p.TeamName, &p.TournamentID,
			&p.Name, &p.RemainingMatches, &p.Reason)
		return p, err
	})
}

// ListGallery returns gallery images newest first.
func (q *Queries) ListGallery(ctx context.Context) ([]models.GalleryImage, error) {
	rows, err := q.query(ctx, `
SELECT id, series, match_date, title, description, image_url, tournament_id
FROM gallery
ORDER BY created_at DESC, match_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return collect(rows, func(row scanner) (models.GalleryImage, error) {
		var g models.GalleryImage
		err := row.Scan(&g.ID, &g.Series, &g.MatchDate, &g.Title, &g.Description, &g.ImageURL, &g.TournamentID)
		return g, err
	})
}

func (q *Queries) ListClubInfo(ctx context.Context) ([]models.ClubInfo, error) {
	rows, err := q.query(ctx, `SELECT id, section, title, content FROM club_info ORDER BY section`)
	if err != nil {
		return nil, fmt.Errorf("list club info: %w", err)
	}
	return collect(rows, func(row scanner) (models.ClubInfo, error) {
		var c models.ClubInfo
		err := row.Scan(&c.ID, &c.Section, &c.Title, &c.Content)
		return c, err
	})
}

// CountRows returns the number of rows in one of the known tables.
func (q *Queries) CountRows(ctx context.Context, table string) (int, error) {
	if !knownTables[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
