// internal/models/club.go
package models

type TournamentStatus string

const (
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
)

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

type Tournament struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     TournamentStatus `json:"status"`
	StartDate  *Date            `json:"startDate,omitempty"`
	EndDate    *Date            `json:"endDate,omitempty"`
	PointsWin  int              `json:"pointsWin"`
	PointsDraw int              `json:"pointsDraw"`
	PointsLoss int              `json:"pointsLoss"`
}

// Points applies the tournament's scoring rule to a win/draw/loss record.
func (t Tournament) Points(wins, draws, losses, punishment int) int {
	return wins*t.PointsWin + draws*t.PointsDraw + losses*t.PointsLoss - punishment
}

type Series struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type TournamentSeries struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournamentId"`
	SeriesID     string `json:"seriesId"`
}

type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SeriesID string `json:"seriesId"`
}

type TournamentPhase struct {
	ID                 string `json:"id"`
	TournamentSeriesID string `json:"tournamentSeriesId"`
	Name               string `json:"name"`
	PhaseOrder         int    `json:"phaseOrder"`
	PhaseType          string `json:"phaseType"`
	Status             string `json:"status"`
}

type PhaseGroup struct {
	ID         string `json:"id"`
	PhaseID    string `json:"phaseId"`
	GroupName  string `json:"groupName"`
	GroupOrder int    `json:"groupOrder"`
}

type Match struct {
	ID           string      `json:"id"`
	TournamentID string      `json:"tournamentId"`
	SeriesID     string      `json:"seriesId"`
	HomeTeamID   string      `json:"homeTeamId"`
	HomeTeamName string      `json:"homeTeamName"`
	AwayTeamID   string      `json:"awayTeamId"`
	AwayTeamName string      `json:"awayTeamName"`
	HomeScore    *int        `json:"homeScore"`
	AwayScore    *int        `json:"awayScore"`
	Round        string      `json:"round"`
	MatchDate    *Date       `json:"matchDate"`
	MatchTime    *string     `json:"matchTime,omitempty"`
	MatchLabel   *string     `json:"matchLabel,omitempty"`
	Venue        *string     `json:"venue,omitempty"`
	Status       MatchStatus `json:"status"`
	PhaseID      *string     `json:"phaseId,omitempty"`
	GroupID      *string     `json:"groupId,omitempty"`
}

// HasResult reports whether the match is completed with both scores recorded.
func (m Match) HasResult() bool {
	return m.Status == MatchStatusCompleted && m.HomeScore != nil && m.AwayScore != nil
}

type NextMatch struct {
	ID             string  `json:"id"`
	TournamentID   string  `json:"tournamentId"`
	TournamentName string  `json:"tournamentName"`
	SeriesID       string  `json:"seriesId"`
	TeamID         string  `json:"teamId"`
	TeamName       string  `json:"teamName"`
	VsTeamID       string  `json:"vsTeamId"`
	VsTeamName     string  `json:"vsTeamName"`
	MatchDate      Date    `json:"matchDate"`
	MatchTime      *string `json:"matchTime,omitempty"`
	Venue          *string `json:"venue,omitempty"`
	Round          *string `json:"round,omitempty"`
}

type Standing struct {
	ID               string  `json:"id"`
	TournamentID     string  `json:"tournamentId"`
	SeriesID         string  `json:"seriesId"`
	PhaseID          *string `json:"phaseId,omitempty"`
	GroupID          *string `json:"groupId,omitempty"`
	TeamID           string  `json:"teamId"`
	TeamName         string  `json:"teamName"`
	Position         int     `json:"position"`
	MatchesPlayed    int     `json:"matchesPlayed"`
	Wins             int     `json:"wins"`
	Draws            int     `json:"draws"`
	Losses           int     `json:"losses"`
	GoalsFor         int     `json:"goalsFor"`
	GoalsAgainst     int     `json:"goalsAgainst"`
	Points           int     `json:"points"`
	PunishmentPoints int     `json:"punishmentPoints"`
	PunishmentReason *string `json:"punishmentReason,omitempty"`
}

func (s Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

type SuspendedPlayer struct {
	ID               string  `json:"id"`
	SeriesID         string  `json:"seriesId"`
	SeriesName       string  `json:"seriesName"`
	TeamID           *string `json:"teamId,omitempty"`
	TeamName         *string `json:"teamName,omitempty"`
	TournamentID     *string `json:"tournamentId,omitempty"`
	Name             string  `json:"name"`
	RemainingMatches int     `json:"remainingMatches"`
	Reason           *string `json:"reason,omitempty"`
}

type GalleryImage struct {
	ID           string  `json:"id"`
	Series       string  `json:"series"`
	MatchDate    Date    `json:"matchDate"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	ImageURL     string  `json:"imageUrl"`
	TournamentID *string `json:"tournamentId,omitempty"`
}

type ClubInfo struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
