// internal/aggregate/form.go
package aggregate

import (
	"sort"

	"github.com/clubfutbol/clubsite/internal/models"
)

const DefaultFormSize = 3

const unknownOpponent = "Desconocido"

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

func Classify(teamScore, opponentScore int) Result {
	switch {
	case teamScore > opponentScore:
		return ResultWin
	case teamScore < opponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}

type FormEntry struct {
	MatchID       string       `json:"matchId"`
	Result        Result       `json:"result"`
	OpponentName  string       `json:"opponentName"`
	TeamScore     int          `json:"teamScore"`
	OpponentScore int          `json:"opponentScore"`
	MatchDate     *models.Date `json:"matchDate,omitempty"`
}

// DeriveTeamRecentForm returns at most n results of the team's most recent
// completed matches with both scores recorded, newest first. n <= 0 means
// DefaultFormSize.
func DeriveTeamRecentForm(teamID string, matches []models.Match, n int) []FormEntry {
	if n <= 0 {
		n = DefaultFormSize
	}

	var played []models.Match
	for _, m := range matches {
		if m.HomeTeamID != teamID && m.AwayTeamID != teamID {
			continue
		}
		if !m.HasResult() {
			continue
		}
		played = append(played, m)
	}

	sort.SliceStable(played, func(i, j int) bool {
		di, dj := played[i].MatchDate, played[j].MatchDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return dj.Before(*di)
		}
	})

	if len(played) > n {
		played = played[:n]
	}

	form := make([]FormEntry, 0, len(played))
	for _, m := range played {
		entry := FormEntry{MatchID: m.ID, MatchDate: m.MatchDate}
		if m.HomeTeamID == teamID {
			entry.TeamScore, entry.OpponentScore = *m.HomeScore, *m.AwayScore
			entry.OpponentName = m.AwayTeamName
		} else {
			entry.TeamScore, entry.OpponentScore = *m.AwayScore, *m.HomeScore
			entry.OpponentName = m.HomeTeamName
		}
		if entry.OpponentName == "" {
			entry.OpponentName = unknownOpponent
		}
		entry.Result = Classify(entry.TeamScore, entry.OpponentScore)
		form = append(form, entry)
	}
	return form
}
