// internal/aggregate/pages.go
package aggregate

import (
	"sort"

	"github.com/clubfutbol/clubsite/internal/models"
)

const noTeam = "Sin equipo"

// DefaultGalleryAliases folds split adult squads into one gallery album.
var DefaultGalleryAliases = map[string]string{
	"Adultos A": "Adultos",
	"Adultos B": "Adultos",
}

type UpcomingMatch struct {
	models.NextMatch
	SeriesName string `json:"seriesName"`
}

// SortNextMatches orders upcoming fixtures by series position, then date.
// Fixtures of unknown series go last.
func SortNextMatches(next []models.NextMatch, series SeriesIndex) []UpcomingMatch {
	out := make([]UpcomingMatch, 0, len(next))
	for _, nm := range next {
		out = append(out, UpcomingMatch{NextMatch: nm, SeriesName: series.Name(nm.SeriesID)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := series.Resolve(out[i].SeriesID).Position, series.Resolve(out[j].SeriesID).Position
		if pi != pj {
			return pi < pj
		}
		return out[i].MatchDate.Before(out[j].MatchDate)
	})
	return out
}

type TribunalEntry struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Team             string  `json:"team"`
	Series           string  `json:"series"`
	RemainingMatches int     `json:"remainingMatches"`
	Reason           *string `json:"reason,omitempty"`
}

// ActiveSuspensions keeps players with matches left to serve, most first.
func ActiveSuspensions(players []models.SuspendedPlayer) []TribunalEntry {
	out := make([]TribunalEntry, 0, len(players))
	for _, p := range players {
		if p.RemainingMatches <= 0 {
			continue
		}
		team := noTeam
		if p.TeamName != nil && *p.TeamName != "" {
			team = *p.TeamName
		}
		out = append(out, TribunalEntry{
			ID:               p.ID,
			Name:             p.Name,
			Team:             team,
			Series:           p.SeriesName,
			RemainingMatches: p.RemainingMatches,
			Reason:           p.Reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemainingMatches > out[j].RemainingMatches
	})
	return out
}

type GalleryAlbum struct {
	Series string                `json:"series"`
	Images []models.GalleryImage `json:"images"`
}

// GroupGallery groups images by series label, folding labels through
// aliases. Albums keep the order in which their label first appears.
func GroupGallery(images []models.GalleryImage, aliases map[string]string) []GalleryAlbum {
	if len(aliases) == 0 {
		aliases = DefaultGalleryAliases
	}

	var albums []GalleryAlbum
	index := make(map[string]int)
	for _, img := range images {
		label := img.Series
		if alias, ok := aliases[label]; ok {
			label = alias
		}
		i, ok := index[label]
		if !ok {
			i = len(albums)
			index[label] = i
			albums = append(albums, GalleryAlbum{Series: label})
		}
		albums[i].Images = append(albums[i].Images, img)
	}
	return albums
}

func ClubInfoBySection(rows []models.ClubInfo) map[string]models.ClubInfo {
	out := make(map[string]models.ClubInfo, len(rows))
	for _, row := range rows {
		out[row.Section] = row
	}
	return out
}

// SeriesNames lists series names by position.
func SeriesNames(series []models.Series) []string {
	sorted := make([]models.Series, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	names := make([]string, 0, len(sorted))
	for _, s := range sorted {
		names = append(names, s.Name)
	}
	return names
}
