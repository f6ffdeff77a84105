// internal/aggregate/standings.go
package aggregate

import (
	"sort"

	"github.com/clubfutbol/clubsite/internal/models"
)

type GroupStandings struct {
	GroupID    string            `json:"groupId,omitempty"`
	GroupName  string            `json:"groupName"`
	GroupOrder int               `json:"groupOrder"`
	Standings  []models.Standing `json:"standings"`
}

type SeriesStandings struct {
	SeriesName string           `json:"seriesName"`
	Groups     []GroupStandings `json:"groups"`

	position int
}

// AggregateStandings nests standings as series -> group, each group sorted by
// the stored position. Positions are never recomputed here.
func AggregateStandings(standings []models.Standing, series SeriesIndex, groups GroupIndex) []SeriesStandings {
	var out []*SeriesStandings
	bySeries := make(map[string]*SeriesStandings)
	groupIdx := make(map[string]map[string]int)

	for _, s := range standings {
		info := series.Resolve(s.SeriesID)
		ss, ok := bySeries[info.Name]
		if !ok {
			ss = &SeriesStandings{SeriesName: info.Name, position: info.Position}
			bySeries[info.Name] = ss
			groupIdx[info.Name] = make(map[string]int)
			out = append(out, ss)
		} else if info.Position < ss.position {
			ss.position = info.Position
		}

		g := groups.Resolve(s.GroupID)
		gi, ok := groupIdx[info.Name][g.ID]
		if !ok {
			gi = len(ss.Groups)
			groupIdx[info.Name][g.ID] = gi
			ss.Groups = append(ss.Groups, GroupStandings{GroupID: g.ID, GroupName: g.Name, GroupOrder: g.Order})
		}
		ss.Groups[gi].Standings = append(ss.Groups[gi].Standings, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].position < out[j].position
	})

	result := make([]SeriesStandings, 0, len(out))
	for _, ss := range out {
		sort.SliceStable(ss.Groups, func(i, j int) bool {
			return ss.Groups[i].GroupOrder < ss.Groups[j].GroupOrder
		})
		for _, g := range ss.Groups {
			sort.SliceStable(g.Standings, func(i, j int) bool {
				return g.Standings[i].Position < g.Standings[j].Position
			})
		}
		result = append(result, *ss)
	}
	return result
}
