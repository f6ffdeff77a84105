// internal/aggregate/matches.go
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/clubfutbol/clubsite/internal/models"
)

type RoundMatches struct {
	Round   string         `json:"round"`
	Matches []models.Match `json:"matches"`
}

type GroupMatches struct {
	GroupID    string         `json:"groupId,omitempty"`
	GroupName  string         `json:"groupName"`
	GroupOrder int            `json:"groupOrder"`
	Rounds     []RoundMatches `json:"rounds"`
}

type SeriesMatches struct {
	SeriesName string         `json:"seriesName"`
	Groups     []GroupMatches `json:"groups"`

	position int
}

// AggregateMatches nests matches as series -> group -> round.
//
// Series are keyed by display name and ordered by position, Unknown last.
// Groups are ordered by group order with General (order 0) first. Numeric
// rounds come first in ascending value, named rounds follow in the order
// they were first seen. Matches inside a round keep their input order.
func AggregateMatches(matches []models.Match, series SeriesIndex, groups GroupIndex) []SeriesMatches {
	var out []*SeriesMatches
	bySeries := make(map[string]*SeriesMatches)

	type groupKey struct{ series, group string }
	byGroup := make(map[groupKey]*GroupMatches)
	byRound := make(map[groupKey]map[string]int)

	// Pointers into out[i].Groups are invalidated by append, so groups are
	// collected separately and attached once all matches are placed.
	groupOrder := make(map[string][]*GroupMatches)

	for _, m := range matches {
		info := series.Resolve(m.SeriesID)
		sm, ok := bySeries[info.Name]
		if !ok {
			sm = &SeriesMatches{SeriesName: info.Name, position: info.Position}
			bySeries[info.Name] = sm
			out = append(out, sm)
		} else if info.Position < sm.position {
			sm.position = info.Position
		}

		g := groups.Resolve(m.GroupID)
		gk := groupKey{series: info.Name, group: g.ID}
		gm, ok := byGroup[gk]
		if !ok {
			gm = &GroupMatches{GroupID: g.ID, GroupName: g.Name, GroupOrder: g.Order}
			byGroup[gk] = gm
			byRound[gk] = make(map[string]int)
			groupOrder[info.Name] = append(groupOrder[info.Name], gm)
		}

		ri, ok := byRound[gk][m.Round]
		if !ok {
			ri = len(gm.Rounds)
			byRound[gk][m.Round] = ri
			gm.Rounds = append(gm.Rounds, RoundMatches{Round: m.Round})
		}
		gm.Rounds[ri].Matches = append(gm.Rounds[ri].Matches, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].position < out[j].position
	})

	result := make([]SeriesMatches, 0, len(out))
	for _, sm := range out {
		gs := groupOrder[sm.SeriesName]
		sort.SliceStable(gs, func(i, j int) bool {
			return gs[i].GroupOrder < gs[j].GroupOrder
		})
		for _, gm := range gs {
			SortRounds(gm.Rounds)
			sm.Groups = append(sm.Groups, *gm)
		}
		result = append(result, *sm)
	}
	return result
}

// roundNumber parses a round label as an integer.
func roundNumber(round string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(round))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortRounds orders numeric rounds ascending ahead of named rounds, which
// keep their relative order.
func SortRounds(rounds []RoundMatches) {
	sort.SliceStable(rounds, func(i, j int) bool {
		ni, iNumeric := roundNumber(rounds[i].Round)
		nj, jNumeric := roundNumber(rounds[j].Round)
		switch {
		case iNumeric && jNumeric:
			return ni < nj
		case iNumeric != jNumeric:
			return iNumeric
		default:
			return false
		}
	})
}

// CountMatches returns the number of matches placed in an aggregation.
func CountMatches(series []SeriesMatches) int {
	total := 0
	for _, s := range series {
		for _, g := range s.Groups {
			for _, r := range g.Rounds {
				total += len(r.Matches)
			}
		}
	}
	return total
}
