// internal/sheetsync/tables.go
package sheetsync

import (
	"fmt"
	"sort"
)

type Type string

const (
	TypeMatches          Type = "matches"
	TypeStandings        Type = "standings"
	TypeSuspendedPlayers Type = "suspended_players"
	TypeGallery          Type = "gallery"
	TypeClubInfo         Type = "club_info"
)

type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	// KindCount is a non-negative integer.
	KindCount
	KindDate
	KindUUID
	KindMatchStatus
)

type Column struct {
	Name     string
	Kind     ColumnKind
	Required bool
	// Defaulted columns are NOT NULL with a store default; a null value
	// leaves the column out of the row instead of writing NULL.
	Defaulted bool
}

type TableSpec struct {
	Type           Type
	Table          string
	ConflictKey    string
	Columns        []Column
	GenerateID     bool
	TouchUpdatedAt bool
	Label          string
}

func (s TableSpec) column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ignoredColumns are store-managed and silently dropped from incoming rows.
var ignoredColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

var specs = map[Type]TableSpec{
	TypeMatches: {
		Type:           TypeMatches,
		Table:          "matches",
		ConflictKey:    "id",
		TouchUpdatedAt: true,
		Label:          "Matches",
		Columns: []Column{
			{Name: "id", Kind: KindUUID, Required: true},
			{Name: "tournament_id", Kind: KindUUID, Required: true},
			{Name: "series_id", Kind: KindUUID, Required: true},
			{Name: "home_team_id", Kind: KindUUID, Required: true},
			{Name: "away_team_id", Kind: KindUUID, Required: true},
			{Name: "home_score", Kind: KindCount},
			{Name: "away_score", Kind: KindCount},
			{Name: "round", Kind: KindText},
			{Name: "match_date", Kind: KindDate},
			{Name: "match_time", Kind: KindText},
			{Name: "match_label", Kind: KindText},
			{Name: "venue", Kind: KindText},
			{Name: "status", Kind: KindMatchStatus, Defaulted: true},
			{Name: "phase_id", Kind: KindUUID},
			{Name: "group_id", Kind: KindUUID},
		},
	},
	TypeStandings: {
		Type:           TypeStandings,
		Table:          "standings",
		ConflictKey:    "id",
		TouchUpdatedAt: true,
		Label:          "Standings",
		Columns: []Column{
			{Name: "id", Kind: KindUUID, Required: true},
			{Name: "tournament_id", Kind: KindUUID, Required: true},
			{Name: "series_id", Kind: KindUUID, Required: true},
			{Name: "phase_id", Kind: KindUUID},
			{Name: "group_id", Kind: KindUUID},
			{Name: "team_id", Kind: KindUUID, Required: true},
			{Name: "position", Kind: KindCount, Defaulted: true},
			{Name: "matches_played", Kind: KindCount, Defaulted: true},
			{Name: "wins", Kind: KindCount, Defaulted: true},
			{Name: "draws", Kind: KindCount, Defaulted: true},
			{Name: "losses", Kind: KindCount, Defaulted: true},
			{Name: "goals_for", Kind: KindCount, Defaulted: true},
			{Name: "goals_against", Kind: KindCount, Defaulted: true},
			{Name: "points", Kind: KindInt, Defaulted: true},
			{Name: "punishment_points", Kind: KindCount, Defaulted: true},
			{Name: "punishment_reason", Kind: KindText},
		},
	},
	TypeSuspendedPlayers: {
		Type:           TypeSuspendedPlayers,
		Table:          "suspended_players",
		ConflictKey:    "id",
		TouchUpdatedAt: true,
		Label:          "Suspended players",
		Columns: []Column{
			{Name: "id", Kind: KindUUID, Required: true},
			{Name: "series_id", Kind: KindUUID, Required: true},
			{Name: "team_id", Kind: KindUUID},
			{Name: "tournament_id", Kind: KindUUID},
			{Name: "name", Kind: KindText, Required: true},
			{Name: "remaining_matches", Kind: KindCount, Defaulted: true},
			{Name: "reason", Kind: KindText},
		},
	},
	TypeGallery: {
		Type:        TypeGallery,
		Table:       "gallery",
		ConflictKey: "id",
		Label:       "Gallery",
		Columns: []Column{
			{Name: "id", Kind: KindUUID, Required: true},
			{Name: "series", Kind: KindText, Required: true},
			{Name: "match_date", Kind: KindDate, Required: true},
			{Name: "title", Kind: KindText},
			{Name: "description", Kind: KindText},
			{Name: "image_url", Kind: KindText, Required: true},
			{Name: "tournament_id", Kind: KindUUID},
		},
	},
	TypeClubInfo: {
		Type:           TypeClubInfo,
		Table:          "club_info",
		ConflictKey:    "section",
		GenerateID:     true,
		TouchUpdatedAt: true,
		Label:          "Club info",
		Columns: []Column{
			{Name: "id", Kind: KindUUID},
			{Name: "section", Kind: KindText, Required: true},
			{Name: "title", Kind: KindText, Required: true},
			{Name: "content", Kind: KindText, Required: true},
		},
	},
}

// UnknownTypeError is returned for a sync type outside the supported set.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("Unknown data type: %s", e.Type)
}

// Types lists the supported sync types in a stable order.
func Types() []Type {
	types := make([]Type, 0, len(specs))
	for t := range specs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func ParseType(raw string) (Type, error) {
	t := Type(raw)
	if _, ok := specs[t]; !ok {
		return "", &UnknownTypeError{Type: raw}
	}
	return t, nil
}

func SpecFor(t Type) (TableSpec, bool) {
	spec, ok := specs[t]
	return spec, ok
}
