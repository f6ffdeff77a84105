// internal/aggregate/index.go
package aggregate

import (
	"math"

	"github.com/clubfutbol/clubsite/internal/models"
)

const (
	UnknownSeries = "Unknown"
	GeneralGroup  = "General"
)

// unknownPosition sorts unnamed series after every real one.
const unknownPosition = math.MaxInt

type SeriesInfo struct {
	Name     string
	Position int
}

// SeriesIndex resolves series ids to display names and ordering keys.
type SeriesIndex map[string]SeriesInfo

func BuildSeriesIndex(series []models.Series) SeriesIndex {
	idx := make(SeriesIndex, len(series))
	for _, s := range series {
		idx[s.ID] = SeriesInfo{Name: s.Name, Position: s.Position}
	}
	return idx
}

// Resolve returns the series info for id, or the Unknown sentinel.
func (idx SeriesIndex) Resolve(id string) SeriesInfo {
	if info, ok := idx[id]; ok {
		return info
	}
	return SeriesInfo{Name: UnknownSeries, Position: unknownPosition}
}

func (idx SeriesIndex) Name(id string) string {
	return idx.Resolve(id).Name
}

type GroupInfo struct {
	ID      string
	Name    string
	Order   int
	PhaseID string
}

type GroupIndex map[string]GroupInfo

func BuildGroupIndex(groups []models.PhaseGroup) GroupIndex {
	idx := make(GroupIndex, len(groups))
	for _, g := range groups {
		idx[g.ID] = GroupInfo{ID: g.ID, Name: g.GroupName, Order: g.GroupOrder, PhaseID: g.PhaseID}
	}
	return idx
}

// Resolve maps a nullable group id to its group. Rows without a group, or
// whose group is not in the index, land in the implicit General bucket.
func (idx GroupIndex) Resolve(groupID *string) GroupInfo {
	if groupID != nil {
		if info, ok := idx[*groupID]; ok {
			return info
		}
	}
	return GroupInfo{Name: GeneralGroup, Order: 0}
}
