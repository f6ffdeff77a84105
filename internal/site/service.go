// internal/site/service.go
package site

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/clubfutbol/clubsite/internal/aggregate"
	"github.com/clubfutbol/clubsite/internal/models"
)

// Store is the read side of the club database.
type Store interface {
	ListTournaments(ctx context.Context, activeOnly bool) ([]models.Tournament, error)
	ListSeries(ctx context.Context) ([]models.Series, error)
	ListTournamentSeries(ctx context.Context, tournamentID string) ([]models.Series, error)
	ListPhaseGroups(ctx context.Context) ([]models.PhaseGroup, error)
	ListMatchesByTournament(ctx context.Context, tournamentID string) ([]models.Match, error)
	ListTeamResults(ctx context.Context, teamID string, limit int) ([]models.Match, error)
	ListNextMatches(ctx context.Context) ([]models.NextMatch, error)
	ListStandingsByTournament(ctx context.Context, tournamentID string) ([]models.Standing, error)
	ListActiveSuspensions(ctx context.Context) ([]models.SuspendedPlayer, error)
	ListGallery(ctx context.Context) ([]models.GalleryImage, error)
	ListClubInfo(ctx context.Context) ([]models.ClubInfo, error)
}

// FetchError reports a failed read of one resource.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// formConcurrency bounds the per-team result lookups of the home view.
const formConcurrency = 4

type Service struct {
	store          Store
	galleryAliases map[string]string
}

func NewService(store Store, galleryAliases map[string]string) *Service {
	return &Service{store: store, galleryAliases: galleryAliases}
}

// fetch schedules one read on g, storing the result in dst.
func fetch[T any](g *errgroup.Group, ctx context.Context, resource string, dst *T, fn func(context.Context) (T, error)) {
	g.Go(func() error {
		v, err := fn(ctx)
		if err != nil {
			return &FetchError{Resource: resource, Err: err}
		}
		*dst = v
		return nil
	})
}

func logFetchFailure(ctx context.Context, view string, err error) {
	log.Ctx(ctx).Error().Err(err).Str("view", view).Msg("Failed to load view data")
}

func (s *Service) Tournaments(ctx context.Context, activeOnly bool) ([]models.Tournament, error) {
	tournaments, err := s.store.ListTournaments(ctx, activeOnly)
	if err != nil {
		err = &FetchError{Resource: "tournaments", Err: err}
		logFetchFailure(ctx, "tournaments", err)
		return nil, err
	}
	return tournaments, nil
}

type FixtureView struct {
	TournamentID    string                    `json:"tournamentId"`
	AvailableSeries []string                  `json:"availableSeries"`
	Series          []aggregate.SeriesMatches `json:"series"`
}

// Fixture groups a tournament's matches by series, group and round.
// Series are named from the full series table; only series linked to the
// tournament are offered as available.
func (s *Service) Fixture(ctx context.Context, tournamentID string) (FixtureView, error) {
	var (
		series           []models.Series
		tournamentSeries []models.Series
		groups           []models.PhaseGroup
		matches          []models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(g, gctx, "series", &series, s.store.ListSeries)
	fetch(g, gctx, "tournament_series", &tournamentSeries, func(ctx context.Context) ([]models.Series, error) {
		return s.store.ListTournamentSeries(ctx, tournamentID)
	})
	fetch(g, gctx, "phase_groups", &groups, s.store.ListPhaseGroups)
	fetch(g, gctx, "matches", &matches, func(ctx context.Context) ([]models.Match, error) {
		return s.store.ListMatchesByTournament(ctx, tournamentID)
	})
	if err := g.Wait(); err != nil {
		logFetchFailure(ctx, "fixture", err)
		return FixtureView{TournamentID: tournamentID}, err
	}

	return FixtureView{
		TournamentID:    tournamentID,
		AvailableSeries: aggregate.SeriesNames(tournamentSeries),
		Series: aggregate.AggregateMatches(matches,
			aggregate.BuildSeriesIndex(series),
			aggregate.BuildGroupIndex(groups)),
	}, nil
}

type StandingsView struct {
	TournamentID string                      `json:"tournamentId"`
	Series       []aggregate.SeriesStandings `json:"series"`
}

// Standings groups a tournament's table by series and group. Only series
// linked to the tournament are named; others resolve to Unknown.
func (s *Service) Standings(ctx context.Context, tournamentID string) (StandingsView, error) {
	var (
		tournamentSeries []models.Series
		groups           []models.PhaseGroup
		standings        []models.Standing
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(g, gctx, "tournament_series", &tournamentSeries, func(ctx context.Context) ([]models.Series, error) {
		return s.store.ListTournamentSeries(ctx, tournamentID)
	})
	fetch(g, gctx, "phase_groups", &groups, s.store.ListPhaseGroups)
	fetch(g, gctx, "standings", &standings, func(ctx context.Context) ([]models.Standing, error) {
		return s.store.ListStandingsByTournament(ctx, tournamentID)
	})
	if err := g.Wait(); err != nil {
		logFetchFailure(ctx, "standings", err)
		return StandingsView{TournamentID: tournamentID}, err
	}

	return StandingsView{
		TournamentID: tournamentID,
		Series: aggregate.AggregateStandings(standings,
			aggregate.BuildSeriesIndex(tournamentSeries),
			aggregate.BuildGroupIndex(groups)),
	}, nil
}

type HomeView struct {
	NextMatches []aggregate.UpcomingMatch        `json:"nextMatches"`
	RecentForm  map[string][]aggregate.FormEntry `json:"recentForm"`
}

// Home lists upcoming fixtures and the recent form of every team playing
// them. A failed form lookup leaves that team's form empty.
func (s *Service) Home(ctx context.Context) (HomeView, error) {
	var (
		series []models.Series
		next   []models.NextMatch
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(g, gctx, "series", &series, s.store.ListSeries)
	fetch(g, gctx, "next_matches", &next, s.store.ListNextMatches)
	if err := g.Wait(); err != nil {
		logFetchFailure(ctx, "home", err)
		return HomeView{}, err
	}

	var teamIDs []string
	seen := make(map[string]bool)
	for _, nm := range next {
		if !seen[nm.TeamID] {
			seen[nm.TeamID] = true
			teamIDs = append(teamIDs, nm.TeamID)
		}
	}

	results := make([][]models.Match, len(teamIDs))
	var fg errgroup.Group
	fg.SetLimit(formConcurrency)
	for i, teamID := range teamIDs {
		fg.Go(func() error {
			matches, err := s.store.ListTeamResults(ctx, teamID, aggregate.DefaultFormSize)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("team_id", teamID).Msg("Failed to load team results")
				return nil
			}
			results[i] = matches
			return nil
		})
	}
	_ = fg.Wait()

	form := make(map[string][]aggregate.FormEntry, len(teamIDs))
	for i, teamID := range teamIDs {
		form[teamID] = aggregate.DeriveTeamRecentForm(teamID, results[i], aggregate.DefaultFormSize)
	}

	return HomeView{
		NextMatches: aggregate.SortNextMatches(next, aggregate.BuildSeriesIndex(series)),
		RecentForm:  form,
	}, nil
}

type TribunalView struct {
	Players []aggregate.TribunalEntry `json:"players"`
}

func (s *Service) Tribunal(ctx context.Context) (TribunalView, error) {
	players, err := s.store.ListActiveSuspensions(ctx)
	if err != nil {
		err = &FetchError{Resource: "suspended_players", Err: err}
		logFetchFailure(ctx, "tribunal", err)
		return TribunalView{}, err
	}
	return TribunalView{Players: aggregate.ActiveSuspensions(players)}, nil
}

type GalleryView struct {
	Albums []aggregate.GalleryAlbum `json:"albums"`
}

func (s *Service) Gallery(ctx context.Context) (GalleryView, error) {
	images, err := s.store.ListGallery(ctx)
	if err != nil {
		err = &FetchError{Resource: "gallery", Err: err}
		logFetchFailure(ctx, "gallery", err)
		return GalleryView{}, err
	}
	return GalleryView{Albums: aggregate.GroupGallery(images, s.galleryAliases)}, nil
}

type ClubInfoView struct {
	Sections map[string]models.ClubInfo `json:"sections"`
}

func (s *Service) ClubInfo(ctx context.Context) (ClubInfoView, error) {
	rows, err := s.store.ListClubInfo(ctx)
	if err != nil {
		err = &FetchError{Resource: "club_info", Err: err}
		logFetchFailure(ctx, "club_info", err)
		return ClubInfoView{}, err
	}
	return ClubInfoView{Sections: aggregate.ClubInfoBySection(rows)}, nil
}
