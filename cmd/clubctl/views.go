// cmd/clubctl/views.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/clubfutbol/clubsite/internal/aggregate"
	"github.com/clubfutbol/clubsite/internal/config"
	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/site"
)

type standingsCmd struct {
	Tournament string `help:"Tournament ID." required:""`
}

type fixtureCmd struct {
	Tournament string `help:"Tournament ID." required:""`
	Series     string `help:"Only print this series."`
}

func openSite(path string) (*site.Service, func() error, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return site.NewService(database.Queries, cfg.Gallery.SeriesAliases), database.Close, nil
}

func (a *standingsCmd) Run(g *globalCmd) error {
	svc, closeFn, err := openSite(g.Config)
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := svc.Standings(context.Background(), a.Tournament)
	if err != nil {
		return err
	}
	renderStandings(os.Stdout, view.Series)
	return nil
}

func (a *fixtureCmd) Run(g *globalCmd) error {
	svc, closeFn, err := openSite(g.Config)
	if err != nil {
		return err
	}
	defer closeFn()

	view, err := svc.Fixture(context.Background(), a.Tournament)
	if err != nil {
		return err
	}
	series := view.Series
	if a.Series != "" {
		series = nil
		for _, s := range view.Series {
			if s.SeriesName == a.Series {
				series = append(series, s)
			}
		}
	}
	renderFixture(os.Stdout, series)
	return nil
}

func renderStandings(out io.Writer, series []aggregate.SeriesStandings) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Series", "Group", "Pos", "Team", "PJ", "G", "E", "P", "GF", "GC", "DG", "Pts"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	for _, s := range series {
		for _, g := range s.Groups {
			for _, st := range g.Standings {
				t.AppendRow(table.Row{
					s.SeriesName, g.GroupName, st.Position, st.TeamName,
					st.MatchesPlayed, st.Wins, st.Draws, st.Losses,
					st.GoalsFor, st.GoalsAgainst, st.GoalDifference(), st.Points,
				})
			}
		}
		t.AppendSeparator()
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderFixture(out io.Writer, series []aggregate.SeriesMatches) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Series", "Group", "Round", "Date", "Home", "Score", "Away", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
		{Number: 3, AutoMerge: true},
	})
	for _, s := range series {
		for _, g := range s.Groups {
			for _, r := range g.Rounds {
				for _, m := range r.Matches {
					date := ""
					if m.MatchDate != nil {
						date = m.MatchDate.String()
					}
					score := "-"
					if m.HomeScore != nil && m.AwayScore != nil {
						score = fmt.Sprintf("%d - %d", *m.HomeScore, *m.AwayScore)
					}
					t.AppendRow(table.Row{s.SeriesName, g.GroupName, r.Round, date, m.HomeTeamName, score, m.AwayTeamName, m.Status})
				}
			}
		}
		t.AppendSeparator()
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
