// cmd/clubctl/main.go
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type globalCmd struct {
	Config string `help:"Path to the server configuration file." env:"CONFIG_PATH" default:"config.yaml" type:"path"`
	Debug  bool   `help:"Enable debug logging."`
}

var CLI struct {
	globalCmd

	Import    importCmd    `cmd:"" help:"Import a spreadsheet workbook, one sync call per sheet."`
	Standings standingsCmd `cmd:"" help:"Print a tournament's standings."`
	Fixture   fixtureCmd   `cmd:"" help:"Print a tournament's fixture."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("clubctl"),
		kong.Description("Club site administration: spreadsheet imports and table views."),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if CLI.Debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	err := ctx.Run(&CLI.globalCmd)
	ctx.FatalIfErrorf(err)
}
