// cmd/tools/dbmigrate/main.go
package main

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/config"
	"github.com/clubfutbol/clubsite/internal/db"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config.yaml")
		command    = flag.String("command", "", "Command to run (up, down, version, force)")
		version    = flag.Int("version", -1, "Target version for force")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *command == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	sqlDB, dialect, err := db.OpenSQL(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer sqlDB.Close()

	m, err := db.NewMigrate(sqlDB, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}

	logger := log.With().Str("driver", string(dialect)).Str("command", *command).Logger()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Info().Msg("Successfully ran migrations up")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		logger.Info().Msg("Successfully ran migrations down")

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to get version")
		}
		logger.Info().Uint("version", v).Bool("dirty", dirty).Msg("Current version")

	case "force":
		if *version < 0 {
			logger.Fatal().Msg("force requires -version")
		}
		if err := m.Force(*version); err != nil {
			logger.Fatal().Err(err).Str("version", strconv.Itoa(*version)).Msg("Failed to force version")
		}
		logger.Info().Int("version", *version).Msg("Forced migration version")

	default:
		logger.Fatal().Msg("Unknown command")
	}
}
