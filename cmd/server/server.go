// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/api"
	"github.com/clubfutbol/clubsite/internal/api/contactapi"
	"github.com/clubfutbol/clubsite/internal/api/siteapi"
	"github.com/clubfutbol/clubsite/internal/api/syncapi"
	"github.com/clubfutbol/clubsite/internal/config"
	"github.com/clubfutbol/clubsite/internal/contact"
	"github.com/clubfutbol/clubsite/internal/db"
	"github.com/clubfutbol/clubsite/internal/email"
	"github.com/clubfutbol/clubsite/internal/ratelimit"
	"github.com/clubfutbol/clubsite/internal/sheetsync"
	"github.com/clubfutbol/clubsite/internal/site"
)

// newServer wires services into handlers. The returned cleanup releases
// background resources owned by the handlers.
func newServer(cfg *config.Config, database *db.DB) (*http.Server, func(), error) {
	cleanup := func() {}

	siteapi.InitHandlers(site.NewService(database.Queries, cfg.Gallery.SeriesAliases))
	syncapi.InitHandlers(sheetsync.NewService(database))

	if cfg.EmailEnabled() {
		sesClient, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init ses client: %w", err)
		}
		limiter := ratelimit.New(&ratelimit.Config{
			Cooldown:        time.Duration(cfg.Contact.CooldownSeconds) * time.Second,
			MaxPerHour:      cfg.Contact.MaxPerHour,
			MaxPerIPPerHour: cfg.Contact.MaxPerIPPerHour,
		})
		cleanup = limiter.Close

		contactapi.InitHandlers(contact.NewService(sesClient, limiter, contact.Config{
			UserSender:    cfg.Email.Sender,
			AdminSender:   cfg.Email.AdminSender,
			AdminAddress:  cfg.Email.AdminAddress,
			Club:          email.ClubIdentity{Name: cfg.Email.ClubName, Tagline: cfg.Email.ClubTagline},
			DefaultRegion: cfg.Contact.DefaultRegion,
		}), cfg.Contact.TrustProxyHeader)
	} else {
		log.Warn().Msg("Email not configured; contact endpoint will respond 503")
	}

	router := http.NewServeMux()
	registerRoutes(router, cfg)

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithCORS(cfg.CORS.AllowedOrigins),
		api.WithContentType,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, cleanup, nil
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sync routes
	syncHandler := api.ChainMiddleware(http.HandlerFunc(syncapi.HandleSync), api.WithSyncToken(cfg.Sync.TokenHash))
	mux.Handle("/functions/v1/google-sheets-api", syncHandler)
	mux.Handle("/api/v1/sync", syncHandler)

	// Contact routes
	mux.HandleFunc("/functions/v1/send-contact-email", contactapi.HandleContact)
	mux.HandleFunc("/api/v1/contact", contactapi.HandleContact)

	// Read routes
	mux.HandleFunc("/api/v1/tournaments", siteapi.HandleTournaments)
	mux.HandleFunc("/api/v1/tournaments/{id}/fixture", siteapi.HandleFixture)
	mux.HandleFunc("/api/v1/tournaments/{id}/standings", siteapi.HandleStandings)
	mux.HandleFunc("/api/v1/home", siteapi.HandleHome)
	mux.HandleFunc("/api/v1/tribunal", siteapi.HandleTribunal)
	mux.HandleFunc("/api/v1/gallery", siteapi.HandleGallery)
	mux.HandleFunc("/api/v1/club-info", siteapi.HandleClubInfo)
}
