// internal/api/siteapi/handlers.go
package siteapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/api/apiutil"
	"github.com/clubfutbol/clubsite/internal/models"
	"github.com/clubfutbol/clubsite/internal/site"
)

var (
	service     *site.Service
	serviceOnce sync.Once
)

const viewQueryTimeout = 10 * time.Second

func InitHandlers(svc *site.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

func loadService() *site.Service {
	return service
}

// viewHandler adapts a view loader into a GET handler. A failed fetch has
// already been logged by the service and yields an empty view, which is
// served as a normal response.
func viewHandler[T any](load func(ctx context.Context, svc *site.Service, r *http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		if !apiutil.RequireMethod(w, r, http.MethodGet) {
			return
		}
		svc := loadService()
		if svc == nil {
			logger.Error().Msg("Site service not initialized")
			apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), viewQueryTimeout)
		defer cancel()

		view, err := load(ctx, svc, r)
		if err != nil {
			var herr apiutil.HandlerError
			if errors.As(err, &herr) {
				apiutil.WriteHandlerError(w, r, herr)
				return
			}
			w.Header().Set("X-View-Degraded", "true")
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, view); err != nil {
			logger.Error().Err(err).Msg("Failed to write view response")
		}
	}
}

func badRequest(err error) apiutil.HandlerError {
	return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
}

type tournamentsResponse struct {
	Tournaments []models.Tournament `json:"tournaments"`
}

// GET /api/v1/tournaments[?active=true]
var HandleTournaments = viewHandler(func(ctx context.Context, svc *site.Service, r *http.Request) (tournamentsResponse, error) {
	activeOnly, err := apiutil.QueryBool(r, "active")
	if err != nil {
		return tournamentsResponse{}, badRequest(err)
	}
	tournaments, err := svc.Tournaments(ctx, activeOnly)
	return tournamentsResponse{Tournaments: tournaments}, err
})

// GET /api/v1/tournaments/{id}/fixture
var HandleFixture = viewHandler(func(ctx context.Context, svc *site.Service, r *http.Request) (site.FixtureView, error) {
	id, err := apiutil.PathUUID(r, "id")
	if err != nil {
		return site.FixtureView{}, badRequest(err)
	}
	return svc.Fixture(ctx, id)
})

// GET /api/v1/tournaments/{id}/standings
var HandleStandings = viewHandler(func(ctx context.Context, svc *site.Service, r *http.Request) (site.StandingsView, error) {
	id, err := apiutil.PathUUID(r, "id")
	if err != nil {
		return site.StandingsView{}, badRequest(err)
	}
	return svc.Standings(ctx, id)
})

// GET /api/v1/home
var HandleHome = viewHandler(func(ctx context.Context, svc *site.Service, _ *http.Request) (site.HomeView, error) {
	return svc.Home(ctx)
})

// GET /api/v1/tribunal
var HandleTribunal = viewHandler(func(ctx context.Context, svc *site.Service, _ *http.Request) (site.TribunalView, error) {
	return svc.Tribunal(ctx)
})

// GET /api/v1/gallery
var HandleGallery = viewHandler(func(ctx context.Context, svc *site.Service, _ *http.Request) (site.GalleryView, error) {
	return svc.Gallery(ctx)
})

// GET /api/v1/club-info
var HandleClubInfo = viewHandler(func(ctx context.Context, svc *site.Service, _ *http.Request) (site.ClubInfoView, error) {
	return svc.ClubInfo(ctx)
})
