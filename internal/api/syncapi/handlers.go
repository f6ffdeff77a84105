// internal/api/syncapi/handlers.go
package syncapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/api/apiutil"
	"github.com/clubfutbol/clubsite/internal/sheetsync"
)

var (
	service     *sheetsync.Service
	serviceOnce sync.Once
)

const syncTimeout = 30 * time.Second

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func InitHandlers(svc *sheetsync.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

func loadService() *sheetsync.Service {
	return service
}

// POST /functions/v1/google-sheets-api
func HandleSync(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireMethod(w, r, http.MethodPost) {
		return
	}

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Sync service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req sheetsync.Request
	if err := apiutil.DecodeJSONLoose(r, &req); err != nil {
		apiutil.WriteHandlerError(w, r, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Invalid request body: " + err.Error(),
			Err:     err,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()

	result, err := svc.Apply(ctx, req)
	if err != nil {
		apiutil.WriteHandlerError(w, r, classifySyncError(err))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, syncResponse{Success: true, Message: result.Message}); err != nil {
		logger.Error().Err(err).Msg("Failed to write sync response")
	}
}

// classifySyncError maps every sync failure to a 500 carrying the error's own
// message, so spreadsheet callers see one failure shape.
func classifySyncError(err error) apiutil.HandlerError {
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}
