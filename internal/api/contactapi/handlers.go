// internal/api/contactapi/handlers.go
package contactapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clubfutbol/clubsite/internal/api/apiutil"
	"github.com/clubfutbol/clubsite/internal/contact"
	"github.com/clubfutbol/clubsite/internal/ratelimit"
)

var (
	service     *contact.Service
	trustProxy  bool
	serviceOnce sync.Once
)

type contactResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UserEmailID  string `json:"userEmailId,omitempty"`
	AdminEmailID string `json:"adminEmailId,omitempty"`
}

// InitHandlers wires the relay. trustProxyHeader controls whether
// X-Forwarded-For is used for the per-IP limit.
func InitHandlers(svc *contact.Service, trustProxyHeader bool) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
		trustProxy = trustProxyHeader
	})
}

func loadService() *contact.Service {
	return service
}

// POST /functions/v1/send-contact-email
func HandleContact(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireMethod(w, r, http.MethodPost) {
		return
	}

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Contact service not initialized")
		apiutil.WriteError(w, http.StatusServiceUnavailable, "Contact service unavailable")
		return
	}

	var req contact.Request
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteHandlerError(w, r, apiutil.HandlerError{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body: " + err.Error(),
			Err:     err,
		})
		return
	}

	result, err := svc.Submit(r.Context(), req, ratelimit.GetClientIP(r, trustProxy))
	if err != nil {
		var rlErr *contact.RateLimitError
		if errors.As(err, &rlErr) {
			seconds := int(math.Ceil(rlErr.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
		}
		apiutil.WriteHandlerError(w, r, classifyContactError(err))
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, contactResponse{
		Success:      true,
		Message:      "Emails sent successfully",
		UserEmailID:  result.UserEmailID,
		AdminEmailID: result.AdminEmailID,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write contact response")
	}
}

func classifyContactError(err error) apiutil.HandlerError {
	var (
		validationErr *contact.ValidationError
		rlErr         *contact.RateLimitError
	)
	switch {
	case errors.As(err, &validationErr):
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: validationErr.Error(), Err: err}
	case errors.As(err, &rlErr):
		return apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: rlErr.Error(), Err: err}
	default:
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
}
