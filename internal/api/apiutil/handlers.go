package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 4 << 20

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the failure body shared by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	return decodeJSON(r, dst, true)
}

// DecodeJSONLoose decodes like DecodeJSON but ignores unknown top-level fields.
func DecodeJSONLoose(r *http.Request, dst any) error {
	return decodeJSON(r, dst, false)
}

func decodeJSON(r *http.Request, dst any, strict bool) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("missing request body")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes {success:false, error:message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	if err := WriteJSON(w, status, ErrorResponse{Success: false, Error: message}); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}

// WriteHandlerError logs err and writes it. HandlerError values keep their
// status and message; anything else becomes a 500 with err's message.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	if !errors.As(err, &herr) {
		herr = HandlerError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}

	event := logger.Warn()
	if herr.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", herr.Status).Msg("Request failed")

	WriteError(w, herr.Status, herr.Message)
}

// RequireMethod writes 405 and returns false unless r uses one of methods.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
