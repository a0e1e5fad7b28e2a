package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppl-hub/practicum/internal/shared"
)

// ErrorResponder maps domain errors to HTTP responses.
type ErrorResponder struct {
	Logger *slog.Logger
	// ExposeDetail attaches the raw error text to 500 responses. Off in production.
	ExposeDetail bool
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidTransition), errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the failure envelope for err.
func (e ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status != http.StatusInternalServerError {
		body := Envelope{Success: false, Message: publicMessage(err)}
		var verr *shared.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			body.Message = shared.ErrValidation.Error()
			body.Data = map[string]any{"fields": verr.Fields}
		}
		JSON(w, status, body)
		return
	}
	if e.Logger != nil {
		e.Logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
	}
	body := Envelope{Success: false, Message: "internal server error"}
	if e.ExposeDetail {
		body.Error = err.Error()
	}
	JSON(w, status, body)
}

// publicMessage drops the "unauthenticated: " prefix from authentication errors.
func publicMessage(err error) string {
	for _, sentinel := range []error{
		shared.ErrInvalidCredentials,
		shared.ErrAccountInactive,
		shared.ErrTokenInvalid,
		shared.ErrTokenExpired,
		shared.ErrUserNotFound,
	} {
		if errors.Is(err, sentinel) {
			return strings.TrimPrefix(sentinel.Error(), shared.ErrUnauthenticated.Error()+": ")
		}
	}
	return err.Error()
}
