// Package respond writes JSON responses and maps domain errors to HTTP status
// codes without leaking internal details.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Error writes err's message verbatim. Use it only for messages built by the handler.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, ErrorBody{Error: err.Error()})
}

// StatusFor classifies err:
//
//	ValidationError, ErrInvalidInput  400
//	ErrUnauthenticated                401
//	ErrForbidden                      403
//	ErrNotFound                       404
//	ErrConflict                       409
//	anything else                     500
func StatusFor(err error) int {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SafeError writes err with the status chosen by StatusFor.
// Client errors return a message safe for users; server errors are logged
// (sanitized) and answered with a generic message.
func SafeError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	code := StatusFor(err)
	if code >= 500 {
		logger := slog.Default()
		if r != nil {
			logger = logging.FromContext(r.Context()).With("method", r.Method, "path", r.URL.Path)
		}
		logger.Error("internal server error",
			slog.Int("code", code),
			slog.String("error", SanitizeError(err)))
		JSON(w, code, ErrorBody{Error: "internal server error"})
		return
	}
	JSON(w, code, clientBody(err))
}

func clientBody(err error) ErrorBody {
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return ErrorBody{Error: ve.Message, Field: ve.Field}
	}
	var ae *entity.AuthorizationError
	if errors.As(err, &ae) {
		return ErrorBody{Error: ae.Error()}
	}
	for _, sentinel := range []error{entity.ErrConflict, entity.ErrUnauthenticated, entity.ErrForbidden} {
		if errors.Is(err, sentinel) {
			return ErrorBody{Error: sentinel.Error()}
		}
	}
	if errors.Is(err, entity.ErrNotFound) {
		return ErrorBody{Error: notFoundMessage(err)}
	}
	return ErrorBody{Error: err.Error()}
}

// notFoundMessage returns the innermost named not-found error, e.g.
// "publisher not found" out of "Get: publisher not found".
func notFoundMessage(err error) string {
	msg := entity.ErrNotFound.Error()
	for e := err; e != nil && e != entity.ErrNotFound; e = errors.Unwrap(e) {
		msg = e.Error()
	}
	return msg
}
