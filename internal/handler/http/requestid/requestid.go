// Package requestid tags each request with an id that follows it into log
// lines and into the approval events it triggers.
package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"newsportal/internal/observability/logging"
)

// RequestIDHeader is read from the caller and echoed on every response.
const RequestIDHeader = "X-Request-ID"

var validID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// New returns a time-ordered id, falling back to a random one if the
// clock sequence cannot be read.
func New() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Middleware keeps a well-formed incoming X-Request-ID and mints one otherwise.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validID.MatchString(id) {
			id = New()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}
