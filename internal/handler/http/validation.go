package http

import (
	"net/http"

	"newsportal/internal/handler/http/respond"
)

const (
	maxAuthorizationHeader = 8 << 10
	maxPathLength          = 2 << 10
)

// InputValidation rejects oversized Authorization headers and paths and caps
// the request body at maxBodyBytes.
func InputValidation(maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthorizationHeader {
				respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "authorization header too large"})
				return
			}
			if len(r.URL.Path) > maxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "URI too long"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
