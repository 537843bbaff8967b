package pathutil

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ExtractID extracts and parses an integer ID from a URL path.
// It removes the specified prefix and attempts to parse the remaining string as an int64.
//
// Example:
//
//	id, err := ExtractID("/api/articles/123", "/api/articles/")
//	// Returns: 123, nil
func ExtractID(path, prefix string) (int64, error) {
	return parseID(strings.TrimPrefix(path, prefix))
}

// PathID parses the named wildcard of a ServeMux pattern such as
// "GET /api/articles/{id}" as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	return parseID(r.PathValue(name))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
