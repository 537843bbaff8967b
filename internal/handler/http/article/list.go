package article

import (
	"log/slog"
	"net/http"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/respond"
	"newsportal/internal/observability/logging"
	artUC "newsportal/internal/usecase/article"
)

// ListHandler returns the articles visible to the caller. Anonymous callers
// see every approved article; readers only their subscriptions.
type ListHandler struct{ Resolver *artUC.Resolver }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer := auth.PrincipalFromContext(r.Context())
	list, err := h.Resolver.Resolve(r.Context(), viewer)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Debug("articles resolved", slog.Int("count", len(list)))
	respond.JSON(w, http.StatusOK, toDTOs(list))
}
