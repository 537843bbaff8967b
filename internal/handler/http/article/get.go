package article

import (
	"net/http"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/pathutil"
	"newsportal/internal/handler/http/respond"
	artUC "newsportal/internal/usecase/article"
)

// GetHandler returns one article if it is in the caller's visible set.
// Pending and out-of-subscription articles answer 404, not 403.
type GetHandler struct{ Resolver *artUC.Resolver }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	a, err := h.Resolver.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}
