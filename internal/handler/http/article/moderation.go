package article

import (
	"net/http"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/respond"
	artUC "newsportal/internal/usecase/article"
)

// PendingHandler serves the editor moderation queue.
type PendingHandler struct{ Resolver *artUC.Resolver }

func (h PendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Resolver.ModerationQueue(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(list))
}

// DashboardHandler serves the journalist dashboard.
type DashboardHandler struct{ Resolver *artUC.Resolver }

func (h DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d, err := h.Resolver.JournalistDashboard(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, DashboardDTO{
		Approved:   toDTOs(d.Approved),
		Pending:    toDTOs(d.Pending),
		HasPending: d.HasPending,
	})
}
