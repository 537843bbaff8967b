// Package me serves the calling principal's own profile.
package me

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsportal/internal/domain/entity"
	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/respond"
	"newsportal/internal/observability/logging"
	principalUC "newsportal/internal/usecase/principal"
)

var errInvalidBody = errors.New("invalid request body")

// profileDTO adds the published-article count for journalists.
type profileDTO struct {
	auth.PrincipalDTO
	PublishedArticles *int `json:"published_articles,omitempty"`
}

type GetHandler struct{ Svc *principalUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		respond.SafeError(w, r, &entity.AuthorizationError{Action: "view profile"})
		return
	}
	out := profileDTO{PrincipalDTO: auth.NewPrincipalDTO(p)}
	if p.IsJournalist() {
		n, err := h.Svc.PublishedCount(r.Context(), p)
		if err != nil {
			respond.SafeError(w, r, err)
			return
		}
		out.PublishedArticles = &n
	}
	respond.JSON(w, http.StatusOK, out)
}

// RoleHandler switches the caller's role. The role invariants are enforced
// in the same transaction: becoming a journalist drops every subscription,
// becoming a reader clears the portfolio and the newsletter.
type RoleHandler struct{ Svc *principalUC.Service }

func (h RoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	p, err := h.Svc.ChangeOwnRole(r.Context(), actor, req.Role)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("role changed",
		slog.Int64("principal_id", p.ID),
		slog.String("from", actor.Role.String()),
		slog.String("to", p.Role.String()))
	respond.JSON(w, http.StatusOK, auth.NewPrincipalDTO(p))
}

// NewsletterHandler sets the newsletter of an editor or journalist; a null
// value clears it.
type NewsletterHandler struct{ Svc *principalUC.Service }

func (h NewsletterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Newsletter *string `json:"newsletter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	p, err := h.Svc.UpdateNewsletter(r.Context(), auth.PrincipalFromContext(r.Context()), req.Newsletter)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, auth.NewPrincipalDTO(p))
}

func Register(mux *http.ServeMux, svc *principalUC.Service) {
	mux.Handle("GET /api/me", GetHandler{svc})
	mux.Handle("PUT /api/me/role", RoleHandler{svc})
	mux.Handle("PUT /api/me/newsletter", NewsletterHandler{svc})
}
