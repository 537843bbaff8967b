package publisher

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/pathutil"
	"newsportal/internal/handler/http/respond"
	pubUC "newsportal/internal/usecase/publisher"
)

// CreateHandler creates a publisher; the calling editor becomes its first
// editor member.
type CreateHandler struct{ Svc *pubUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	p, err := h.Svc.Create(r.Context(), auth.PrincipalFromContext(r.Context()), req.Name)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(p))
}

// AffiliateHandler adds a journalist to a publisher. Only editors of that
// publisher may do so.
type AffiliateHandler struct{ Svc *pubUC.Service }

func (h AffiliateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		JournalistID int64 `json:"journalist_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	p, err := h.Svc.AffiliateJournalist(r.Context(), auth.PrincipalFromContext(r.Context()), id, req.JournalistID)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
