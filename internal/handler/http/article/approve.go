package article

import (
	"net/http"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/pathutil"
	"newsportal/internal/handler/http/respond"
	artUC "newsportal/internal/usecase/article"
)

type approveResponse struct {
	Article DTO `json:"article"`
	// Transitioned is false when the article had already been approved.
	Transitioned bool `json:"transitioned"`
}

// ApproveHandler approves a pending article (editors only). It answers as
// soon as the approval commits; notifications go out in the background.
type ApproveHandler struct{ Svc *artUC.Service }

func (h ApproveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Approve(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, approveResponse{Article: toDTO(res.Article), Transitioned: res.Transitioned})
}
