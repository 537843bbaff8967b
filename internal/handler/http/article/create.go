package article

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/respond"
	artUC "newsportal/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP 記事投稿（記者のみ）
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		PublisherID int64  `json:"publisher_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	a, err := h.Svc.Submit(r.Context(), auth.PrincipalFromContext(r.Context()), artUC.SubmitInput{
		Title:       req.Title,
		Body:        req.Body,
		PublisherID: req.PublisherID,
	})
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/articles/"+strconv.FormatInt(a.ID, 10))
	respond.JSON(w, http.StatusCreated, toDTO(a))
}
