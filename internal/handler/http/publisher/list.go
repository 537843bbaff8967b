package publisher

import (
	"net/http"

	"newsportal/internal/handler/http/respond"
	principalUC "newsportal/internal/usecase/principal"
	pubUC "newsportal/internal/usecase/publisher"
)

type ListHandler struct{ Svc *pubUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, p := range list {
		out = append(out, toDTO(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

// JournalistsHandler lists every journalist with their bio.
type JournalistsHandler struct{ Svc *principalUC.Service }

func (h JournalistsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListJournalists(r.Context())
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	out := make([]JournalistDTO, 0, len(list))
	for _, p := range list {
		out = append(out, JournalistDTO{ID: p.ID, Username: p.Username, Bio: p.Bio})
	}
	respond.JSON(w, http.StatusOK, out)
}
