// Package subscription exposes a reader's publisher and journalist
// subscriptions. Every write is idempotent.
package subscription

import (
	"context"
	"net/http"

	"newsportal/internal/domain/entity"
	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/pathutil"
	"newsportal/internal/handler/http/respond"
	subUC "newsportal/internal/usecase/subscription"
)

type DTO struct {
	PublisherIDs  []int64 `json:"publisher_ids"`
	JournalistIDs []int64 `json:"journalist_ids"`
}

func toDTO(s entity.Subscriptions) DTO {
	out := DTO{PublisherIDs: s.PublisherIDs, JournalistIDs: s.JournalistIDs}
	if out.PublisherIDs == nil {
		out.PublisherIDs = []int64{}
	}
	if out.JournalistIDs == nil {
		out.JournalistIDs = []int64{}
	}
	return out
}

type ListHandler struct{ Svc *subUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Svc.List(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(subs))
}

type changeFunc func(ctx context.Context, actor *entity.Principal, id int64) error

// ChangeHandler applies one subscribe or unsubscribe call and answers with
// the resulting subscription set.
type ChangeHandler struct {
	Svc    *subUC.Service
	Change changeFunc
}

func (h ChangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	if err := h.Change(r.Context(), actor, id); err != nil {
		respond.SafeError(w, r, err)
		return
	}
	subs, err := h.Svc.List(r.Context(), actor)
	if err != nil {
		respond.SafeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(subs))
}

func Register(mux *http.ServeMux, svc *subUC.Service) {
	mux.Handle("GET /api/subscriptions", ListHandler{svc})
	mux.Handle("PUT /api/subscriptions/publishers/{id}", ChangeHandler{svc, svc.SubscribePublisher})
	mux.Handle("DELETE /api/subscriptions/publishers/{id}", ChangeHandler{svc, svc.UnsubscribePublisher})
	mux.Handle("PUT /api/subscriptions/journalists/{id}", ChangeHandler{svc, svc.SubscribeJournalist})
	mux.Handle("DELETE /api/subscriptions/journalists/{id}", ChangeHandler{svc, svc.UnsubscribeJournalist})
}
