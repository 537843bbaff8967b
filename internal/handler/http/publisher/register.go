package publisher

import (
	"net/http"

	principalUC "newsportal/internal/usecase/principal"
	pubUC "newsportal/internal/usecase/publisher"
)

func Register(mux *http.ServeMux, svc *pubUC.Service, principals *principalUC.Service) {
	mux.Handle("GET /api/publishers", ListHandler{svc})
	mux.Handle("POST /api/publishers", CreateHandler{svc})
	mux.Handle("POST /api/publishers/{id}/journalists", AffiliateHandler{svc})
	mux.Handle("GET /api/journalists", JournalistsHandler{principals})
}
