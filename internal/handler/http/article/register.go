package article

import (
	"net/http"

	artUC "newsportal/internal/usecase/article"
)

// Register registers all article-related HTTP handlers with the given mux.
// The caller wraps the mux with auth.Authenticate; authorization happens in
// the use cases.
func Register(mux *http.ServeMux, svc *artUC.Service, resolver *artUC.Resolver) {
	mux.Handle("GET /api/articles", ListHandler{resolver})
	mux.Handle("GET /api/articles/{id}", GetHandler{resolver})
	mux.Handle("POST /api/articles", CreateHandler{svc})
	mux.Handle("POST /api/articles/{id}/approve", ApproveHandler{svc})

	mux.Handle("GET /api/editor/pending", PendingHandler{resolver})
	mux.Handle("GET /api/journalist/dashboard", DashboardHandler{resolver})
}
