package http

import (
	"log/slog"
	"net/http"

	"newsportal/internal/handler/http/article"
	"newsportal/internal/handler/http/auth"
	"newsportal/internal/handler/http/me"
	"newsportal/internal/handler/http/publisher"
	"newsportal/internal/handler/http/requestid"
	"newsportal/internal/handler/http/subscription"
	"newsportal/internal/observability/tracing"
	artUC "newsportal/internal/usecase/article"
	principalUC "newsportal/internal/usecase/principal"
	pubUC "newsportal/internal/usecase/publisher"
	subUC "newsportal/internal/usecase/subscription"
)

// Deps are the collaborators of the route table.
type Deps struct {
	Logger        *slog.Logger
	Issuer        *auth.Issuer
	Principals    *principalUC.Service
	Articles      *artUC.Service
	Resolver      *artUC.Resolver
	Publishers    *pubUC.Service
	Subscriptions *subUC.Service
	Health        *HealthHandler
	Ready         *ReadyHandler
	AuthLimiter   *IPRateLimiter
	MaxBodyBytes  int64
}

// NewRouter builds the complete handler:
//
//	/health /ready /live /metrics   probes, no auth
//	/auth/signup /auth/token        rate limited per IP
//	/api/...                        bearer token optional, checked by Authenticate
func NewRouter(d Deps) http.Handler {
	api := http.NewServeMux()
	article.Register(api, d.Articles, d.Resolver)
	publisher.Register(api, d.Publishers, d.Principals)
	subscription.Register(api, d.Subscriptions)
	me.Register(api, d.Principals)

	authRoutes := http.NewServeMux()
	authRoutes.Handle("POST /auth/signup", auth.SignupHandler{Svc: d.Principals})
	authRoutes.Handle("POST /auth/token", auth.TokenHandler{Svc: d.Principals, Issuer: d.Issuer})

	root := http.NewServeMux()
	root.Handle("GET /health", d.Health)
	root.Handle("GET /ready", d.Ready)
	root.Handle("GET /live", &LiveHandler{})
	root.Handle("GET /metrics", MetricsHandler())
	root.Handle("/auth/", d.AuthLimiter.Limit(authRoutes))
	root.Handle("/api/", auth.Authenticate(d.Issuer, d.Principals)(api))

	return Chain(root,
		requestid.Middleware,
		tracing.Middleware,
		Logging(d.Logger),
		Recover(d.Logger),
		MetricsMiddleware,
		InputValidation(d.MaxBodyBytes),
	)
}
