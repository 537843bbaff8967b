package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"newsportal/internal/domain/entity"
	"newsportal/internal/handler/http/respond"
	"newsportal/internal/observability/logging"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

// PrincipalLoader loads the principal named by a verified token.
type PrincipalLoader interface {
	Get(ctx context.Context, id int64) (*entity.Principal, error)
}

// PrincipalFromContext returns the authenticated principal, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *entity.Principal {
	p, _ := ctx.Value(ctxPrincipal).(*entity.Principal)
	return p
}

func WithPrincipal(ctx context.Context, p *entity.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// Authenticate resolves the bearer token into a principal.
//
// A request without an Authorization header continues anonymously, and the
// use cases decide whether anonymity is acceptable. A header that is present
// but malformed, expired, or names a deleted principal is answered with 401.
// The principal is reloaded on every request so role changes apply at once.
func Authenticate(issuer *Issuer, principals PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if len(authz) <= len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
				reject(w, r, "malformed_header")
				return
			}

			id, err := issuer.Verify(strings.TrimSpace(authz[len(prefix):]))
			if err != nil {
				reason := "invalid"
				if errors.Is(err, ErrTokenExpired) {
					reason = "expired"
				}
				reject(w, r, reason)
				return
			}

			p, err := principals.Get(r.Context(), id)
			if errors.Is(err, entity.ErrNotFound) {
				reject(w, r, "unknown_principal")
				return
			}
			if err != nil {
				respond.SafeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	RecordTokenRejected(reason)
	logging.FromContext(r.Context()).Warn("bearer token rejected", "reason", reason)
	respond.Error(w, http.StatusUnauthorized, errors.New("invalid or expired token"))
}
