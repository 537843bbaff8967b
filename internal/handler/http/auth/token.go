package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsportal/internal/handler/http/respond"
	"newsportal/internal/observability/logging"
	principalUC "newsportal/internal/usecase/principal"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenHandler exchanges a username and password for a bearer token.
type TokenHandler struct {
	Svc    *principalUC.Service
	Issuer *Issuer
}

func (h TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context())

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RecordAuthRequest("unknown", "failure")
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request"))
		return
	}

	p, err := h.Svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		RecordAuthRequest("unknown", "failure")
		RecordAuthDuration("unknown", time.Since(start).Seconds())
		if errors.Is(err, principalUC.ErrInvalidCredentials) {
			logger.Warn("authentication failed", slog.String("reason", "invalid_credentials"))
			respond.Error(w, http.StatusUnauthorized, err)
			return
		}
		respond.SafeError(w, r, err)
		return
	}

	role := p.Role.String()
	signed, exp, err := h.Issuer.Issue(p)
	if err != nil {
		RecordAuthRequest(role, "failure")
		respond.SafeError(w, r, err)
		return
	}

	logger.Info("authentication successful",
		slog.Int64("principal_id", p.ID),
		slog.String("role", role),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	RecordAuthRequest(role, "success")
	RecordAuthDuration(role, time.Since(start).Seconds())

	respond.JSON(w, http.StatusOK, tokenResponse{Token: signed, ExpiresAt: exp})
}
