package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsportal/internal/handler/http/respond"
	"newsportal/internal/observability/logging"
	principalUC "newsportal/internal/usecase/principal"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
}

// SignupHandler registers a new principal with the role it asks for.
type SignupHandler struct {
	Svc *principalUC.Service
}

func (h SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request"))
		return
	}

	p, err := h.Svc.Register(r.Context(), principalUC.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Bio:      req.Bio,
	})
	if err != nil {
		RecordSignup(req.Role, "failure")
		respond.SafeError(w, r, err)
		return
	}

	RecordSignup(p.Role.String(), "success")
	logging.FromContext(r.Context()).Info("principal registered",
		slog.Int64("principal_id", p.ID),
		slog.String("role", p.Role.String()))
	respond.JSON(w, http.StatusCreated, NewPrincipalDTO(p))
}
