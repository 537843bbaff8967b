package auth

import (
	"time"

	"newsportal/internal/domain/entity"
)

// PrincipalDTO is the public view of a principal. The password hash never
// leaves the server.
type PrincipalDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Group    string `json:"group"`
	// Permissions lists what the role group grants, e.g. add_article.
	Permissions []string  `json:"permissions"`
	Bio         string    `json:"bio,omitempty"`
	Newsletter  *string   `json:"newsletter"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewPrincipalDTO(p *entity.Principal) PrincipalDTO {
	return PrincipalDTO{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		Role:        p.Role.String(),
		Group:       p.Group(),
		Permissions: permissionNames(p.Role),
		Bio:         p.Bio,
		Newsletter:  p.Newsletter,
		CreatedAt:   p.CreatedAt,
	}
}

func permissionNames(r entity.Role) []string {
	perms := r.Permissions()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
