package entity

import (
	"fmt"
	"strings"
)

// Role is the single role tag held by every principal.
type Role string

const (
	RoleReader     Role = "reader"
	RoleEditor     Role = "editor"
	RoleJournalist Role = "journalist"
)

// Permission names a model-level capability granted by a role group.
type Permission string

const (
	PermAddArticle    Permission = "add_article"
	PermViewArticle   Permission = "view_article"
	PermChangeArticle Permission = "change_article"
	PermDeleteArticle Permission = "delete_article"
)

// rolePermissions is the static permission set of each role group.
var rolePermissions = map[Role][]Permission{
	RoleReader:     {PermViewArticle},
	RoleEditor:     {PermViewArticle, PermChangeArticle, PermDeleteArticle},
	RoleJournalist: {PermAddArticle, PermViewArticle, PermChangeArticle, PermDeleteArticle},
}

// AllRoles returns every known role in a stable order.
func AllRoles() []Role {
	return []Role{RoleReader, RoleEditor, RoleJournalist}
}

// ParseRole converts a raw role tag into a Role.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.IsValid() {
		names := make([]string, 0, len(rolePermissions))
		for _, known := range AllRoles() {
			names = append(names, known.String())
		}
		return "", &ValidationError{
			Field:   "role",
			Message: fmt.Sprintf("must be one of %s (got %q)", strings.Join(names, ", "), raw),
		}
	}
	return r, nil
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Group returns the name of the role-derived group, the capitalized role tag.
// An unknown role has no group.
func (r Role) Group() string {
	if !r.IsValid() {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Permissions returns a copy of the permissions granted to the role group.
func (r Role) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Can reports whether the role group grants perm.
func (r Role) Can(perm Permission) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
