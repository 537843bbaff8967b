package entity

import "time"

// Principal is an authenticated actor of the portal holding exactly one role.
//
// Role-exclusive invariants:
//   - a journalist holds no publisher or journalist subscriptions
//   - a reader holds no published-article portfolio and Newsletter is nil
type Principal struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Bio          string
	// Newsletter is nil when absent. An empty string is a present but empty newsletter.
	Newsletter *string
	CreatedAt  time.Time
}

// IsReader reports whether the principal currently holds the reader role.
func (p *Principal) IsReader() bool {
	return p != nil && p.Role == RoleReader
}

// IsEditor reports whether the principal currently holds the editor role.
func (p *Principal) IsEditor() bool {
	return p != nil && p.Role == RoleEditor
}

// IsJournalist reports whether the principal currently holds the journalist role.
func (p *Principal) IsJournalist() bool {
	return p != nil && p.Role == RoleJournalist
}

// Group returns the role-derived group name of the principal.
func (p *Principal) Group() string {
	if p == nil {
		return ""
	}
	return p.Role.Group()
}
