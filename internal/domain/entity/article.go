// Package entity defines the core domain entities and validation logic for the portal.
// It contains the fundamental business objects such as Principal, Publisher and Article,
// along with their role rules and domain-specific errors.
package entity

import "time"

// Article represents a news article submitted by a journalist under a publisher.
// An article starts pending (Approved == false) and may only move to approved.
type Article struct {
	ID           int64
	Title        string
	Body         string
	PublisherID  int64
	JournalistID int64
	Approved     bool
	ApprovedAt   *time.Time
	CreatedAt    time.Time
}

// IsPending reports whether the article is still awaiting editor approval.
func (a *Article) IsPending() bool {
	return !a.Approved
}
