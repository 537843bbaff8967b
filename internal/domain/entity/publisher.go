package entity

import "time"

// Publisher is an outlet that editors manage and journalists write for.
// Membership edges are dropped when a member principal is deleted; the publisher persists.
type Publisher struct {
	ID            int64
	Name          string
	EditorIDs     []int64
	JournalistIDs []int64
	CreatedAt     time.Time
}

// HasEditor reports whether principalID is an editor member of the publisher.
func (p *Publisher) HasEditor(principalID int64) bool {
	for _, id := range p.EditorIDs {
		if id == principalID {
			return true
		}
	}
	return false
}

// Subscriptions is the outgoing subscription set of a reader.
type Subscriptions struct {
	PublisherIDs  []int64
	JournalistIDs []int64
}

// IsEmpty reports whether the reader follows nothing.
func (s Subscriptions) IsEmpty() bool {
	return len(s.PublisherIDs) == 0 && len(s.JournalistIDs) == 0
}
