// Package publisher serves the publisher and journalist listings and the
// editor endpoints that manage publisher membership.
package publisher

import (
	"time"

	"newsportal/internal/domain/entity"
)

type DTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	EditorIDs     []int64   `json:"editor_ids"`
	JournalistIDs []int64   `json:"journalist_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

// JournalistDTO is the public journalist listing; it omits the email.
type JournalistDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

func toDTO(p *entity.Publisher) DTO {
	return DTO{
		ID:            p.ID,
		Name:          p.Name,
		EditorIDs:     nonNil(p.EditorIDs),
		JournalistIDs: nonNil(p.JournalistIDs),
		CreatedAt:     p.CreatedAt,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
