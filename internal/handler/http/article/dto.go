// Package article provides HTTP handlers for reading, submitting and
// approving articles.
package article

import (
	"time"

	"newsportal/internal/domain/entity"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	PublisherID  int64      `json:"publisher_id"`
	JournalistID int64      `json:"journalist_id"`
	Approved     bool       `json:"approved"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DashboardDTO is the journalist's view of their own work.
type DashboardDTO struct {
	Approved   []DTO `json:"approved"`
	Pending    []DTO `json:"pending"`
	HasPending bool  `json:"has_pending"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:           a.ID,
		Title:        a.Title,
		Body:         a.Body,
		PublisherID:  a.PublisherID,
		JournalistID: a.JournalistID,
		Approved:     a.Approved,
		ApprovedAt:   a.ApprovedAt,
		CreatedAt:    a.CreatedAt,
	}
}

func toDTOs(in []*entity.Article) []DTO {
	out := make([]DTO, 0, len(in))
	for _, a := range in {
		out = append(out, toDTO(a))
	}
	return out
}
