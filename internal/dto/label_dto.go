package dto

import (
	"time"

	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// CreateLabelRequest represents the request to create a label
type CreateLabelRequest struct {
	Name  string `json:"name" binding:"required,max=100" example:"bug"`
	Color string `json:"color" binding:"required" example:"#ef4444"`
}

// UpdateLabelRequest represents the request to rename or recolor a label
type UpdateLabelRequest struct {
	Name  string `json:"name" binding:"required,max=100" example:"defect"`
	Color string `json:"color" binding:"required" example:"#dc2626"`
}

// LabelResponse represents a label
type LabelResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLabelResponse builds the response for label
func NewLabelResponse(label *domain.Label) LabelResponse {
	return LabelResponse{
		ID:        label.ID,
		UserID:    label.UserID,
		Name:      label.Name,
		Color:     label.Color,
		CreatedAt: label.CreatedAt,
		UpdatedAt: label.UpdatedAt,
	}
}

// NewLabelResponses builds responses for labels
func NewLabelResponses(labels []*domain.Label) []LabelResponse {
	out := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, NewLabelResponse(l))
	}
	return out
}

// ToDomain converts the response back into a label value
func (r LabelResponse) ToDomain() domain.Label {
	return domain.Label{
		BaseModel: domain.BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		UserID:    r.UserID,
		Name:      r.Name,
		Color:     r.Color,
	}
}
