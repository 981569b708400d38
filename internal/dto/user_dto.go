package dto

import (
	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// UpsertProfileRequest sets the caller's display name and email
type UpsertProfileRequest struct {
	Name  string `json:"name" binding:"required,max=255" example:"Jane Doe"`
	Email string `json:"email" binding:"omitempty,email,max=255" example:"jane@example.com"`
}

// UserResponse represents a user that boards can be shared with
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// NewUserResponses builds responses for users
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}

// ToDomain converts the response back into a user value
func (r UserResponse) ToDomain() domain.User {
	return domain.User{ID: r.ID, Name: r.Name, Email: r.Email}
}
