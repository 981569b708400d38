package dto

import (
	"time"

	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// CreateBoardRequest represents the request to create a new board
// @Description Request body for creating an empty board owned by the caller
type CreateBoardRequest struct {
	Title       string `json:"title" binding:"required,max=255" example:"Sprint 12"`
	Description string `json:"description" binding:"max=2000" example:"Work planned for the sprint"`
}

// UpdateBoardRequest represents a partial board update
// @Description All fields are optional. columns replaces the whole columns array,
// @Description an empty array removes every column.
type UpdateBoardRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,max=255" example:"Sprint 12 (extended)"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=2000"`
	Columns     *[]domain.Column `json:"columns,omitempty"`
	Order       *int             `json:"order,omitempty" binding:"omitempty,min=0" example:"0"`
}

// ShareRequest grants a user access to a board, a column or a card
// @Description entityId is the column or card id; it is ignored for level "board"
type ShareRequest struct {
	Level      domain.ShareLevel      `json:"level" binding:"required,oneof=board column card" example:"card"`
	EntityID   uuid.UUID              `json:"entityId" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	UserID     uuid.UUID              `json:"userId" binding:"required" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Permission domain.SharePermission `json:"permission" binding:"required,oneof=read write" example:"read"`
}

// UnshareRequest revokes a user's entry on a board, a column or a card
type UnshareRequest struct {
	Level    domain.ShareLevel `json:"level" binding:"required,oneof=board column card" example:"column"`
	EntityID uuid.UUID         `json:"entityId"`
	UserID   uuid.UUID         `json:"userId" binding:"required"`
}

// Ref returns the addressed entity on boardID
func (r ShareRequest) Ref(boardID uuid.UUID) domain.EntityRef {
	return entityRef(r.Level, boardID, r.EntityID)
}

// Ref returns the addressed entity on boardID
func (r UnshareRequest) Ref(boardID uuid.UUID) domain.EntityRef {
	return entityRef(r.Level, boardID, r.EntityID)
}

func entityRef(level domain.ShareLevel, boardID, entityID uuid.UUID) domain.EntityRef {
	if level == domain.LevelBoard || entityID == uuid.Nil {
		entityID = boardID
	}
	return domain.EntityRef{Level: level, BoardID: boardID, ID: entityID}
}

// BoardResponse represents a board with its full column tree
// @Description columns and sharedWith are always arrays, never null
type BoardResponse struct {
	ID          uuid.UUID           `json:"id" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	UserID      uuid.UUID           `json:"userId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Title       string              `json:"title" example:"Sprint 12"`
	Description string              `json:"description"`
	Columns     []domain.Column     `json:"columns"`
	SharedWith  []domain.SharedUser `json:"sharedWith"`
	Order       int                 `json:"order" example:"0"`
	CreatedAt   time.Time           `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time           `json:"updatedAt" example:"2024-01-15T14:20:00Z"`
}

// NewBoardResponse builds the response for board
func NewBoardResponse(board *domain.Board) BoardResponse {
	b := board.Clone()
	b.Normalize()
	shares := []domain.SharedUser(b.SharedWith)
	if shares == nil {
		shares = []domain.SharedUser{}
	}
	return BoardResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		Title:       b.Title,
		Description: b.Description,
		Columns:     b.Columns,
		SharedWith:  shares,
		Order:       b.Order,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// NewBoardResponses builds responses for boards
func NewBoardResponses(boards []*domain.Board) []BoardResponse {
	out := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, NewBoardResponse(b))
	}
	return out
}

// ToDomain converts the response back into a board value
func (r BoardResponse) ToDomain() domain.Board {
	board := domain.Board{
		BaseModel:   domain.BaseModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Columns:     r.Columns,
		SharedWith:  r.SharedWith,
		Order:       r.Order,
	}
	board.Normalize()
	return board
}
