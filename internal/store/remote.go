package store

import (
	"context"

	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// BoardPatch carries the fields of a board update. Nil fields are left
// untouched; a non-nil Columns replaces the whole structure.
type BoardPatch struct {
	Title       *string
	Description *string
	Columns     []domain.Column
	Order       *int
}

// Remote is the persistence collaborator the store syncs with. Failures are
// reported as domain.ErrNotFound, domain.ErrAccessDenied, domain.ErrValidation
// or domain.ErrRemoteFailure, possibly wrapped.
type Remote interface {
	FetchBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FetchBoardsForUser(ctx context.Context) ([]domain.Board, error)
	CreateBoard(ctx context.Context, title, description string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	ShareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID, perm domain.SharePermission) (*domain.Board, error)
	UnshareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID) (*domain.Board, error)

	ListLabels(ctx context.Context) ([]domain.Label, error)
	CreateLabel(ctx context.Context, name, color string) (*domain.Label, error)
	UpdateLabel(ctx context.Context, id uuid.UUID, name, color string) (*domain.Label, error)
	DeleteLabel(ctx context.Context, id uuid.UUID) error

	ListUsers(ctx context.Context) ([]domain.User, error)
}
