package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collab-board/internal/domain"
)

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	FindOwned(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	Update(ctx context.Context, board *domain.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Board, error)
	Purge(ctx context.Context, ids []uuid.UUID) error
}

// boardRepositoryImpl is the GORM implementation of BoardRepository
type boardRepositoryImpl struct {
	db *gorm.DB
}

// NewBoardRepository creates a new instance of BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepositoryImpl{db: db}
}

var orderColumn = clause.OrderByColumn{Column: clause.Column{Name: "order"}}

// Create creates a new board
func (r *boardRepositoryImpl) Create(ctx context.Context, board *domain.Board) error {
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a board by ID. Returns gorm.ErrRecordNotFound when absent
// or soft-deleted.
func (r *boardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// FindAccessible returns the boards owned by userID in the owner's order,
// followed by the boards carrying a board-level share for userID.
func (r *boardRepositoryImpl) FindAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	owned, err := r.FindOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	var shared []*domain.Board
	if err := r.db.WithContext(ctx).
		Where("user_id <> ?", userID).
		Where(sharedWithContains(r.db, userID)).
		Order("created_at ASC").
		Find(&shared).Error; err != nil {
		return nil, err
	}
	return append(owned, shared...), nil
}

// FindOwned returns the boards owned by userID sorted by their order.
func (r *boardRepositoryImpl) FindOwned(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	var boards []*domain.Board
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderColumn).
		Order("created_at ASC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Update saves every column of the board
func (r *boardRepositoryImpl) Update(ctx context.Context, board *domain.Board) error {
	if err := r.db.WithContext(ctx).Save(board).Error; err != nil {
		return err
	}
	return nil
}

// Delete soft deletes a board
func (r *boardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Board{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindDeletedBefore returns up to limit soft-deleted boards deleted before cutoff
func (r *boardRepositoryImpl) FindDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Board, error) {
	var boards []*domain.Board
	q := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Purge permanently removes boards
func (r *boardRepositoryImpl) Purge(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&domain.Board{}).Error; err != nil {
		return err
	}
	return nil
}

// sharedWithContains matches boards whose shared_with array holds userID.
// JSON containment is dialect specific.
func sharedWithContains(db *gorm.DB, userID uuid.UUID) clause.Expr {
	if db.Dialector.Name() == "postgres" {
		return gorm.Expr("shared_with @> ?::jsonb", `[{"userId":"`+userID.String()+`"}]`)
	}
	return gorm.Expr("EXISTS (SELECT 1 FROM json_each(boards.shared_with) WHERE json_extract(json_each.value, '$.userId') = ?)", userID.String())
}
