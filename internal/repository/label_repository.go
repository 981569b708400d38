package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collab-board/internal/domain"
)

// LabelRepository defines the interface for label data access
type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Label, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Label, error)
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type labelRepositoryImpl struct {
	db *gorm.DB
}

// NewLabelRepository creates a new instance of LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepositoryImpl{db: db}
}

func (r *labelRepositoryImpl) Create(ctx context.Context, label *domain.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *labelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Label, error) {
	var label domain.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByUser returns the labels of userID in creation order
func (r *labelRepositoryImpl) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Label, error) {
	var labels []*domain.Label
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *labelRepositoryImpl) Update(ctx context.Context, label *domain.Label) error {
	return r.db.WithContext(ctx).Save(label).Error
}

// Delete soft deletes a label
func (r *labelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Label{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
