package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collab-board/internal/domain"
)

// UserRepository defines the interface for user profile data access
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindAllExcept(ctx context.Context, id uuid.UUID) ([]*domain.User, error)
	ExistsAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

// Upsert inserts the profile or overwrites name and email of an existing one
func (r *userRepositoryImpl) Upsert(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		}).
		Create(user).Error
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAllExcept returns every profile but id, sorted by name
func (r *userRepositoryImpl) FindAllExcept(ctx context.Context, id uuid.UUID) ([]*domain.User, error) {
	var users []*domain.User
	if err := r.db.WithContext(ctx).
		Where("id <> ?", id).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsAll reports whether a profile exists for every id
func (r *userRepositoryImpl) ExistsAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id IN ?", ids).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == int64(len(unique)), nil
}
