package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collab-board/internal/domain"
)

// MockBoardRepository is a mock implementation of BoardRepository
type MockBoardRepository struct {
	CreateFunc            func(ctx context.Context, board *domain.Board) error
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindAccessibleFunc    func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	FindOwnedFunc         func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	UpdateFunc            func(ctx context.Context, board *domain.Board) error
	DeleteFunc            func(ctx context.Context, id uuid.UUID) error
	FindDeletedBeforeFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Board, error)
	PurgeFunc             func(ctx context.Context, ids []uuid.UUID) error
}

func (m *MockBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockBoardRepository) FindAccessible(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	if m.FindAccessibleFunc != nil {
		return m.FindAccessibleFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBoardRepository) FindOwned(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	if m.FindOwnedFunc != nil {
		return m.FindOwnedFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBoardRepository) FindDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Board, error) {
	if m.FindDeletedBeforeFunc != nil {
		return m.FindDeletedBeforeFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *MockBoardRepository) Purge(ctx context.Context, ids []uuid.UUID) error {
	if m.PurgeFunc != nil {
		return m.PurgeFunc(ctx, ids)
	}
	return nil
}

// MockLabelRepository is a mock implementation of LabelRepository
type MockLabelRepository struct {
	CreateFunc     func(ctx context.Context, label *domain.Label) error
	FindByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Label, error)
	FindByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Label, error)
	UpdateFunc     func(ctx context.Context, label *domain.Label) error
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *MockLabelRepository) Create(ctx context.Context, label *domain.Label) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, label)
	}
	return nil
}

func (m *MockLabelRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Label, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockLabelRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Label, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockLabelRepository) Update(ctx context.Context, label *domain.Label) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, label)
	}
	return nil
}

func (m *MockLabelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	UpsertFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindAllExceptFunc func(ctx context.Context, id uuid.UUID) ([]*domain.User, error)
	ExistsAllFunc     func(ctx context.Context, ids []uuid.UUID) (bool, error)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindAllExcept(ctx context.Context, id uuid.UUID) ([]*domain.User, error) {
	if m.FindAllExceptFunc != nil {
		return m.FindAllExceptFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) ExistsAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if m.ExistsAllFunc != nil {
		return m.ExistsAllFunc(ctx, ids)
	}
	return true, nil
}

// MockPublisher records published events
type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.BoardEvent
	Err    error
}

func (m *MockPublisher) Publish(_ context.Context, ev domain.BoardEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return m.Err
}

func (m *MockPublisher) published() []domain.BoardEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BoardEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// memoryBoards backs a MockBoardRepository with a map so read-modify-write
// flows can be observed end to end.
type memoryBoards struct {
	mu     sync.Mutex
	boards map[uuid.UUID]domain.Board
	saves  int
}

func newMemoryBoards(boards ...domain.Board) *memoryBoards {
	m := &memoryBoards{boards: make(map[uuid.UUID]domain.Board)}
	for _, b := range boards {
		m.boards[b.ID] = b.Clone()
	}
	return m
}

func (m *memoryBoards) repo() *MockBoardRepository {
	return &MockBoardRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			b, ok := m.boards[id]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			c := b.Clone()
			return &c, nil
		},
		FindAccessibleFunc: func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []*domain.Board
			for _, b := range m.boards {
				c := b.Clone()
				out = append(out, &c)
			}
			return out, nil
		},
		UpdateFunc: func(ctx context.Context, board *domain.Board) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			board.UpdatedAt = time.Now()
			m.boards[board.ID] = board.Clone()
			m.saves++
			return nil
		},
		DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.boards[id]; !ok {
				return gorm.ErrRecordNotFound
			}
			delete(m.boards, id)
			return nil
		},
	}
}

func (m *memoryBoards) get(id uuid.UUID) domain.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boards[id].Clone()
}

func (m *memoryBoards) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
