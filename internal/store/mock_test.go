package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// MockRemote is a mock implementation of Remote. Unset funcs succeed with
// zero values; every call is recorded.
type MockRemote struct {
	FetchBoardFunc         func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FetchBoardsForUserFunc func(ctx context.Context) ([]domain.Board, error)
	CreateBoardFunc        func(ctx context.Context, title, description string) (*domain.Board, error)
	UpdateBoardFunc        func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error)
	DeleteBoardFunc        func(ctx context.Context, id uuid.UUID) error
	ShareEntityFunc        func(ctx context.Context, ref domain.EntityRef, userID uuid.UUID, perm domain.SharePermission) (*domain.Board, error)
	UnshareEntityFunc      func(ctx context.Context, ref domain.EntityRef, userID uuid.UUID) (*domain.Board, error)
	ListLabelsFunc         func(ctx context.Context) ([]domain.Label, error)
	CreateLabelFunc        func(ctx context.Context, name, color string) (*domain.Label, error)
	UpdateLabelFunc        func(ctx context.Context, id uuid.UUID, name, color string) (*domain.Label, error)
	DeleteLabelFunc        func(ctx context.Context, id uuid.UUID) error
	ListUsersFunc          func(ctx context.Context) ([]domain.User, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockRemote) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the remote operations invoked so far.
func (m *MockRemote) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

// CallCount returns how many times name was invoked.
func (m *MockRemote) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockRemote) FetchBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	m.record("FetchBoard")
	if m.FetchBoardFunc != nil {
		return m.FetchBoardFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockRemote) FetchBoardsForUser(ctx context.Context) ([]domain.Board, error) {
	m.record("FetchBoardsForUser")
	if m.FetchBoardsForUserFunc != nil {
		return m.FetchBoardsForUserFunc(ctx)
	}
	return nil, nil
}

func (m *MockRemote) CreateBoard(ctx context.Context, title, description string) (*domain.Board, error) {
	m.record("CreateBoard")
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(ctx, title, description)
	}
	return &domain.Board{BaseModel: domain.BaseModel{ID: uuid.New()}, Title: title, Description: description}, nil
}

func (m *MockRemote) UpdateBoard(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
	m.record("UpdateBoard")
	if m.UpdateBoardFunc != nil {
		return m.UpdateBoardFunc(ctx, id, patch)
	}
	return nil, nil
}

func (m *MockRemote) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	m.record("DeleteBoard")
	if m.DeleteBoardFunc != nil {
		return m.DeleteBoardFunc(ctx, id)
	}
	return nil
}

func (m *MockRemote) ShareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID, perm domain.SharePermission) (*domain.Board, error) {
	m.record("ShareEntity")
	if m.ShareEntityFunc != nil {
		return m.ShareEntityFunc(ctx, ref, userID, perm)
	}
	return nil, domain.ErrRemoteFailure
}

func (m *MockRemote) UnshareEntity(ctx context.Context, ref domain.EntityRef, userID uuid.UUID) (*domain.Board, error) {
	m.record("UnshareEntity")
	if m.UnshareEntityFunc != nil {
		return m.UnshareEntityFunc(ctx, ref, userID)
	}
	return nil, domain.ErrRemoteFailure
}

func (m *MockRemote) ListLabels(ctx context.Context) ([]domain.Label, error) {
	m.record("ListLabels")
	if m.ListLabelsFunc != nil {
		return m.ListLabelsFunc(ctx)
	}
	return nil, nil
}

func (m *MockRemote) CreateLabel(ctx context.Context, name, color string) (*domain.Label, error) {
	m.record("CreateLabel")
	if m.CreateLabelFunc != nil {
		return m.CreateLabelFunc(ctx, name, color)
	}
	return &domain.Label{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: name, Color: color}, nil
}

func (m *MockRemote) UpdateLabel(ctx context.Context, id uuid.UUID, name, color string) (*domain.Label, error) {
	m.record("UpdateLabel")
	if m.UpdateLabelFunc != nil {
		return m.UpdateLabelFunc(ctx, id, name, color)
	}
	return &domain.Label{BaseModel: domain.BaseModel{ID: id}, Name: name, Color: color}, nil
}

func (m *MockRemote) DeleteLabel(ctx context.Context, id uuid.UUID) error {
	m.record("DeleteLabel")
	if m.DeleteLabelFunc != nil {
		return m.DeleteLabelFunc(ctx, id)
	}
	return nil
}

func (m *MockRemote) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.record("ListUsers")
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}
