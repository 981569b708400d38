package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"collab-board/internal/dto"
)

// MockBoardService is a mock implementation of BoardService
type MockBoardService struct {
	ListBoardsFunc  func(ctx context.Context) ([]dto.BoardResponse, error)
	CreateBoardFunc func(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	GetBoardFunc    func(ctx context.Context, boardID uuid.UUID) (*dto.BoardResponse, error)
	UpdateBoardFunc func(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error)
	DeleteBoardFunc func(ctx context.Context, boardID uuid.UUID) error
}

func (m *MockBoardService) ListBoards(ctx context.Context) ([]dto.BoardResponse, error) {
	if m.ListBoardsFunc != nil {
		return m.ListBoardsFunc(ctx)
	}
	return []dto.BoardResponse{}, nil
}

func (m *MockBoardService) CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockBoardService) GetBoard(ctx context.Context, boardID uuid.UUID) (*dto.BoardResponse, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, boardID)
	}
	return &dto.BoardResponse{ID: boardID}, nil
}

func (m *MockBoardService) UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
	if m.UpdateBoardFunc != nil {
		return m.UpdateBoardFunc(ctx, boardID, req)
	}
	return nil, nil
}

func (m *MockBoardService) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	if m.DeleteBoardFunc != nil {
		return m.DeleteBoardFunc(ctx, boardID)
	}
	return nil
}

// MockShareService is a mock implementation of ShareService
type MockShareService struct {
	ShareFunc   func(ctx context.Context, boardID uuid.UUID, req *dto.ShareRequest) (*dto.BoardResponse, error)
	UnshareFunc func(ctx context.Context, boardID uuid.UUID, req *dto.UnshareRequest) (*dto.BoardResponse, error)
}

func (m *MockShareService) Share(ctx context.Context, boardID uuid.UUID, req *dto.ShareRequest) (*dto.BoardResponse, error) {
	if m.ShareFunc != nil {
		return m.ShareFunc(ctx, boardID, req)
	}
	return &dto.BoardResponse{ID: boardID}, nil
}

func (m *MockShareService) Unshare(ctx context.Context, boardID uuid.UUID, req *dto.UnshareRequest) (*dto.BoardResponse, error) {
	if m.UnshareFunc != nil {
		return m.UnshareFunc(ctx, boardID, req)
	}
	return &dto.BoardResponse{ID: boardID}, nil
}

// MockLabelService is a mock implementation of LabelService
type MockLabelService struct {
	ListLabelsFunc  func(ctx context.Context) ([]dto.LabelResponse, error)
	CreateLabelFunc func(ctx context.Context, req *dto.CreateLabelRequest) (*dto.LabelResponse, error)
	UpdateLabelFunc func(ctx context.Context, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error)
	DeleteLabelFunc func(ctx context.Context, labelID uuid.UUID) error
}

func (m *MockLabelService) ListLabels(ctx context.Context) ([]dto.LabelResponse, error) {
	if m.ListLabelsFunc != nil {
		return m.ListLabelsFunc(ctx)
	}
	return []dto.LabelResponse{}, nil
}

func (m *MockLabelService) CreateLabel(ctx context.Context, req *dto.CreateLabelRequest) (*dto.LabelResponse, error) {
	if m.CreateLabelFunc != nil {
		return m.CreateLabelFunc(ctx, req)
	}
	return &dto.LabelResponse{Name: req.Name, Color: req.Color}, nil
}

func (m *MockLabelService) UpdateLabel(ctx context.Context, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error) {
	if m.UpdateLabelFunc != nil {
		return m.UpdateLabelFunc(ctx, labelID, req)
	}
	return &dto.LabelResponse{ID: labelID, Name: req.Name, Color: req.Color}, nil
}

func (m *MockLabelService) DeleteLabel(ctx context.Context, labelID uuid.UUID) error {
	if m.DeleteLabelFunc != nil {
		return m.DeleteLabelFunc(ctx, labelID)
	}
	return nil
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	ListUsersFunc     func(ctx context.Context) ([]dto.UserResponse, error)
	UpsertProfileFunc func(ctx context.Context, req *dto.UpsertProfileRequest) (*dto.UserResponse, error)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []dto.UserResponse{}, nil
}

func (m *MockUserService) UpsertProfile(ctx context.Context, req *dto.UpsertProfileRequest) (*dto.UserResponse, error) {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, req)
	}
	return &dto.UserResponse{Name: req.Name, Email: req.Email}, nil
}

// setupTestRouter returns a router that authenticates every request as userID
func setupTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != uuid.Nil {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}
	return router
}
