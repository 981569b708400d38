package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/lock"
	"collab-board/internal/metrics"
	"collab-board/internal/permission"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/response"
)

// BoardService defines the interface for board business logic
type BoardService interface {
	ListBoards(ctx context.Context) ([]dto.BoardResponse, error)
	CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	GetBoard(ctx context.Context, boardID uuid.UUID) (*dto.BoardResponse, error)
	UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error)
	DeleteBoard(ctx context.Context, boardID uuid.UUID) error
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	boardRepo repository.BoardRepository
	locker    lock.Locker
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(
	boardRepo repository.BoardRepository,
	locker lock.Locker,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) BoardService {
	return &boardServiceImpl{
		boardRepo: boardRepo,
		locker:    locker,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ListBoards returns the caller's boards in their order, then the boards
// shared with the caller.
func (s *boardServiceImpl) ListBoards(ctx context.Context) ([]dto.BoardResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	boards, err := s.boardRepo.FindAccessible(ctx, actor)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch boards", err.Error())
	}
	return dto.NewBoardResponses(boards), nil
}

// CreateBoard creates an empty board at the end of the caller's list
func (s *boardServiceImpl) CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	title, err := domain.NormalizeTitle("title", req.Title)
	if err != nil {
		return nil, response.FromDomain(err, "Invalid board")
	}

	owned, err := s.boardRepo.FindOwned(ctx, actor)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch boards", err.Error())
	}

	board := &domain.Board{
		UserID:      actor,
		Title:       title,
		Description: req.Description,
		Columns:     []domain.Column{},
		SharedWith:  []domain.SharedUser{},
		Order:       len(owned),
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create board", err.Error())
	}

	s.metrics.IncrementBoardCreated()
	s.logger.Info("Board created",
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actor.String()))

	resp := dto.NewBoardResponse(board)
	return &resp, nil
}

// GetBoard returns the full tree to anyone with board read
func (s *boardServiceImpl) GetBoard(ctx context.Context, boardID uuid.UUID) (*dto.BoardResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	board, err := loadBoard(ctx, s.boardRepo, boardID)
	if err != nil {
		return nil, err
	}
	if !permission.CanRead(*board, actor) {
		return nil, response.NewForbiddenError("You do not have access to this board", "")
	}

	resp := dto.NewBoardResponse(board)
	return &resp, nil
}

// UpdateBoard applies a partial update under the board lock. A columns
// array replaces the tree after validation and the replace guard.
func (s *boardServiceImpl) UpdateBoard(ctx context.Context, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var updated *domain.Board
	err = withBoardLock(ctx, s.locker, boardID, func() error {
		board, err := loadBoard(ctx, s.boardRepo, boardID)
		if err != nil {
			return err
		}
		access := permission.Resolve(*board, actor)
		if !access.Read {
			return response.NewForbiddenError("You do not have access to this board", "")
		}

		if req.Title != nil || req.Description != nil {
			if !access.Write {
				return response.NewForbiddenError("You cannot edit this board", "")
			}
			if req.Title != nil {
				title, err := domain.NormalizeTitle("title", *req.Title)
				if err != nil {
					return response.FromDomain(err, "Invalid board")
				}
				board.Title = title
			}
			if req.Description != nil {
				board.Description = *req.Description
			}
		}

		if req.Order != nil && *req.Order != board.Order {
			if board.UserID != actor {
				return response.NewForbiddenError("Only the owner can reorder this board", "")
			}
			board.Order = *req.Order
		}

		if req.Columns != nil {
			next, err := s.prepareColumns(actor, board, *req.Columns)
			if err != nil {
				return err
			}
			board.Columns = next
		}

		if err := saveBoard(ctx, s.boardRepo, board); err != nil {
			return err
		}
		if req.Columns != nil {
			s.metrics.RecordStructuralUpdate("applied")
		}
		updated = board
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, domain.EventBoardUpdated, updated, actor)
	resp := dto.NewBoardResponse(updated)
	return &resp, nil
}

// prepareColumns normalizes, validates and guards a columns replacement
func (s *boardServiceImpl) prepareColumns(actor uuid.UUID, board *domain.Board, columns []domain.Column) ([]domain.Column, error) {
	candidate := board.Clone()
	candidate.Columns = domain.CloneColumns(columns)
	s.stampNewChildren(actor, board.Columns, candidate.Columns)
	candidate.Normalize()

	if err := domain.ValidateColumns(candidate.Columns); err != nil {
		s.metrics.RecordStructuralUpdate("invalid")
		return nil, response.FromDomain(err, "Invalid columns")
	}
	if err := permission.CheckColumnsReplace(actor, *board, candidate.Columns); err != nil {
		s.metrics.RecordStructuralUpdate("denied")
		s.logger.Info("Columns replace denied",
			zap.String("board_id", board.ID.String()),
			zap.String("user_id", actor.String()),
			zap.Error(err))
		return nil, response.FromDomain(err, "Columns replace denied")
	}
	return candidate.Columns, nil
}

// stampNewChildren fills owner and timestamps of columns and cards the
// board did not have yet.
func (s *boardServiceImpl) stampNewChildren(actor uuid.UUID, prev, next []domain.Column) {
	now := s.now().UTC()
	known := make(map[uuid.UUID]struct{})
	for _, col := range prev {
		known[col.ID] = struct{}{}
		for _, card := range col.Cards {
			known[card.ID] = struct{}{}
		}
	}
	for i := range next {
		col := &next[i]
		if _, ok := known[col.ID]; !ok {
			stamp(&col.UserID, &col.CreatedAt, &col.UpdatedAt, actor, now)
		}
		for j := range col.Cards {
			card := &col.Cards[j]
			if _, ok := known[card.ID]; !ok {
				stamp(&card.UserID, &card.CreatedAt, &card.UpdatedAt, actor, now)
			}
		}
	}
}

func stamp(owner *uuid.UUID, created, updated *time.Time, actor uuid.UUID, now time.Time) {
	if *owner == uuid.Nil {
		*owner = actor
	}
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// DeleteBoard soft deletes a board. Only the owner may delete it.
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	var deleted *domain.Board
	err = withBoardLock(ctx, s.locker, boardID, func() error {
		board, err := loadBoard(ctx, s.boardRepo, boardID)
		if err != nil {
			return err
		}
		if board.UserID != actor {
			return response.NewForbiddenError("Only the owner can delete this board", "")
		}
		if err := s.boardRepo.Delete(ctx, boardID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFoundError("Board not found", boardID.String())
			}
			return response.NewAppError(response.ErrCodeInternal, "Failed to delete board", err.Error())
		}
		deleted = board
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Board deleted",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", actor.String()))
	publish(ctx, s.publisher, s.logger, domain.EventBoardDeleted, deleted, actor)
	return nil
}
