package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/lock"
	"collab-board/internal/metrics"
	"collab-board/internal/permission"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/response"
)

// ShareService manages the sharing lists of boards, columns and cards
type ShareService interface {
	Share(ctx context.Context, boardID uuid.UUID, req *dto.ShareRequest) (*dto.BoardResponse, error)
	Unshare(ctx context.Context, boardID uuid.UUID, req *dto.UnshareRequest) (*dto.BoardResponse, error)
}

type shareServiceImpl struct {
	boardRepo repository.BoardRepository
	locker    lock.Locker
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewShareService creates a new instance of ShareService
func NewShareService(
	boardRepo repository.BoardRepository,
	locker lock.Locker,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) ShareService {
	return &shareServiceImpl{
		boardRepo: boardRepo,
		locker:    locker,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Share grants req.UserID req.Permission on the addressed entity. Sharing
// again overwrites the permission.
func (s *shareServiceImpl) Share(ctx context.Context, boardID uuid.UUID, req *dto.ShareRequest) (*dto.BoardResponse, error) {
	if !req.Permission.Valid() {
		return nil, response.NewValidationError("Invalid permission", string(req.Permission))
	}
	return s.change(ctx, req.Ref(boardID), req.UserID, "share", func(owner uuid.UUID, list []domain.SharedUser) ([]domain.SharedUser, error) {
		if req.UserID == owner {
			return nil, response.NewValidationError("Cannot share an entity with its owner", req.UserID.String())
		}
		return domain.WithShare(list, req.UserID, req.Permission), nil
	})
}

// Unshare removes req.UserID from the addressed entity. Removing an absent
// user succeeds without changing anything.
func (s *shareServiceImpl) Unshare(ctx context.Context, boardID uuid.UUID, req *dto.UnshareRequest) (*dto.BoardResponse, error) {
	return s.change(ctx, req.Ref(boardID), req.UserID, "unshare", func(_ uuid.UUID, list []domain.SharedUser) ([]domain.SharedUser, error) {
		return domain.WithoutShare(list, req.UserID), nil
	})
}

type shareEdit func(owner uuid.UUID, list []domain.SharedUser) ([]domain.SharedUser, error)

func (s *shareServiceImpl) change(ctx context.Context, ref domain.EntityRef, target uuid.UUID, action string, edit shareEdit) (*dto.BoardResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !ref.Level.Valid() {
		return nil, response.NewValidationError("Invalid level", string(ref.Level))
	}
	if target == uuid.Nil {
		return nil, response.NewValidationError("userId is required", "")
	}

	var updated *domain.Board
	err = withBoardLock(ctx, s.locker, ref.BoardID, func() error {
		board, err := loadBoard(ctx, s.boardRepo, ref.BoardID)
		if err != nil {
			return err
		}
		if !permission.CanRead(*board, actor) {
			return response.NewForbiddenError("You do not have access to this board", "")
		}
		if err := editShares(board, ref, actor, edit); err != nil {
			return err
		}
		if err := saveBoard(ctx, s.boardRepo, board); err != nil {
			return err
		}
		updated = board
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordShareChange(string(ref.Level), action)
	s.logger.Info("Sharing changed",
		zap.String("board_id", ref.BoardID.String()),
		zap.String("level", string(ref.Level)),
		zap.String("entity_id", ref.ID.String()),
		zap.String("target_user_id", target.String()),
		zap.String("action", action))
	publish(ctx, s.publisher, s.logger, domain.EventBoardShared, updated, actor)

	resp := dto.NewBoardResponse(updated)
	return &resp, nil
}

// editShares locates the entity, checks the actor owns it and rewrites its
// sharing list in place.
func editShares(board *domain.Board, ref domain.EntityRef, actor uuid.UUID, edit shareEdit) error {
	switch ref.Level {
	case domain.LevelBoard:
		if !permission.CanManageShares(*board, actor) {
			return response.NewForbiddenError("Only the board owner can manage its sharing", "")
		}
		next, err := edit(board.UserID, board.SharedWith)
		if err != nil {
			return err
		}
		board.SharedWith = next

	case domain.LevelColumn:
		i, ok := board.ColumnIndex(ref.ID)
		if !ok {
			return response.NewNotFoundError("Column not found", ref.ID.String())
		}
		col := &board.Columns[i]
		if !permission.CanManageShares(*col, actor) {
			return response.NewForbiddenError("Only the column owner can manage its sharing", "")
		}
		next, err := edit(col.UserID, col.SharedWith)
		if err != nil {
			return err
		}
		col.SharedWith = next

	case domain.LevelCard:
		i, j, ok := domain.LocateCard(board.Columns, ref.ID)
		if !ok {
			return response.NewNotFoundError("Card not found", ref.ID.String())
		}
		card := &board.Columns[i].Cards[j]
		if !permission.CanManageShares(*card, actor) {
			return response.NewForbiddenError("Only the card owner can manage its sharing", "")
		}
		next, err := edit(card.UserID, card.SharedWith)
		if err != nil {
			return err
		}
		card.SharedWith = next
	}
	return nil
}
