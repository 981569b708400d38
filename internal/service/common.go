package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collab-board/internal/domain"
	"collab-board/internal/lock"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/response"
)

// actorFromContext extracts user_id set by the auth middleware
func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, response.NewAppError(response.ErrCodeUnauthorized, "User ID not found in context", "")
	}
	return userID, nil
}

func boardLockKey(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}

// withBoardLock runs fn while holding the board's write lock
func withBoardLock(ctx context.Context, locker lock.Locker, boardID uuid.UUID, fn func() error) error {
	release, err := locker.Lock(ctx, boardLockKey(boardID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return response.NewAppError(response.ErrCodeConflict, "Board is being modified, retry", boardID.String())
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to lock board", err.Error())
	}
	defer release()
	return fn()
}

func loadBoard(ctx context.Context, repo repository.BoardRepository, boardID uuid.UUID) (*domain.Board, error) {
	board, err := repo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Board not found", boardID.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch board", err.Error())
	}
	board.Normalize()
	return board, nil
}

func saveBoard(ctx context.Context, repo repository.BoardRepository, board *domain.Board) error {
	board.Normalize()
	if err := repo.Update(ctx, board); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to update board", err.Error())
	}
	return nil
}

// publish announces a change. Failures are logged; the write already committed.
func publish(ctx context.Context, pub realtime.Publisher, logger *zap.Logger, typ domain.EventType, board *domain.Board, actor uuid.UUID) {
	if pub == nil {
		return
	}
	ev := domain.BoardEvent{
		Type:       typ,
		BoardID:    board.ID,
		ActorID:    actor,
		Version:    board.UpdatedAt.UnixNano(),
		OccurredAt: time.Now().UTC(),
	}
	if err := pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logger.Warn("Failed to publish board event",
			zap.String("board_id", board.ID.String()),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}
