package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/lock"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/response"
)

// LabelService manages the caller's labels
type LabelService interface {
	ListLabels(ctx context.Context) ([]dto.LabelResponse, error)
	CreateLabel(ctx context.Context, req *dto.CreateLabelRequest) (*dto.LabelResponse, error)
	UpdateLabel(ctx context.Context, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error)
	DeleteLabel(ctx context.Context, labelID uuid.UUID) error
}

type labelServiceImpl struct {
	labelRepo repository.LabelRepository
	boardRepo repository.BoardRepository
	locker    lock.Locker
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewLabelService creates a new instance of LabelService
func NewLabelService(
	labelRepo repository.LabelRepository,
	boardRepo repository.BoardRepository,
	locker lock.Locker,
	publisher realtime.Publisher,
	logger *zap.Logger,
) LabelService {
	return &labelServiceImpl{
		labelRepo: labelRepo,
		boardRepo: boardRepo,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *labelServiceImpl) ListLabels(ctx context.Context) ([]dto.LabelResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.labelRepo.FindByUser(ctx, actor)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch labels", err.Error())
	}
	return dto.NewLabelResponses(labels), nil
}

func (s *labelServiceImpl) CreateLabel(ctx context.Context, req *dto.CreateLabelRequest) (*dto.LabelResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	name, err := validateLabel(req.Name, req.Color)
	if err != nil {
		return nil, err
	}

	label := &domain.Label{UserID: actor, Name: name, Color: req.Color}
	if err := s.labelRepo.Create(ctx, label); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create label", err.Error())
	}
	resp := dto.NewLabelResponse(label)
	return &resp, nil
}

func (s *labelServiceImpl) UpdateLabel(ctx context.Context, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	name, err := validateLabel(req.Name, req.Color)
	if err != nil {
		return nil, err
	}

	label, err := s.ownedLabel(ctx, labelID, actor)
	if err != nil {
		return nil, err
	}
	label.Name = name
	label.Color = req.Color
	if err := s.labelRepo.Update(ctx, label); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update label", err.Error())
	}
	resp := dto.NewLabelResponse(label)
	return &resp, nil
}

// DeleteLabel removes the label and strips its id from every card on the
// boards the caller can reach.
func (s *labelServiceImpl) DeleteLabel(ctx context.Context, labelID uuid.UUID) error {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedLabel(ctx, labelID, actor); err != nil {
		return err
	}
	if err := s.labelRepo.Delete(ctx, labelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFoundError("Label not found", labelID.String())
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete label", err.Error())
	}

	boards, err := s.boardRepo.FindAccessible(ctx, actor)
	if err != nil {
		s.logger.Warn("Label deleted but boards could not be listed for cleanup",
			zap.String("label_id", labelID.String()),
			zap.Error(err))
		return nil
	}
	for _, b := range boards {
		if !boardUsesLabel(b, labelID) {
			continue
		}
		if err := s.stripFromBoard(ctx, b.ID, labelID, actor); err != nil {
			s.logger.Warn("Failed to strip deleted label from board",
				zap.String("label_id", labelID.String()),
				zap.String("board_id", b.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (s *labelServiceImpl) stripFromBoard(ctx context.Context, boardID, labelID, actor uuid.UUID) error {
	var updated *domain.Board
	err := withBoardLock(ctx, s.locker, boardID, func() error {
		board, err := loadBoard(ctx, s.boardRepo, boardID)
		if err != nil {
			return err
		}
		if !boardUsesLabel(board, labelID) {
			return nil
		}
		board.Columns = domain.StripLabel(board.Columns, labelID)
		if err := saveBoard(ctx, s.boardRepo, board); err != nil {
			return err
		}
		updated = board
		return nil
	})
	if err != nil || updated == nil {
		return err
	}
	publish(ctx, s.publisher, s.logger, domain.EventBoardUpdated, updated, actor)
	return nil
}

func (s *labelServiceImpl) ownedLabel(ctx context.Context, labelID, actor uuid.UUID) (*domain.Label, error) {
	label, err := s.labelRepo.FindByID(ctx, labelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Label not found", labelID.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch label", err.Error())
	}
	if label.UserID != actor {
		return nil, response.NewForbiddenError("You do not own this label", "")
	}
	return label, nil
}

func validateLabel(name, color string) (string, error) {
	name, err := domain.NormalizeTitle("name", name)
	if err != nil {
		return "", response.FromDomain(err, "Invalid label")
	}
	if err := domain.ValidateColor("color", color); err != nil {
		return "", response.FromDomain(err, "Invalid label")
	}
	return name, nil
}

func boardUsesLabel(board *domain.Board, labelID uuid.UUID) bool {
	for _, col := range board.Columns {
		for _, card := range col.Cards {
			if card.HasLabel(labelID) {
				return true
			}
		}
	}
	return false
}
