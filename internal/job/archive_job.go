package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"collab-board/internal/client"
	"collab-board/internal/config"
	"collab-board/internal/metrics"
	"collab-board/internal/repository"
)

// ArchiveJob purges boards that stayed soft-deleted past the retention
// period. With an archive configured each board is snapshotted first.
type ArchiveJob struct {
	boardRepo repository.BoardRepository
	archive   client.ArchiveStore
	retention time.Duration
	batchSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewArchiveJob creates a new ArchiveJob instance
func NewArchiveJob(
	boardRepo repository.BoardRepository,
	archive client.ArchiveStore,
	cfg config.ArchiveConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ArchiveJob {
	return &ArchiveJob{
		boardRepo: boardRepo,
		archive:   archive,
		retention: cfg.Retention,
		batchSize: cfg.BatchSize,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one archive pass. It is the cron entry point.
func (j *ArchiveJob) Run() {
	if _, err := j.RunOnce(context.Background()); err != nil {
		j.logger.Error("Archive job failed", zap.Error(err))
	}
}

// RunOnce archives and purges one batch and returns how many boards were
// purged. A board whose snapshot upload fails stays in the database.
// A nil archive purges without snapshots.
func (j *ArchiveJob) RunOnce(ctx context.Context) (int, error) {
	now := j.now()
	cutoff := now.Add(-j.retention)

	j.logger.Info("Starting archive job for deleted boards",
		zap.Time("cutoff", cutoff),
	)

	boards, err := j.boardRepo.FindDeletedBefore(ctx, cutoff, j.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find deleted boards: %w", err)
	}

	if len(boards) == 0 {
		j.logger.Info("No deleted boards past retention")
		return 0, nil
	}

	var archivedIDs []uuid.UUID
	failCount := 0

	for _, board := range boards {
		if j.archive == nil {
			archivedIDs = append(archivedIDs, board.ID)
			continue
		}

		body, err := json.Marshal(board)
		if err != nil {
			j.logger.Error("Failed to encode board snapshot",
				zap.String("board_id", board.ID.String()),
				zap.Error(err),
			)
			failCount++
			continue
		}

		key := j.archive.SnapshotKey(board.ID, now)
		if err := j.archive.PutSnapshot(ctx, key, body); err != nil {
			j.logger.Error("Failed to archive board snapshot",
				zap.String("board_id", board.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
			failCount++
			continue
		}

		archivedIDs = append(archivedIDs, board.ID)
		j.logger.Debug("Archived board snapshot",
			zap.String("board_id", board.ID.String()),
			zap.String("key", key),
		)
	}

	if len(archivedIDs) > 0 {
		if err := j.boardRepo.Purge(ctx, archivedIDs); err != nil {
			return 0, fmt.Errorf("failed to purge %d archived boards: %w", len(archivedIDs), err)
		}
		j.metrics.AddBoardsArchived(len(archivedIDs))
	}

	j.logger.Info("Archive job completed",
		zap.Int("total_deleted", len(boards)),
		zap.Int("archived", len(archivedIDs)),
		zap.Int("failed", failCount),
	)
	return len(archivedIDs), nil
}

// Schedule registers job on a new cron scheduler. The caller starts and
// stops it.
func Schedule(spec string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("invalid archive schedule %q: %w", spec, err)
	}
	logger.Info("Archive job scheduled", zap.String("schedule", spec))
	return c, nil
}
