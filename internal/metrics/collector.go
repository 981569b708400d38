package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector collects business metrics periodically
type BusinessMetricsCollector struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
	ticker  *time.Ticker
	done    chan bool
}

// NewBusinessMetricsCollector creates a new collector polling every interval.
// A non-positive interval falls back to one minute.
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessMetricsCollector{
		db:      db,
		metrics: metrics,
		logger:  logger,
		ticker:  time.NewTicker(interval),
		done:    make(chan bool),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		c.collect()

		for {
			select {
			case <-c.ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessMetricsCollector) Stop() {
	c.ticker.Stop()
	c.done <- true
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// soft-deleted rows are excluded
	var boardCount int64
	if err := c.db.WithContext(ctx).Table("boards").Where("deleted_at IS NULL").Count(&boardCount).Error; err != nil {
		c.logger.Error("Failed to count boards", zap.Error(err))
	} else {
		c.metrics.SetBoardsTotal(boardCount)
	}

	var labelCount int64
	if err := c.db.WithContext(ctx).Table("board_labels").Where("deleted_at IS NULL").Count(&labelCount).Error; err != nil {
		c.logger.Error("Failed to count labels", zap.Error(err))
	} else {
		c.metrics.SetLabelsTotal(labelCount)
	}
}
