package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/metrics"
)

// Publisher announces board changes
type Publisher interface {
	Publish(ctx context.Context, ev domain.BoardEvent) error
}

// LocalBroker dispatches straight to the hub of this process
type LocalBroker struct {
	hub     *Hub
	metrics *metrics.Metrics
}

// NewLocalBroker creates a LocalBroker
func NewLocalBroker(hub *Hub, m *metrics.Metrics) *LocalBroker {
	return &LocalBroker{hub: hub, metrics: m}
}

// Publish dispatches ev locally
func (b *LocalBroker) Publish(_ context.Context, ev domain.BoardEvent) error {
	b.hub.Dispatch(ev)
	b.metrics.RecordEventPublished(string(ev.Type))
	return nil
}

// RedisBroker publishes events on a Redis channel and feeds the events of
// every replica into the local hub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRedisBroker creates a RedisBroker on channel
func NewRedisBroker(client *redis.Client, channel string, hub *Hub, m *metrics.Metrics, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{
		client:  client,
		channel: channel,
		hub:     hub,
		metrics: m,
		logger:  logger,
	}
}

// Publish sends ev to every replica, this one included.
func (b *RedisBroker) Publish(ctx context.Context, ev domain.BoardEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	b.metrics.RecordEventPublished(string(ev.Type))
	return nil
}

// Run forwards channel messages to the hub until ctx is done. ready, if not
// nil, is closed once the subscription is confirmed.
func (b *RedisBroker) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	b.logger.Info("Subscribed to board events", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.BoardEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("Discarding malformed board event", zap.Error(err))
				continue
			}
			b.hub.Dispatch(ev)
		}
	}
}
