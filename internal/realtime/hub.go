// Package realtime fans board change events out to websocket subscribers.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/metrics"
)

const subscriptionBuffer = 32

// Hub keeps the subscribers of every board served by this process
type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*Subscription]struct{}
	total   int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Subscription receives the events of one board. C is closed when the
// subscription is closed or dropped for falling behind.
type Subscription struct {
	BoardID uuid.UUID
	UserID  uuid.UUID
	C       chan domain.BoardEvent

	hub    *Hub
	closed bool
}

// NewHub creates an empty hub
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		subs:    make(map[uuid.UUID]map[*Subscription]struct{}),
		metrics: m,
		logger:  logger,
	}
}

// Subscribe registers userID for the events of boardID
func (h *Hub) Subscribe(boardID, userID uuid.UUID) *Subscription {
	sub := &Subscription{
		BoardID: boardID,
		UserID:  userID,
		C:       make(chan domain.BoardEvent, subscriptionBuffer),
		hub:     h,
	}

	h.mu.Lock()
	if h.subs[boardID] == nil {
		h.subs[boardID] = make(map[*Subscription]struct{})
	}
	h.subs[boardID][sub] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()

	h.metrics.SetRealtimeConnections(total)
	h.logger.Debug("Subscriber registered",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()))
	return sub
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if !h.removeLocked(sub) {
		h.mu.Unlock()
		return
	}
	total := h.total
	h.mu.Unlock()
	h.metrics.SetRealtimeConnections(total)
}

func (h *Hub) removeLocked(sub *Subscription) bool {
	if sub.closed {
		return false
	}
	sub.closed = true
	close(sub.C)
	if set, ok := h.subs[sub.BoardID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.BoardID)
		}
	}
	h.total--
	return true
}

// Dispatch delivers ev to every subscriber of its board. A subscriber whose
// buffer is full is dropped; its client reconnects and refetches.
func (h *Hub) Dispatch(ev domain.BoardEvent) {
	h.mu.Lock()
	var dropped int
	for sub := range h.subs[ev.BoardID] {
		select {
		case sub.C <- ev:
		default:
			h.removeLocked(sub)
			dropped++
		}
	}
	if ev.Type == domain.EventBoardDeleted {
		for sub := range h.subs[ev.BoardID] {
			h.removeLocked(sub)
		}
	}
	total := h.total
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.Warn("Dropped slow subscribers",
			zap.String("board_id", ev.BoardID.String()),
			zap.Int("count", dropped))
	}
	h.metrics.SetRealtimeConnections(total)
}

// Subscribers returns the number of subscribers of boardID
func (h *Hub) Subscribers(boardID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[boardID])
}
