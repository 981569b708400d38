package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"collab-board/internal/domain"
)

// Watch applies change events from other actors until ctx is done or events
// is closed. The open board is re-fetched when someone else changed it and no
// local structural write on it is in flight; a deleted board is dropped.
func (s *Store) Watch(ctx context.Context, events <-chan domain.BoardEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.applyEvent(ctx, ev)
		}
	}
}

func (s *Store) applyEvent(ctx context.Context, ev domain.BoardEvent) {
	if ev.ActorID == s.actor {
		return
	}

	s.mu.Lock()
	if ev.Type == domain.EventBoardDeleted {
		s.dropBoardLocked(ev.BoardID)
		s.version++
		s.mu.Unlock()
		return
	}
	open := s.current != nil && s.current.ID == ev.BoardID
	busy := s.inflight[ev.BoardID] > 0
	s.mu.Unlock()

	if !open || busy {
		return
	}

	fresh, err := s.remote.FetchBoard(ctx, ev.BoardID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAccessDenied) {
			s.dropBoardLocked(ev.BoardID)
			s.version++
			return
		}
		s.logger.Warn("Failed to refresh board after remote change",
			zap.String("board_id", ev.BoardID.String()),
			zap.Error(err))
		return
	}
	if s.current == nil || s.current.ID != ev.BoardID || s.inflight[ev.BoardID] > 0 {
		return
	}
	fresh.Normalize()
	s.current = fresh
	s.upsertBoardLocked(*fresh)
	s.version++
}
