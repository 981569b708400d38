package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/permission"
	"collab-board/internal/reorder"
)

// DefaultColumnColor is used when a column is created without a color.
const DefaultColumnColor = "#64748b"

// errUnchanged tells mutate the operation has nothing to do.
var errUnchanged = errors.New("unchanged")

// ColumnUpdate lists the column fields to change. Nil fields stay as they are.
type ColumnUpdate struct {
	Title *string
	Color *string
}

// CardInput describes a new card.
type CardInput struct {
	Title       string
	Description string
	Labels      []uuid.UUID
	Priority    domain.Priority
	DueDate     *time.Time
	Icon        string
}

// CardUpdate lists the card fields to change. Nil fields stay as they are;
// ClearDueDate removes the due date.
type CardUpdate struct {
	Title        *string
	Description  *string
	Labels       []uuid.UUID
	Priority     *domain.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Icon         *string
}

// CreateColumn appends a column owned by the actor.
func (s *Store) CreateColumn(ctx context.Context, title, color string) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "create column", func(b domain.Board) ([]domain.Column, error) {
		title, err := domain.NormalizeTitle("title", title)
		if err != nil {
			return nil, err
		}
		if color == "" {
			color = DefaultColumnColor
		}
		now := time.Now().UTC()
		return append(b.Columns, domain.Column{
			ID:         uuid.New(),
			Title:      title,
			Color:      color,
			Cards:      []domain.Card{},
			UserID:     s.actor,
			SharedWith: []domain.SharedUser{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}), nil
	})
}

// UpdateColumn changes a column's title or color.
func (s *Store) UpdateColumn(ctx context.Context, columnID uuid.UUID, upd ColumnUpdate) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "update column", func(b domain.Board) ([]domain.Column, error) {
		i, ok := b.ColumnIndex(columnID)
		if !ok {
			return nil, fmt.Errorf("column %s: %w", columnID, domain.ErrNotFound)
		}
		col := &b.Columns[i]
		if upd.Title != nil {
			title, err := domain.NormalizeTitle("title", *upd.Title)
			if err != nil {
				return nil, err
			}
			col.Title = title
		}
		if upd.Color != nil {
			col.Color = *upd.Color
		}
		col.UpdatedAt = time.Now().UTC()
		return b.Columns, nil
	})
}

// DeleteColumn removes a column together with its cards.
func (s *Store) DeleteColumn(ctx context.Context, columnID uuid.UUID) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "delete column", func(b domain.Board) ([]domain.Column, error) {
		i, ok := b.ColumnIndex(columnID)
		if !ok {
			return nil, fmt.Errorf("column %s: %w", columnID, domain.ErrNotFound)
		}
		return append(b.Columns[:i:i], b.Columns[i+1:]...), nil
	})
}

// CreateCard appends a card owned by the actor to a column.
func (s *Store) CreateCard(ctx context.Context, columnID uuid.UUID, in CardInput) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "create card", func(b domain.Board) ([]domain.Column, error) {
		i, ok := b.ColumnIndex(columnID)
		if !ok {
			return nil, fmt.Errorf("column %s: %w", columnID, domain.ErrNotFound)
		}
		title, err := domain.NormalizeTitle("title", in.Title)
		if err != nil {
			return nil, err
		}
		priority, err := domain.NormalizePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		card := domain.Card{
			ID:          uuid.New(),
			ColumnID:    columnID,
			BoardID:     b.ID,
			Title:       title,
			Description: in.Description,
			Labels:      []uuid.UUID{},
			Priority:    priority,
			DueDate:     in.DueDate,
			Icon:        in.Icon,
			UserID:      s.actor,
			SharedWith:  []domain.SharedUser{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, id := range in.Labels {
			card.AddLabel(id)
		}
		b.Columns[i].Cards = append(b.Columns[i].Cards, card)
		return b.Columns, nil
	})
}

// UpdateCard changes a card's content in place.
func (s *Store) UpdateCard(ctx context.Context, cardID uuid.UUID, upd CardUpdate) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "update card", func(b domain.Board) ([]domain.Column, error) {
		ci, j, ok := domain.LocateCard(b.Columns, cardID)
		if !ok {
			return nil, fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
		}
		card := &b.Columns[ci].Cards[j]
		if upd.Title != nil {
			title, err := domain.NormalizeTitle("title", *upd.Title)
			if err != nil {
				return nil, err
			}
			card.Title = title
		}
		if upd.Description != nil {
			card.Description = *upd.Description
		}
		if upd.Labels != nil {
			card.Labels = []uuid.UUID{}
			for _, id := range upd.Labels {
				card.AddLabel(id)
			}
		}
		if upd.Priority != nil {
			priority, err := domain.NormalizePriority(*upd.Priority)
			if err != nil {
				return nil, err
			}
			card.Priority = priority
		}
		if upd.ClearDueDate {
			card.DueDate = nil
		} else if upd.DueDate != nil {
			due := *upd.DueDate
			card.DueDate = &due
		}
		if upd.Icon != nil {
			card.Icon = *upd.Icon
		}
		card.UpdatedAt = time.Now().UTC()
		return b.Columns, nil
	})
}

// DeleteCard removes a card.
func (s *Store) DeleteCard(ctx context.Context, cardID uuid.UUID) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "delete card", func(b domain.Board) ([]domain.Column, error) {
		ci, j, ok := domain.LocateCard(b.Columns, cardID)
		if !ok {
			return nil, fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
		}
		cards := b.Columns[ci].Cards
		b.Columns[ci].Cards = append(cards[:j:j], cards[j+1:]...)
		return b.Columns, nil
	})
}

// MoveCard moves a card between or within columns. See reorder.MoveCard for
// the meaning of destinationIndex. A card that is not in fromColumnID leaves
// everything untouched and yields a nil Pending.
func (s *Store) MoveCard(ctx context.Context, cardID, fromColumnID, toColumnID uuid.UUID, destinationIndex int) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "move card", func(b domain.Board) ([]domain.Column, error) {
		cols, ok := reorder.MoveCard(b.Columns, cardID, fromColumnID, toColumnID, destinationIndex)
		if !ok {
			return nil, errUnchanged
		}
		return cols, nil
	})
}

// MoveColumn moves a column to newIndex.
func (s *Store) MoveColumn(ctx context.Context, columnID uuid.UUID, newIndex int) (*Pending[domain.Board], error) {
	return s.mutate(ctx, "move column", func(b domain.Board) ([]domain.Column, error) {
		cols, ok := reorder.MoveColumn(b.Columns, columnID, newIndex)
		if !ok {
			return nil, fmt.Errorf("column %s: %w", columnID, domain.ErrNotFound)
		}
		return cols, nil
	})
}

// DragOver records the column highlighted while a card hovers over target.
func (s *Store) DragOver(over *reorder.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var highlight uuid.UUID
	if s.current != nil {
		highlight = reorder.HighlightColumn(s.current.Columns, over)
	}
	if highlight != s.dragOver {
		s.dragOver = highlight
		s.version++
	}
}

// DragOverColumn returns the highlighted column, or uuid.Nil.
func (s *Store) DragOverColumn() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragOver
}

// DropCard completes a card drag. It clears the highlight and returns a nil
// Pending when the drop does not move anything.
func (s *Store) DropCard(ctx context.Context, ev reorder.DragEnd) (*Pending[domain.Board], reorder.Outcome, error) {
	s.mu.Lock()
	s.dragOver = uuid.Nil
	s.version++
	if s.current == nil {
		s.mu.Unlock()
		return nil, reorder.Abandoned, nil
	}
	drop := reorder.ResolveCardDrop(s.current.Columns, ev)
	s.mu.Unlock()

	if drop.Outcome != reorder.Moved {
		return nil, drop.Outcome, nil
	}
	p, err := s.MoveCard(ctx, drop.CardID, drop.FromColumnID, drop.ToColumnID, drop.DestinationIndex)
	return p, drop.Outcome, err
}

// DropColumn completes a column drag.
func (s *Store) DropColumn(ctx context.Context, ev reorder.DragEnd) (*Pending[domain.Board], reorder.Outcome, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, reorder.Abandoned, nil
	}
	drop := reorder.ResolveColumnDrop(s.current.Columns, ev)
	s.mu.Unlock()

	if drop.Outcome != reorder.Moved {
		return nil, drop.Outcome, nil
	}
	p, err := s.MoveColumn(ctx, drop.ColumnID, drop.NewIndex)
	return p, drop.Outcome, err
}

// mutate runs fn against a copy of the open board and commits the columns it
// returns. Errors from fn leave state untouched and land in the error slot.
func (s *Store) mutate(ctx context.Context, op string, fn func(b domain.Board) ([]domain.Column, error)) (*Pending[domain.Board], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, ErrNoBoard))
	}
	columns, err := fn(s.current.Clone())
	if errors.Is(err, errUnchanged) {
		return nil, nil
	}
	if err != nil {
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, err))
	}

	next := s.current.Clone()
	next.Columns = columns
	next.Normalize()
	if err := domain.ValidateColumns(next.Columns); err != nil {
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, err))
	}
	if err := permission.CheckColumnsReplace(s.actor, *s.current, next.Columns); err != nil {
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, err))
	}

	s.current = &next
	s.upsertBoardLocked(next)
	s.version++

	s.inflight[next.ID]++
	prev := s.tail
	done := make(chan struct{})
	s.tail = done

	p := newPending(next.Clone())
	go s.syncStructure(context.WithoutCancel(ctx), op, next.ID, domain.CloneColumns(next.Columns), prev, done, p)
	return p, nil
}

// syncStructure sends one whole-columns write once the previously queued
// write has settled. On failure the board is re-fetched and replaces local
// state.
func (s *Store) syncStructure(ctx context.Context, op string, boardID uuid.UUID, columns []domain.Column, prev <-chan struct{}, done chan<- struct{}, p *Pending[domain.Board]) {
	defer close(done)
	if prev != nil {
		<-prev
	}

	confirmed, err := s.remote.UpdateBoard(ctx, boardID, BoardPatch{Columns: columns})
	if err == nil {
		s.mu.Lock()
		last := s.settleLocked(boardID)
		if last && confirmed != nil && s.current != nil && s.current.ID == boardID {
			confirmed.Normalize()
			s.current = confirmed
			s.upsertBoardLocked(*confirmed)
			s.version++
		}
		s.mu.Unlock()
		if confirmed != nil {
			p.resolve(confirmed.Clone(), nil)
		} else {
			p.resolve(p.Applied, nil)
		}
		return
	}

	failure := fmt.Errorf("%s: %w", op, err)
	s.logger.Warn("Structural update rejected, reconciling",
		zap.String("board_id", boardID.String()),
		zap.String("operation", op),
		zap.Error(err))

	fresh, fetchErr := s.remote.FetchBoard(ctx, boardID)

	s.mu.Lock()
	s.settleLocked(boardID)
	s.err = failure
	s.version++
	switch {
	case fetchErr == nil:
		fresh.Normalize()
		if s.current != nil && s.current.ID == boardID {
			s.current = fresh
		}
		s.upsertBoardLocked(*fresh)
	case errors.Is(fetchErr, domain.ErrNotFound):
		s.dropBoardLocked(boardID)
	default:
		s.logger.Error("Failed to reconcile board after rejected update",
			zap.String("board_id", boardID.String()),
			zap.Error(fetchErr))
	}
	s.mu.Unlock()

	var zero domain.Board
	p.resolve(zero, failure)
}

// settleLocked marks one structural write on boardID finished and reports
// whether it was the last one in flight.
func (s *Store) settleLocked(boardID uuid.UUID) bool {
	s.inflight[boardID]--
	if s.inflight[boardID] <= 0 {
		delete(s.inflight, boardID)
		return true
	}
	return false
}
