package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"collab-board/internal/domain"
	"collab-board/internal/permission"
	"collab-board/internal/reorder"
)

// BoardUpdate lists the board fields to change. Nil fields stay as they are.
type BoardUpdate struct {
	Title       *string
	Description *string
}

// CreateBoard adds a placeholder board owned by the actor and replaces it with
// the server-assigned board once created. On failure the placeholder is
// removed.
func (s *Store) CreateBoard(ctx context.Context, title, description string) (*Pending[domain.Board], error) {
	title, err := domain.NormalizeTitle("title", title)
	if err != nil {
		return nil, s.fail(fmt.Errorf("create board: %w", err))
	}

	s.mu.Lock()
	now := time.Now().UTC()
	placeholder := domain.Board{
		BaseModel:   domain.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:      s.actor,
		Title:       title,
		Description: description,
		Order:       len(s.boards),
	}
	placeholder.Normalize()
	s.boards = append(s.boards, placeholder.Clone())
	s.version++
	s.mu.Unlock()

	p := newPending(placeholder.Clone())
	go func() {
		created, err := s.remote.CreateBoard(context.WithoutCancel(ctx), title, description)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.removeBoardEntryLocked(placeholder.ID)
			p.resolve(domain.Board{}, s.failLocked(fmt.Errorf("create board: %w", err)))
			return
		}
		created.Normalize()
		if i := s.boardIndexLocked(placeholder.ID); i >= 0 {
			s.boards[i] = created.Clone()
		} else {
			s.boards = append(s.boards, created.Clone())
		}
		s.version++
		p.resolve(created.Clone(), nil)
	}()
	return p, nil
}

// UpdateBoard changes a board's title or description. On failure only the
// changed fields are restored.
func (s *Store) UpdateBoard(ctx context.Context, id uuid.UUID, upd BoardUpdate) (*Pending[domain.Board], error) {
	patch := BoardPatch{Description: upd.Description}
	if upd.Title != nil {
		title, err := domain.NormalizeTitle("title", *upd.Title)
		if err != nil {
			return nil, s.fail(fmt.Errorf("update board: %w", err))
		}
		patch.Title = &title
	}

	s.mu.Lock()
	board, ok := s.lookupBoardLocked(id)
	if !ok {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("update board %s: %w", id, domain.ErrNotFound))
	}
	if !permission.CanWrite(board, s.actor) {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("update board %s: %w", id, domain.ErrAccessDenied))
	}
	prevTitle, prevDescription := board.Title, board.Description
	s.editBoardLocked(id, func(b *domain.Board) {
		if patch.Title != nil {
			b.Title = *patch.Title
		}
		if patch.Description != nil {
			b.Description = *patch.Description
		}
	})
	applied, _ := s.lookupBoardLocked(id)
	s.mu.Unlock()

	p := newPending(applied.Clone())
	go func() {
		confirmed, err := s.remote.UpdateBoard(context.WithoutCancel(ctx), id, patch)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.editBoardLocked(id, func(b *domain.Board) {
				if patch.Title != nil {
					b.Title = prevTitle
				}
				if patch.Description != nil {
					b.Description = prevDescription
				}
			})
			p.resolve(domain.Board{}, s.failLocked(fmt.Errorf("update board: %w", err)))
			return
		}
		s.editBoardLocked(id, func(b *domain.Board) {
			b.Title = confirmed.Title
			b.Description = confirmed.Description
			b.UpdatedAt = confirmed.UpdatedAt
		})
		p.resolve(confirmed.Clone(), nil)
	}()
	return p, nil
}

// DeleteBoard removes a board owned by the actor. On failure the board is put
// back where it was.
func (s *Store) DeleteBoard(ctx context.Context, id uuid.UUID) (*Pending[domain.Board], error) {
	s.mu.Lock()
	board, ok := s.lookupBoardLocked(id)
	if !ok {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("delete board %s: %w", id, domain.ErrNotFound))
	}
	if !permission.CanManageShares(board, s.actor) {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("delete board %s: only the owner may delete: %w", id, domain.ErrAccessDenied))
	}
	index := s.boardIndexLocked(id)
	var wasCurrent *domain.Board
	if s.current != nil && s.current.ID == id {
		c := s.current.Clone()
		wasCurrent = &c
	}
	s.dropBoardLocked(id)
	s.version++
	s.mu.Unlock()

	p := newPending(board.Clone())
	go func() {
		err := s.remote.DeleteBoard(context.WithoutCancel(ctx), id)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if index >= 0 && s.boardIndexLocked(id) < 0 {
				index = min(index, len(s.boards))
				s.boards = reorder.Insert(s.boards, index, board.Clone())
			}
			if wasCurrent != nil && s.current == nil {
				s.current = wasCurrent
			}
			p.resolve(domain.Board{}, s.failLocked(fmt.Errorf("delete board: %w", err)))
			return
		}
		p.resolve(board.Clone(), nil)
	}()
	return p, nil
}

// MoveBoard reorders the board list and persists the new order of every
// board the actor owns. On failure the previous order is restored.
func (s *Store) MoveBoard(ctx context.Context, id uuid.UUID, newIndex int) (*Pending[[]domain.Board], error) {
	s.mu.Lock()
	prev := make([]domain.Board, len(s.boards))
	copy(prev, s.boards)
	moved, ok := reorder.MoveBoard(s.boards, id, newIndex)
	if !ok {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("move board %s: %w", id, domain.ErrNotFound))
	}
	type orderPatch struct {
		id    uuid.UUID
		order int
	}
	var patches []orderPatch
	for i, b := range moved {
		if b.UserID == s.actor && prev[i].ID != b.ID {
			patches = append(patches, orderPatch{id: b.ID, order: b.Order})
		}
	}
	s.boards = moved
	s.version++
	applied := make([]domain.Board, len(moved))
	for i, b := range moved {
		applied[i] = b.Clone()
	}
	s.mu.Unlock()

	p := newPending(applied)
	go func() {
		rctx := context.WithoutCancel(ctx)
		var err error
		for _, patch := range patches {
			order := patch.order
			if _, err = s.remote.UpdateBoard(rctx, patch.id, BoardPatch{Order: &order}); err != nil {
				break
			}
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			restored := make([]domain.Board, 0, len(s.boards))
			seen := make(map[uuid.UUID]bool, len(prev))
			for _, old := range prev {
				if i := s.boardIndexLocked(old.ID); i >= 0 {
					b := s.boards[i]
					b.Order = old.Order
					restored = append(restored, b)
					seen[old.ID] = true
				}
			}
			for _, b := range s.boards {
				if !seen[b.ID] {
					restored = append(restored, b)
				}
			}
			s.boards = restored
			p.resolve(nil, s.failLocked(fmt.Errorf("move board: %w", err)))
			return
		}
		p.resolve(applied, nil)
	}()
	return p, nil
}

// editBoardLocked applies fn to the open board and the list entry with id.
func (s *Store) editBoardLocked(id uuid.UUID, fn func(b *domain.Board)) {
	if s.current != nil && s.current.ID == id {
		next := s.current.Clone()
		fn(&next)
		s.current = &next
	}
	if i := s.boardIndexLocked(id); i >= 0 {
		next := s.boards[i].Clone()
		fn(&next)
		s.boards[i] = next
	}
	s.version++
}

func (s *Store) removeBoardEntryLocked(id uuid.UUID) {
	if i := s.boardIndexLocked(id); i >= 0 {
		s.boards = append(s.boards[:i:i], s.boards[i+1:]...)
		s.version++
	}
}
