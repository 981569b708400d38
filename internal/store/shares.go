package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"collab-board/internal/domain"
	"collab-board/internal/permission"
)

// Share grants userID perm on the referenced entity. Only the entity owner may
// share, and sharing again overwrites the permission.
func (s *Store) Share(ctx context.Context, ref domain.EntityRef, userID uuid.UUID, perm domain.SharePermission) (*Pending[domain.Board], error) {
	if !perm.Valid() {
		return nil, s.fail(fmt.Errorf("share: %w", domain.NewValidationError("permission", "must be read or write")))
	}
	return s.changeShares(ctx, "share", ref, userID, func(list []domain.SharedUser) []domain.SharedUser {
		return domain.WithShare(list, userID, perm)
	}, func(rctx context.Context) (*domain.Board, error) {
		return s.remote.ShareEntity(rctx, ref, userID, perm)
	})
}

// Unshare removes userID from the referenced entity's sharing list. Removing
// an absent user is a no-op locally and remotely.
func (s *Store) Unshare(ctx context.Context, ref domain.EntityRef, userID uuid.UUID) (*Pending[domain.Board], error) {
	return s.changeShares(ctx, "unshare", ref, userID, func(list []domain.SharedUser) []domain.SharedUser {
		return domain.WithoutShare(list, userID)
	}, func(rctx context.Context) (*domain.Board, error) {
		return s.remote.UnshareEntity(rctx, ref, userID)
	})
}

func (s *Store) changeShares(
	ctx context.Context,
	op string,
	ref domain.EntityRef,
	userID uuid.UUID,
	edit func([]domain.SharedUser) []domain.SharedUser,
	call func(context.Context) (*domain.Board, error),
) (*Pending[domain.Board], error) {
	s.mu.Lock()
	board, ok := s.lookupBoardLocked(ref.BoardID)
	if !ok {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("%s: board %s: %w", op, ref.BoardID, domain.ErrNotFound))
	}
	owner, prevShares, err := sharesOf(board, ref)
	if err != nil {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, err))
	}
	if owner != s.actor {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("%s: only the owner may change sharing: %w", op, domain.ErrAccessDenied))
	}
	if userID == owner {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("%s: %w", op, domain.NewValidationError("userId", "cannot share with the owner")))
	}

	s.setSharesLocked(ref, edit(prevShares))
	applied, _ := s.lookupBoardLocked(ref.BoardID)
	s.mu.Unlock()

	p := newPending(applied.Clone())
	go func() {
		confirmed, err := call(context.WithoutCancel(ctx))
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.setSharesLocked(ref, prevShares)
			p.resolve(domain.Board{}, s.failLocked(fmt.Errorf("%s: %w", op, err)))
			return
		}
		if _, shares, err := sharesOf(*confirmed, ref); err == nil {
			s.setSharesLocked(ref, shares)
		}
		p.resolve(confirmed.Clone(), nil)
	}()
	return p, nil
}

// sharesOf returns the owner and sharing list of the entity ref points at.
func sharesOf(b domain.Board, ref domain.EntityRef) (uuid.UUID, []domain.SharedUser, error) {
	switch ref.Level {
	case domain.LevelBoard:
		return b.UserID, append([]domain.SharedUser{}, b.SharedWith...), nil
	case domain.LevelColumn:
		if i, ok := b.ColumnIndex(ref.ID); ok {
			col := b.Columns[i]
			return col.UserID, append([]domain.SharedUser{}, col.SharedWith...), nil
		}
		return uuid.Nil, nil, fmt.Errorf("column %s: %w", ref.ID, domain.ErrNotFound)
	case domain.LevelCard:
		if ci, j, ok := domain.LocateCard(b.Columns, ref.ID); ok {
			card := b.Columns[ci].Cards[j]
			return card.UserID, append([]domain.SharedUser{}, card.SharedWith...), nil
		}
		return uuid.Nil, nil, fmt.Errorf("card %s: %w", ref.ID, domain.ErrNotFound)
	}
	return uuid.Nil, nil, domain.NewValidationError("level", "must be board, column or card")
}

// setSharesLocked writes list onto the referenced entity in every local copy
// of its board.
func (s *Store) setSharesLocked(ref domain.EntityRef, list []domain.SharedUser) {
	s.editBoardLocked(ref.BoardID, func(b *domain.Board) {
		switch ref.Level {
		case domain.LevelBoard:
			b.SharedWith = domain.DedupeShares(list)
		case domain.LevelColumn:
			if i, ok := b.ColumnIndex(ref.ID); ok {
				b.Columns[i].SharedWith = domain.DedupeShares(list)
			}
		case domain.LevelCard:
			if ci, j, ok := domain.LocateCard(b.Columns, ref.ID); ok {
				b.Columns[ci].Cards[j].SharedWith = domain.DedupeShares(list)
			}
		}
	})
}

// CanShare reports whether the actor may change the sharing list of ref.
func (s *Store) CanShare(ref domain.EntityRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.lookupBoardLocked(ref.BoardID)
	if !ok {
		return false
	}
	switch ref.Level {
	case domain.LevelBoard:
		return permission.CanManageShares(board, s.actor)
	case domain.LevelColumn:
		if i, ok := board.ColumnIndex(ref.ID); ok {
			return permission.CanManageShares(board.Columns[i], s.actor)
		}
	case domain.LevelCard:
		if ci, j, ok := domain.LocateCard(board.Columns, ref.ID); ok {
			return permission.CanManageShares(board.Columns[ci].Cards[j], s.actor)
		}
	}
	return false
}
