package permission

import (
	"fmt"

	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// CheckColumnsReplace decides whether actor may replace current's columns
// with next. It returns domain.ErrAccessDenied wrapped with the offending
// entity, or nil.
//
// With board write the structure may change freely, but new children must be
// owned by the actor and existing ones keep their content unless the actor
// may write them at their own level. With board read only the structure is frozen: a
// column's fields may change only with column write, a card's content only
// with card write.
func CheckColumnsReplace(actor uuid.UUID, current domain.Board, next []domain.Column) error {
	access := Resolve(current, actor)
	if !access.Read {
		return fmt.Errorf("board %s: %w", current.ID, domain.ErrAccessDenied)
	}

	prevCols := make(map[uuid.UUID]domain.Column, len(current.Columns))
	prevCards := make(map[uuid.UUID]domain.Card)
	for _, col := range current.Columns {
		prevCols[col.ID] = col
		for _, card := range col.Cards {
			prevCards[card.ID] = card
		}
	}

	if access.Write {
		return checkOwnedChildren(actor, prevCols, prevCards, next)
	}

	if !sameStructure(current.Columns, next) {
		return fmt.Errorf("board %s: structure change requires write: %w", current.ID, domain.ErrAccessDenied)
	}
	for _, col := range next {
		prev := prevCols[col.ID]
		if err := checkChild(actor, "column", col.ID, true, prev.UserID, col.UserID, prev.SharedWith, col.SharedWith); err != nil {
			return err
		}
		if columnFieldsChanged(prev, col) && !CanWrite(prev, actor) {
			return fmt.Errorf("column %s: %w", col.ID, domain.ErrAccessDenied)
		}
		for _, card := range col.Cards {
			old := prevCards[card.ID]
			if err := checkChild(actor, "card", card.ID, true, old.UserID, card.UserID, old.SharedWith, card.SharedWith); err != nil {
				return err
			}
			if cardContentChanged(old, card) && !CanWrite(old, actor) {
				return fmt.Errorf("card %s: %w", card.ID, domain.ErrAccessDenied)
			}
		}
	}
	return nil
}

func checkOwnedChildren(actor uuid.UUID, prevCols map[uuid.UUID]domain.Column, prevCards map[uuid.UUID]domain.Card, next []domain.Column) error {
	for _, col := range next {
		prev, existed := prevCols[col.ID]
		if err := checkChild(actor, "column", col.ID, existed, prev.UserID, col.UserID, prev.SharedWith, col.SharedWith); err != nil {
			return err
		}
		if existed && columnFieldsChanged(prev, col) && !CanWrite(prev, actor) {
			return fmt.Errorf("column %s: %w", col.ID, domain.ErrAccessDenied)
		}
		for _, card := range col.Cards {
			old, had := prevCards[card.ID]
			if err := checkChild(actor, "card", card.ID, had, old.UserID, card.UserID, old.SharedWith, card.SharedWith); err != nil {
				return err
			}
			if had && cardContentChanged(old, card) && !CanWrite(old, actor) {
				return fmt.Errorf("card %s: %w", card.ID, domain.ErrAccessDenied)
			}
		}
	}
	return nil
}

func checkChild(actor uuid.UUID, kind string, id uuid.UUID, existed bool, prevOwner, owner uuid.UUID, prevShares, shares []domain.SharedUser) error {
	if !existed {
		if owner != actor {
			return fmt.Errorf("new %s %s must be owned by the actor: %w", kind, id, domain.ErrAccessDenied)
		}
		return nil
	}
	if owner != prevOwner {
		return fmt.Errorf("%s %s owner cannot change: %w", kind, id, domain.ErrAccessDenied)
	}
	if prevOwner != actor && !sameShares(prevShares, shares) {
		return fmt.Errorf("%s %s sharing is managed by its owner: %w", kind, id, domain.ErrAccessDenied)
	}
	return nil
}

// sameStructure reports whether both arrays hold the same columns and cards
// in the same positions.
func sameStructure(prev, next []domain.Column) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i].ID != next[i].ID || len(prev[i].Cards) != len(next[i].Cards) {
			return false
		}
		for j := range prev[i].Cards {
			if prev[i].Cards[j].ID != next[i].Cards[j].ID {
				return false
			}
		}
	}
	return true
}

func columnFieldsChanged(prev, next domain.Column) bool {
	return prev.Title != next.Title ||
		prev.Color != next.Color ||
		prev.UserID != next.UserID ||
		!sameShares(prev.SharedWith, next.SharedWith)
}

func cardContentChanged(prev, next domain.Card) bool {
	if prev.Title != next.Title ||
		prev.Description != next.Description ||
		prev.Priority != next.Priority ||
		prev.Icon != next.Icon ||
		prev.UserID != next.UserID {
		return true
	}
	if (prev.DueDate == nil) != (next.DueDate == nil) {
		return true
	}
	if prev.DueDate != nil && !prev.DueDate.Equal(*next.DueDate) {
		return true
	}
	if len(prev.Labels) != len(next.Labels) {
		return true
	}
	for i := range prev.Labels {
		if prev.Labels[i] != next.Labels[i] {
			return true
		}
	}
	return !sameShares(prev.SharedWith, next.SharedWith)
}

func sameShares(a, b []domain.SharedUser) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
