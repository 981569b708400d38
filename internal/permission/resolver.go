// Package permission resolves read and write access to boards, columns and
// cards. Every level carries its own owner and sharing list and is resolved
// independently.
package permission

import (
	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// Shareable is any entity with an owner and a sharing list.
type Shareable interface {
	Owner() uuid.UUID
	Shares() []domain.SharedUser
}

// Access is the outcome of resolving an actor against one entity
type Access struct {
	Read  bool
	Write bool
}

var (
	none      = Access{}
	readOnly  = Access{Read: true}
	readWrite = Access{Read: true, Write: true}
)

// Resolve computes the actor's access at the entity's own level.
func Resolve[E Shareable](entity E, actor uuid.UUID) Access {
	if actor == uuid.Nil {
		return none
	}
	if entity.Owner() == actor {
		return readWrite
	}
	share, ok := domain.FindShare(entity.Shares(), actor)
	if !ok {
		return none
	}
	switch share.Permission {
	case domain.PermissionWrite:
		return readWrite
	case domain.PermissionRead:
		return readOnly
	}
	return none
}

// CanRead reports whether the actor may view the entity.
func CanRead[E Shareable](entity E, actor uuid.UUID) bool {
	return Resolve(entity, actor).Read
}

// CanWrite reports whether the actor may mutate the entity.
func CanWrite[E Shareable](entity E, actor uuid.UUID) bool {
	return Resolve(entity, actor).Write
}

// CanManageShares reports whether the actor may change the entity's sharing
// list. Write access is not enough; only the owner may.
func CanManageShares[E Shareable](entity E, actor uuid.UUID) bool {
	return actor != uuid.Nil && entity.Owner() == actor
}

// VisibleColumns returns the columns and cards the actor may view. A child is
// kept only when the actor resolves to read at the child's own level.
func VisibleColumns(board domain.Board, actor uuid.UUID) []domain.Column {
	if !CanRead(board, actor) {
		return []domain.Column{}
	}
	out := make([]domain.Column, 0, len(board.Columns))
	for _, col := range board.Columns {
		if !CanRead(col, actor) {
			continue
		}
		visible := col.Clone()
		visible.Cards = visible.Cards[:0]
		for _, card := range col.Cards {
			if CanRead(card, actor) {
				visible.Cards = append(visible.Cards, card.Clone())
			}
		}
		out = append(out, visible)
	}
	return out
}
