package reorder

import (
	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// TargetKind says what a dragged item is hovering over
type TargetKind string

const (
	OverColumn TargetKind = "column"
	OverCard   TargetKind = "card"
)

// Target is the drop reference reported by the drag layer
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// DragEnd is a completed drag: the dragged item and what it was released
// over. Over is nil when released outside any target.
type DragEnd struct {
	ActiveID uuid.UUID `json:"activeId"`
	Over     *Target   `json:"over,omitempty"`
}

// Outcome classifies a resolved drop
type Outcome int

const (
	// Moved means the drop maps onto a move.
	Moved Outcome = iota
	// Cancelled means the item was released outside any target.
	Cancelled
	// Unchanged means the item was dropped onto itself.
	Unchanged
	// Abandoned means the active item or the target no longer exists.
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Cancelled:
		return "cancelled"
	case Unchanged:
		return "unchanged"
	case Abandoned:
		return "abandoned"
	}
	return "unknown"
}

// CardDrop holds the MoveCard arguments derived from a drag end
type CardDrop struct {
	Outcome          Outcome
	CardID           uuid.UUID
	FromColumnID     uuid.UUID
	ToColumnID       uuid.UUID
	DestinationIndex int
}

// ResolveCardDrop turns a card drag end into MoveCard arguments.
//
// Dropping on a column appends. Dropping on a card of another column inserts
// at that card's index. Dropping on a card of the same column takes its slot
// when dragging up and the slot after it when dragging down.
func ResolveCardDrop(columns []domain.Column, ev DragEnd) CardDrop {
	if ev.Over == nil {
		return CardDrop{Outcome: Cancelled, CardID: ev.ActiveID}
	}
	if ev.Over.ID == ev.ActiveID {
		return CardDrop{Outcome: Unchanged, CardID: ev.ActiveID}
	}

	fromCol, src, ok := domain.LocateCard(columns, ev.ActiveID)
	if !ok {
		return CardDrop{Outcome: Abandoned, CardID: ev.ActiveID}
	}
	drop := CardDrop{Outcome: Moved, CardID: ev.ActiveID, FromColumnID: columns[fromCol].ID}

	switch ev.Over.Kind {
	case OverColumn:
		toCol, ok := domain.ColumnIndex(columns, ev.Over.ID)
		if !ok {
			return CardDrop{Outcome: Abandoned, CardID: ev.ActiveID}
		}
		drop.ToColumnID = columns[toCol].ID
		drop.DestinationIndex = len(columns[toCol].Cards)
	case OverCard:
		toCol, overIdx, ok := domain.LocateCard(columns, ev.Over.ID)
		if !ok {
			return CardDrop{Outcome: Abandoned, CardID: ev.ActiveID}
		}
		drop.ToColumnID = columns[toCol].ID
		drop.DestinationIndex = overIdx
		if toCol == fromCol && src < overIdx {
			drop.DestinationIndex = overIdx + 1
		}
	default:
		return CardDrop{Outcome: Abandoned, CardID: ev.ActiveID}
	}
	return drop
}

// ColumnDrop holds the MoveColumn arguments derived from a drag end
type ColumnDrop struct {
	Outcome  Outcome
	ColumnID uuid.UUID
	NewIndex int
}

// ResolveColumnDrop turns a column drag end into MoveColumn arguments. The
// dragged column takes the index of the column it was released over; a card
// target resolves to the card's column.
func ResolveColumnDrop(columns []domain.Column, ev DragEnd) ColumnDrop {
	if ev.Over == nil {
		return ColumnDrop{Outcome: Cancelled, ColumnID: ev.ActiveID}
	}
	if _, ok := domain.ColumnIndex(columns, ev.ActiveID); !ok {
		return ColumnDrop{Outcome: Abandoned, ColumnID: ev.ActiveID}
	}

	var overIdx int
	var ok bool
	switch ev.Over.Kind {
	case OverColumn:
		overIdx, ok = domain.ColumnIndex(columns, ev.Over.ID)
	case OverCard:
		overIdx, _, ok = domain.LocateCard(columns, ev.Over.ID)
	}
	if !ok {
		return ColumnDrop{Outcome: Abandoned, ColumnID: ev.ActiveID}
	}
	if columns[overIdx].ID == ev.ActiveID {
		return ColumnDrop{Outcome: Unchanged, ColumnID: ev.ActiveID}
	}
	return ColumnDrop{Outcome: Moved, ColumnID: ev.ActiveID, NewIndex: overIdx}
}

// HighlightColumn returns the column that should be highlighted while a card
// hovers over target, or uuid.Nil when nothing should be.
func HighlightColumn(columns []domain.Column, over *Target) uuid.UUID {
	if over == nil {
		return uuid.Nil
	}
	switch over.Kind {
	case OverColumn:
		if _, ok := domain.ColumnIndex(columns, over.ID); ok {
			return over.ID
		}
	case OverCard:
		if col, _, ok := domain.LocateCard(columns, over.ID); ok {
			return columns[col].ID
		}
	}
	return uuid.Nil
}
