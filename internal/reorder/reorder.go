// Package reorder computes new orderings of columns and cards after a drag
// and drop. All functions are pure: inputs are never mutated.
package reorder

import (
	"github.com/google/uuid"

	"collab-board/internal/domain"
)

// Move returns a copy of items with the element at from reinserted at to.
// to is an index into the list after removal and is clamped to its bounds.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	to = clamp(to, 0, len(out))
	out = append(out, item)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = item
	return out
}

// Insert returns a copy of items with item placed at index, clamped.
func Insert[T any](items []T, index int, item T) []T {
	index = clamp(index, 0, len(items))
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, item)
	return append(out, items[index:]...)
}

// Reindex rewrites Order of every card to its position.
func Reindex(cards []domain.Card) {
	for i := range cards {
		cards[i].Order = i
	}
}

// ReindexColumns rewrites Order of every column to its position.
func ReindexColumns(columns []domain.Column) {
	for i := range columns {
		columns[i].Order = i
	}
}

// MoveCard moves a card out of fromColumnID into toColumnID.
//
// For a cross-column move destinationIndex is the insert position in the
// destination. Within one column it names the slot the card is dropped on
// before removal, so moving down lands one position earlier once the card has
// left its old slot. destinationIndex == len(cards) appends.
//
// ok is false and columns are returned unchanged when either column or the
// card is missing.
func MoveCard(columns []domain.Column, cardID, fromColumnID, toColumnID uuid.UUID, destinationIndex int) ([]domain.Column, bool) {
	fromIdx, ok := domain.ColumnIndex(columns, fromColumnID)
	if !ok {
		return columns, false
	}
	toIdx, ok := domain.ColumnIndex(columns, toColumnID)
	if !ok {
		return columns, false
	}
	src, ok := domain.CardIndex(columns[fromIdx].Cards, cardID)
	if !ok {
		return columns, false
	}

	out := domain.CloneColumns(columns)

	if fromIdx == toIdx {
		col := &out[fromIdx]
		insertAt := destinationIndex
		if src < destinationIndex {
			insertAt--
		}
		col.Cards = Move(col.Cards, src, insertAt)
		Reindex(col.Cards)
		return out, true
	}

	from := &out[fromIdx]
	to := &out[toIdx]
	card := from.Cards[src]
	from.Cards = append(from.Cards[:src:src], from.Cards[src+1:]...)
	card.ColumnID = to.ID
	to.Cards = Insert(to.Cards, destinationIndex, card)
	Reindex(from.Cards)
	Reindex(to.Cards)
	return out, true
}

// MoveColumn moves a column to newIndex, clamped, and reindexes all columns.
func MoveColumn(columns []domain.Column, columnID uuid.UUID, newIndex int) ([]domain.Column, bool) {
	idx, ok := domain.ColumnIndex(columns, columnID)
	if !ok {
		return columns, false
	}
	out := Move(domain.CloneColumns(columns), idx, newIndex)
	ReindexColumns(out)
	return out, true
}

// MoveBoard reorders a board list and rewrites each board's Order.
func MoveBoard(boards []domain.Board, boardID uuid.UUID, newIndex int) ([]domain.Board, bool) {
	idx := -1
	for i, b := range boards {
		if b.ID == boardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return boards, false
	}
	out := Move(boards, idx, newIndex)
	for i := range out {
		out[i].Order = i
	}
	return out, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
