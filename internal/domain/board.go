package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Priority of a card
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Card is a single task inside a column. Order mirrors the card's index in
// Column.Cards and is rewritten after every mutation.
type Card struct {
	ID          uuid.UUID    `json:"id"`
	ColumnID    uuid.UUID    `json:"columnId"`
	BoardID     uuid.UUID    `json:"boardId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Labels      []uuid.UUID  `json:"labels"`
	Priority    Priority     `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	Order       int          `json:"order"`
	UserID      uuid.UUID    `json:"userId"`
	SharedWith  []SharedUser `json:"sharedWith"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Column is an ordered container of cards. Cards order is authoritative.
type Column struct {
	ID         uuid.UUID    `json:"id"`
	BoardID    uuid.UUID    `json:"boardId"`
	Title      string       `json:"title"`
	Color      string       `json:"color"`
	Order      int          `json:"order"`
	Cards      []Card       `json:"cards"`
	UserID     uuid.UUID    `json:"userId"`
	SharedWith []SharedUser `json:"sharedWith"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Board is the top-level container. Columns and SharedWith are stored as JSON
// documents on the board row so a structural change is a single UPDATE.
type Board struct {
	BaseModel
	UserID      uuid.UUID                       `gorm:"type:uuid;not null;index:idx_boards_user_id" json:"userId"`
	Title       string                          `gorm:"type:varchar(255);not null" json:"title"`
	Description string                          `gorm:"type:text" json:"description,omitempty"`
	Columns     datatypes.JSONSlice[Column]     `json:"columns"`
	SharedWith  datatypes.JSONSlice[SharedUser] `json:"sharedWith"`
	Order       int                             `gorm:"not null;default:0" json:"order"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// Owner returns the board owner.
func (b Board) Owner() uuid.UUID { return b.UserID }

// Shares returns the board-level sharing list.
func (b Board) Shares() []SharedUser { return b.SharedWith }

// Owner returns the column owner.
func (c Column) Owner() uuid.UUID { return c.UserID }

// Shares returns the column-level sharing list.
func (c Column) Shares() []SharedUser { return c.SharedWith }

// Owner returns the card owner.
func (c Card) Owner() uuid.UUID { return c.UserID }

// Shares returns the card-level sharing list.
func (c Card) Shares() []SharedUser { return c.SharedWith }

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	out.Labels = make([]uuid.UUID, len(c.Labels))
	copy(out.Labels, c.Labels)
	out.SharedWith = cloneShares(c.SharedWith)
	if c.DueDate != nil {
		d := *c.DueDate
		out.DueDate = &d
	}
	return out
}

// Clone returns a deep copy of the column and its cards.
func (c Column) Clone() Column {
	out := c
	out.Cards = make([]Card, len(c.Cards))
	for i, card := range c.Cards {
		out.Cards[i] = card.Clone()
	}
	out.SharedWith = cloneShares(c.SharedWith)
	return out
}

// CloneColumns deep-copies a columns array.
func CloneColumns(columns []Column) []Column {
	out := make([]Column, len(columns))
	for i, col := range columns {
		out[i] = col.Clone()
	}
	return out
}

// Clone returns a deep copy of the board. Snapshots handed to consumers are
// never mutated afterwards, so every mutation starts from a clone.
func (b Board) Clone() Board {
	out := b
	out.Columns = CloneColumns(b.Columns)
	out.SharedWith = cloneShares(b.SharedWith)
	return out
}

// Normalize rewrites the denormalized fields: column and card Order follow
// array position, children carry their parent ids, label ids and sharing
// lists hold one entry per id. Nil slices become empty ones.
func (b *Board) Normalize() {
	if b.Columns == nil {
		b.Columns = datatypes.JSONSlice[Column]{}
	}
	b.SharedWith = DedupeShares(b.SharedWith)
	for i := range b.Columns {
		col := &b.Columns[i]
		col.Order = i
		col.BoardID = b.ID
		col.SharedWith = DedupeShares(col.SharedWith)
		if col.Cards == nil {
			col.Cards = []Card{}
		}
		for j := range col.Cards {
			card := &col.Cards[j]
			card.Order = j
			card.ColumnID = col.ID
			card.BoardID = b.ID
			card.Labels = dedupeIDs(card.Labels)
			card.SharedWith = DedupeShares(card.SharedWith)
			if card.Priority == "" {
				card.Priority = PriorityMedium
			}
		}
	}
}

// ColumnIndex returns the index of the column with id.
func (b Board) ColumnIndex(id uuid.UUID) (int, bool) {
	return ColumnIndex(b.Columns, id)
}

// ColumnIndex returns the index of the column with id in columns.
func ColumnIndex(columns []Column, id uuid.UUID) (int, bool) {
	for i, col := range columns {
		if col.ID == id {
			return i, true
		}
	}
	return -1, false
}

// CardIndex returns the index of the card with id in cards.
func CardIndex(cards []Card, id uuid.UUID) (int, bool) {
	for i, card := range cards {
		if card.ID == id {
			return i, true
		}
	}
	return -1, false
}

// LocateCard returns the column and card indexes of the card with id.
func LocateCard(columns []Column, id uuid.UUID) (int, int, bool) {
	for i, col := range columns {
		if j, ok := CardIndex(col.Cards, id); ok {
			return i, j, true
		}
	}
	return -1, -1, false
}

// CardCount returns the number of cards across all columns.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// HasLabel reports whether the card carries labelID.
func (c Card) HasLabel(labelID uuid.UUID) bool {
	for _, id := range c.Labels {
		if id == labelID {
			return true
		}
	}
	return false
}

// StripLabel returns a copy of columns with labelID removed from every card.
func StripLabel(columns []Column, labelID uuid.UUID) []Column {
	out := CloneColumns(columns)
	for i := range out {
		for j := range out[i].Cards {
			card := &out[i].Cards[j]
			if !card.HasLabel(labelID) {
				continue
			}
			kept := make([]uuid.UUID, 0, len(card.Labels)-1)
			for _, id := range card.Labels {
				if id != labelID {
					kept = append(kept, id)
				}
			}
			card.Labels = kept
		}
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AddLabel attaches labelID unless the card already carries it.
func (c *Card) AddLabel(labelID uuid.UUID) {
	if !c.HasLabel(labelID) {
		c.Labels = append(c.Labels, labelID)
	}
}
