package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"collab-board/internal/domain"
	"collab-board/internal/reorder"
)

// CreateLabel adds a placeholder label and swaps in the server's label once
// created.
func (s *Store) CreateLabel(ctx context.Context, name, color string) (*Pending[domain.Label], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.fail(fmt.Errorf("create label: %w", domain.NewValidationError("name", "must not be empty")))
	}
	if err := domain.ValidateColor("color", color); err != nil {
		return nil, s.fail(fmt.Errorf("create label: %w", err))
	}

	s.mu.Lock()
	now := time.Now().UTC()
	placeholder := domain.Label{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:    s.actor,
		Name:      name,
		Color:     color,
	}
	s.labels = append(s.labels, placeholder)
	s.version++
	s.mu.Unlock()

	p := newPending(placeholder)
	go func() {
		created, err := s.remote.CreateLabel(context.WithoutCancel(ctx), name, color)
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.labelIndexLocked(placeholder.ID)
		if err != nil {
			if i >= 0 {
				s.labels = append(s.labels[:i:i], s.labels[i+1:]...)
			}
			p.resolve(domain.Label{}, s.failLocked(fmt.Errorf("create label: %w", err)))
			return
		}
		if i >= 0 {
			s.labels[i] = *created
		} else {
			s.labels = append(s.labels, *created)
		}
		s.version++
		p.resolve(*created, nil)
	}()
	return p, nil
}

// UpdateLabel renames or recolors a label. On failure the previous label is
// restored.
func (s *Store) UpdateLabel(ctx context.Context, id uuid.UUID, name, color string) (*Pending[domain.Label], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.fail(fmt.Errorf("update label: %w", domain.NewValidationError("name", "must not be empty")))
	}
	if err := domain.ValidateColor("color", color); err != nil {
		return nil, s.fail(fmt.Errorf("update label: %w", err))
	}

	s.mu.Lock()
	i := s.labelIndexLocked(id)
	if i < 0 {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("update label %s: %w", id, domain.ErrNotFound))
	}
	prev := s.labels[i]
	applied := prev
	applied.Name, applied.Color = name, color
	s.labels[i] = applied
	s.version++
	s.mu.Unlock()

	p := newPending(applied)
	go func() {
		updated, err := s.remote.UpdateLabel(context.WithoutCancel(ctx), id, name, color)
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.labelIndexLocked(id)
		if err != nil {
			if i >= 0 {
				s.labels[i] = prev
			}
			p.resolve(domain.Label{}, s.failLocked(fmt.Errorf("update label: %w", err)))
			return
		}
		if i >= 0 {
			s.labels[i] = *updated
			s.version++
		}
		p.resolve(*updated, nil)
	}()
	return p, nil
}

// DeleteLabel removes a label and strips its id from every card held
// locally. No card writes are issued for the stripping. On failure the label
// and the stripped ids come back.
func (s *Store) DeleteLabel(ctx context.Context, id uuid.UUID) (*Pending[domain.Label], error) {
	s.mu.Lock()
	i := s.labelIndexLocked(id)
	if i < 0 {
		defer s.mu.Unlock()
		return nil, s.failLocked(fmt.Errorf("delete label %s: %w", id, domain.ErrNotFound))
	}
	label := s.labels[i]
	s.labels = append(s.labels[:i:i], s.labels[i+1:]...)
	stripped := s.stripLabelLocked(id)
	s.version++
	s.mu.Unlock()

	p := newPending(label)
	go func() {
		err := s.remote.DeleteLabel(context.WithoutCancel(ctx), id)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if s.labelIndexLocked(id) < 0 {
				s.labels = reorder.Insert(s.labels, i, label)
			}
			s.restoreLabelLocked(id, stripped)
			p.resolve(domain.Label{}, s.failLocked(fmt.Errorf("delete label: %w", err)))
			return
		}
		p.resolve(label, nil)
	}()
	return p, nil
}

func (s *Store) labelIndexLocked(id uuid.UUID) int {
	for i := range s.labels {
		if s.labels[i].ID == id {
			return i
		}
	}
	return -1
}

// stripLabelLocked removes labelID from the cards of the open board and the
// board list, returning the ids of the cards that carried it.
func (s *Store) stripLabelLocked(labelID uuid.UUID) map[uuid.UUID]bool {
	carried := make(map[uuid.UUID]bool)
	collect := func(b domain.Board) {
		for _, col := range b.Columns {
			for _, card := range col.Cards {
				if card.HasLabel(labelID) {
					carried[card.ID] = true
				}
			}
		}
	}
	if s.current != nil {
		collect(*s.current)
		next := s.current.Clone()
		next.Columns = domain.StripLabel(next.Columns, labelID)
		s.current = &next
	}
	for i := range s.boards {
		collect(s.boards[i])
		s.boards[i].Columns = domain.StripLabel(s.boards[i].Columns, labelID)
	}
	return carried
}

// restoreLabelLocked re-attaches labelID to the cards that carried it and
// still exist.
func (s *Store) restoreLabelLocked(labelID uuid.UUID, cards map[uuid.UUID]bool) {
	if len(cards) == 0 {
		return
	}
	restore := func(columns []domain.Column) []domain.Column {
		out := domain.CloneColumns(columns)
		for ci := range out {
			for j := range out[ci].Cards {
				if cards[out[ci].Cards[j].ID] {
					out[ci].Cards[j].AddLabel(labelID)
				}
			}
		}
		return out
	}
	if s.current != nil {
		next := s.current.Clone()
		next.Columns = restore(next.Columns)
		s.current = &next
	}
	for i := range s.boards {
		s.boards[i].Columns = restore(s.boards[i].Columns)
	}
}
