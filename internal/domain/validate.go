package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxTitleLength = 255

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeTitle trims a title and rejects empty or oversized values.
func NormalizeTitle(field, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", NewValidationError(field, "must not be empty")
	}
	if len(title) > maxTitleLength {
		return "", NewValidationError(field, "must be at most 255 characters")
	}
	return title, nil
}

// ValidateColor accepts #RGB and #RRGGBB hex colors.
func ValidateColor(field, color string) error {
	if !colorPattern.MatchString(color) {
		return NewValidationError(field, "must be a hex color like #1f6feb")
	}
	return nil
}

// NormalizePriority defaults an empty priority to medium.
func NormalizePriority(p Priority) (Priority, error) {
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", NewValidationError("priority", "must be one of low, medium, high, urgent")
	}
	return p, nil
}

// ValidateShares checks permissions and that the owner is not listed.
func ValidateShares(field string, owner uuid.UUID, list []SharedUser) error {
	for _, s := range list {
		if !s.Permission.Valid() {
			return NewValidationError(field, "permission must be read or write")
		}
		if s.UserID == uuid.Nil {
			return NewValidationError(field, "user id is required")
		}
		if s.UserID == owner {
			return NewValidationError(field, "owner cannot be listed in sharedWith")
		}
	}
	return nil
}

// ValidateColumns validates a full columns array before it replaces a board's
// structure: titles, colors, priorities, sharing lists, and id uniqueness
// across the whole board.
func ValidateColumns(columns []Column) error {
	seen := make(map[uuid.UUID]struct{})
	mark := func(field string, id uuid.UUID) error {
		if id == uuid.Nil {
			return NewValidationError(field, "id is required")
		}
		if _, dup := seen[id]; dup {
			return NewValidationError(field, "duplicate id "+id.String())
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, col := range columns {
		if err := mark("columns.id", col.ID); err != nil {
			return err
		}
		if _, err := NormalizeTitle("columns.title", col.Title); err != nil {
			return err
		}
		if err := ValidateColor("columns.color", col.Color); err != nil {
			return err
		}
		if err := ValidateShares("columns.sharedWith", col.UserID, col.SharedWith); err != nil {
			return err
		}
		for _, card := range col.Cards {
			if err := mark("cards.id", card.ID); err != nil {
				return err
			}
			if _, err := NormalizeTitle("cards.title", card.Title); err != nil {
				return err
			}
			if _, err := NormalizePriority(card.Priority); err != nil {
				return err
			}
			if err := ValidateShares("cards.sharedWith", card.UserID, card.SharedWith); err != nil {
				return err
			}
		}
	}
	return nil
}
