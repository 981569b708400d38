package domain

import "github.com/google/uuid"

// SharePermission is the access granted by a sharing entry
type SharePermission string

const (
	PermissionRead  SharePermission = "read"
	PermissionWrite SharePermission = "write"
)

// Valid reports whether p is a known permission.
func (p SharePermission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// ShareLevel names the hierarchy level a sharing list is attached to
type ShareLevel string

const (
	LevelBoard  ShareLevel = "board"
	LevelColumn ShareLevel = "column"
	LevelCard   ShareLevel = "card"
)

// Valid reports whether l is a known level.
func (l ShareLevel) Valid() bool {
	return l == LevelBoard || l == LevelColumn || l == LevelCard
}

// EntityRef addresses a board, a column or a card. BoardID is always the
// owning board; ID equals BoardID for board-level references.
type EntityRef struct {
	Level   ShareLevel `json:"level"`
	BoardID uuid.UUID  `json:"boardId"`
	ID      uuid.UUID  `json:"id"`
}

// SharedUser grants a non-owner access to one entity
type SharedUser struct {
	UserID     uuid.UUID       `json:"userId"`
	Permission SharePermission `json:"permission"`
}

// FindShare returns the entry for userID, if any.
func FindShare(list []SharedUser, userID uuid.UUID) (SharedUser, bool) {
	for _, s := range list {
		if s.UserID == userID {
			return s, true
		}
	}
	return SharedUser{}, false
}

// WithShare returns a copy of list where userID holds perm. An existing entry
// keeps its position and has its permission overwritten.
func WithShare(list []SharedUser, userID uuid.UUID, perm SharePermission) []SharedUser {
	out := make([]SharedUser, 0, len(list)+1)
	found := false
	for _, s := range list {
		if s.UserID == userID {
			if found {
				continue
			}
			s.Permission = perm
			found = true
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, SharedUser{UserID: userID, Permission: perm})
	}
	return out
}

// WithoutShare returns a copy of list without userID. Removing an absent user
// returns an equal copy.
func WithoutShare(list []SharedUser, userID uuid.UUID) []SharedUser {
	out := make([]SharedUser, 0, len(list))
	for _, s := range list {
		if s.UserID != userID {
			out = append(out, s)
		}
	}
	return out
}

// DedupeShares keeps one entry per user at the position of its first
// occurrence, carrying the permission of its last occurrence.
func DedupeShares(list []SharedUser) []SharedUser {
	out := make([]SharedUser, 0, len(list))
	for _, s := range list {
		out = WithShare(out, s.UserID, s.Permission)
	}
	return out
}

func cloneShares(list []SharedUser) []SharedUser {
	out := make([]SharedUser, len(list))
	copy(out, list)
	return out
}
