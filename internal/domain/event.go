package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a change published on a board's feed
type EventType string

const (
	EventBoardUpdated EventType = "board.updated"
	EventBoardShared  EventType = "board.shared"
	EventBoardDeleted EventType = "board.deleted"
)

// BoardEvent tells subscribers that a board changed and who changed it.
type BoardEvent struct {
	Type       EventType `json:"type"`
	BoardID    uuid.UUID `json:"boardId"`
	ActorID    uuid.UUID `json:"actorId"`
	Version    int64     `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
}
