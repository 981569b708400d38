// Package store holds the client-side board state and applies mutations
// optimistically: local state changes before the remote write is issued and
// is reconciled if the write fails.
//
// Structural mutations (columns and cards) send the whole columns array and
// re-fetch the board on failure. Entity mutations (boards, labels, shares)
// send one entity and undo only that entity on failure.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/permission"
)

// ErrNoBoard is returned by structural mutations when no board is open.
var ErrNoBoard = errors.New("no board is open")

// Store owns the board list, the open board, labels, users, the drag-over
// highlight and a single error slot.
type Store struct {
	remote Remote
	actor  uuid.UUID
	logger *zap.Logger

	mu       sync.Mutex
	boards   []domain.Board
	current  *domain.Board
	labels   []domain.Label
	users    []domain.User
	dragOver uuid.UUID
	err      error
	version  uint64

	// structural writes in flight per board
	inflight map[uuid.UUID]int
	// closed when the most recently queued structural write settles
	tail chan struct{}
}

// New creates an empty store acting on behalf of actor.
func New(remote Remote, actor uuid.UUID, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		remote:   remote,
		actor:    actor,
		logger:   logger,
		boards:   []domain.Board{},
		labels:   []domain.Label{},
		users:    []domain.User{},
		inflight: make(map[uuid.UUID]int),
	}
}

// Actor returns the user the store acts for.
func (s *Store) Actor() uuid.UUID {
	return s.actor
}

// Boards returns a copy of the board list in display order.
func (s *Store) Boards() []domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Board, len(s.boards))
	for i, b := range s.boards {
		out[i] = b.Clone()
	}
	return out
}

// CurrentBoard returns a copy of the open board, or nil.
func (s *Store) CurrentBoard() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	b := s.current.Clone()
	return &b
}

// VisibleColumns returns the open board's columns and cards the actor may see.
func (s *Store) VisibleColumns() []domain.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return []domain.Column{}
	}
	return permission.VisibleColumns(*s.current, s.actor)
}

// Labels returns a copy of the actor's labels.
func (s *Store) Labels() []domain.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Label, len(s.labels))
	copy(out, s.labels)
	return out
}

// Users returns a copy of the users the actor can share with.
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// Version increases on every state change.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Err returns the most recent failure, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError resets the error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		s.err = nil
		s.version++
	}
}

// LoadBoards replaces the board list with the boards the actor can see.
func (s *Store) LoadBoards(ctx context.Context) error {
	boards, err := s.remote.FetchBoardsForUser(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(fmt.Errorf("load boards: %w", err))
	}
	s.boards = make([]domain.Board, len(boards))
	for i, b := range boards {
		b.Normalize()
		s.boards[i] = b
	}
	s.version++
	return nil
}

// OpenBoard fetches a board and makes it current.
func (s *Store) OpenBoard(ctx context.Context, id uuid.UUID) error {
	board, err := s.remote.FetchBoard(ctx, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(fmt.Errorf("open board %s: %w", id, err))
	}
	board.Normalize()
	s.current = board
	s.dragOver = uuid.Nil
	s.upsertBoardLocked(*board)
	s.version++
	return nil
}

// CloseBoard drops the current board.
func (s *Store) CloseBoard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.dragOver = uuid.Nil
	s.version++
}

// LoadLabels replaces the label list.
func (s *Store) LoadLabels(ctx context.Context) error {
	labels, err := s.remote.ListLabels(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(fmt.Errorf("load labels: %w", err))
	}
	s.labels = append([]domain.Label{}, labels...)
	s.version++
	return nil
}

// LoadUsers replaces the user list.
func (s *Store) LoadUsers(ctx context.Context) error {
	users, err := s.remote.ListUsers(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(fmt.Errorf("load users: %w", err))
	}
	s.users = append([]domain.User{}, users...)
	s.version++
	return nil
}

// failLocked records err in the error slot and returns it.
func (s *Store) failLocked(err error) error {
	s.err = err
	s.version++
	s.logger.Warn("Board store operation failed", zap.Error(err))
	return err
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failLocked(err)
}

// upsertBoardLocked replaces the list entry with b's id or appends it.
func (s *Store) upsertBoardLocked(b domain.Board) {
	for i := range s.boards {
		if s.boards[i].ID == b.ID {
			s.boards[i] = b.Clone()
			return
		}
	}
	s.boards = append(s.boards, b.Clone())
}

func (s *Store) boardIndexLocked(id uuid.UUID) int {
	for i := range s.boards {
		if s.boards[i].ID == id {
			return i
		}
	}
	return -1
}

// dropBoardLocked forgets a board that no longer exists remotely.
func (s *Store) dropBoardLocked(id uuid.UUID) {
	if i := s.boardIndexLocked(id); i >= 0 {
		s.boards = append(s.boards[:i:i], s.boards[i+1:]...)
	}
	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.dragOver = uuid.Nil
	}
}

// lookupBoardLocked returns the open board when it has id, else the list entry.
func (s *Store) lookupBoardLocked(id uuid.UUID) (domain.Board, bool) {
	if s.current != nil && s.current.ID == id {
		return *s.current, true
	}
	if i := s.boardIndexLocked(id); i >= 0 {
		return s.boards[i], true
	}
	return domain.Board{}, false
}
