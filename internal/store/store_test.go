package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/reorder"
)

type boardFixture struct {
	owner      uuid.UUID
	label      uuid.UUID
	c1, c2     uuid.UUID
	t1, t2, t3 uuid.UUID
	board      domain.Board
}

// newBoardFixture builds c1:[t1,t2] c2:[t3], with t1 carrying label.
func newBoardFixture() boardFixture {
	f := boardFixture{
		owner: uuid.New(), label: uuid.New(),
		c1: uuid.New(), c2: uuid.New(),
		t1: uuid.New(), t2: uuid.New(), t3: uuid.New(),
	}
	f.board = domain.Board{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		UserID:    f.owner,
		Title:     "Sprint",
		Columns: []domain.Column{
			{ID: f.c1, UserID: f.owner, Title: "c1", Color: "#111111", Cards: []domain.Card{
				{ID: f.t1, UserID: f.owner, Title: "t1", Labels: []uuid.UUID{f.label}},
				{ID: f.t2, UserID: f.owner, Title: "t2"},
			}},
			{ID: f.c2, UserID: f.owner, Title: "c2", Color: "#222222", Cards: []domain.Card{
				{ID: f.t3, UserID: f.owner, Title: "t3"},
			}},
		},
	}
	f.board.Normalize()
	return f
}

func (f boardFixture) fetch() func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
		b := f.board.Clone()
		return &b, nil
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func openStore(t *testing.T, f boardFixture, remote *MockRemote) *Store {
	t.Helper()
	if remote.FetchBoardFunc == nil {
		remote.FetchBoardFunc = f.fetch()
	}
	s := New(remote, f.owner, zap.NewNop())
	require.NoError(t, s.OpenBoard(context.Background(), f.board.ID))
	return s
}

func cardTitles(col domain.Column) []string {
	out := []string{}
	for _, c := range col.Cards {
		out = append(out, c.Title)
	}
	return out
}

func TestNew_EmptyState(t *testing.T) {
	s := New(&MockRemote{}, uuid.New(), zap.NewNop())

	assert.Empty(t, s.Boards())
	assert.Nil(t, s.CurrentBoard())
	assert.Empty(t, s.Labels())
	assert.NoError(t, s.Err())
}

func TestStore_MoveCardScenario(t *testing.T) {
	// Given
	f := newBoardFixture()
	var sent BoardPatch
	remote := &MockRemote{
		UpdateBoardFunc: func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
			sent = patch
			return nil, nil
		},
	}
	s := openStore(t, f, remote)

	// When
	p, err := s.MoveCard(context.Background(), f.t1, f.c1, f.c2, 0)

	// Then
	require.NoError(t, err)
	cur := s.CurrentBoard()
	assert.Equal(t, []string{"t2"}, cardTitles(cur.Columns[0]))
	assert.Equal(t, []string{"t1", "t3"}, cardTitles(cur.Columns[1]))
	moved := cur.Columns[1].Cards[0]
	assert.Equal(t, f.c2, moved.ColumnID)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, 1, cur.Columns[1].Cards[1].Order)
	assert.Equal(t, cur.Columns, p.Applied.Columns)

	require.NoError(t, p.Wait(waitCtx(t)))
	require.Len(t, sent.Columns, 2)
	assert.Equal(t, []string{"t1", "t3"}, cardTitles(sent.Columns[1]))
	assert.Nil(t, sent.Title)
}

func TestStore_MoveCardNotInSourceColumn(t *testing.T) {
	// Given
	f := newBoardFixture()
	remote := &MockRemote{}
	s := openStore(t, f, remote)
	before := s.CurrentBoard()
	version := s.Version()

	for _, cardID := range []uuid.UUID{uuid.New(), f.t3} {
		// When
		p, err := s.MoveCard(context.Background(), cardID, f.c1, f.c2, 0)

		// Then
		assert.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.NoError(t, s.Err())
	assert.Equal(t, version, s.Version())
	assert.Equal(t, before.Columns, s.CurrentBoard().Columns)
	assert.Zero(t, remote.CallCount("UpdateBoard"))
}

func TestStore_StructuralMutations(t *testing.T) {
	newTitle := "renamed"
	tests := []struct {
		name  string
		run   func(s *Store, f boardFixture) (*Pending[domain.Board], error)
		check func(t *testing.T, b *domain.Board, f boardFixture)
	}{
		{
			name: "성공: 열 생성",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.CreateColumn(context.Background(), "  Review  ", "")
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				require.Len(t, b.Columns, 3)
				col := b.Columns[2]
				assert.Equal(t, "Review", col.Title)
				assert.Equal(t, DefaultColumnColor, col.Color)
				assert.Equal(t, f.owner, col.UserID)
				assert.Equal(t, 2, col.Order)
			},
		},
		{
			name: "성공: 열 수정",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.UpdateColumn(context.Background(), f.c2, ColumnUpdate{Title: &newTitle})
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				assert.Equal(t, "renamed", b.Columns[1].Title)
			},
		},
		{
			name: "성공: 열 삭제 시 카드도 함께 삭제",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.DeleteColumn(context.Background(), f.c1)
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				require.Len(t, b.Columns, 1)
				assert.Equal(t, f.c2, b.Columns[0].ID)
				assert.Equal(t, 0, b.Columns[0].Order)
				assert.Equal(t, 1, b.CardCount())
			},
		},
		{
			name: "성공: 카드 생성",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.CreateCard(context.Background(), f.c2, CardInput{Title: "t4", Labels: []uuid.UUID{f.label, f.label}})
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				require.Len(t, b.Columns[1].Cards, 2)
				card := b.Columns[1].Cards[1]
				assert.Equal(t, "t4", card.Title)
				assert.Equal(t, domain.PriorityMedium, card.Priority)
				assert.Equal(t, []uuid.UUID{f.label}, card.Labels)
				assert.Equal(t, 1, card.Order)
			},
		},
		{
			name: "성공: 카드 수정",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				high := domain.PriorityHigh
				return s.UpdateCard(context.Background(), f.t2, CardUpdate{Title: &newTitle, Priority: &high})
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				card := b.Columns[0].Cards[1]
				assert.Equal(t, "renamed", card.Title)
				assert.Equal(t, domain.PriorityHigh, card.Priority)
			},
		},
		{
			name: "성공: 카드 삭제",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.DeleteCard(context.Background(), f.t1)
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				assert.Equal(t, []string{"t2"}, cardTitles(b.Columns[0]))
				assert.Equal(t, 0, b.Columns[0].Cards[0].Order)
			},
		},
		{
			name: "성공: 열 이동",
			run: func(s *Store, f boardFixture) (*Pending[domain.Board], error) {
				return s.MoveColumn(context.Background(), f.c2, 0)
			},
			check: func(t *testing.T, b *domain.Board, f boardFixture) {
				assert.Equal(t, f.c2, b.Columns[0].ID)
				assert.Equal(t, 0, b.Columns[0].Order)
				assert.Equal(t, 1, b.Columns[1].Order)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			f := newBoardFixture()
			remote := &MockRemote{}
			s := openStore(t, f, remote)
			before := s.Version()

			// When
			p, err := tt.run(s, f)

			// Then
			require.NoError(t, err)
			tt.check(t, s.CurrentBoard(), f)
			assert.Greater(t, s.Version(), before)
			require.NoError(t, p.Wait(waitCtx(t)))
			assert.Equal(t, 1, remote.CallCount("UpdateBoard"))
			assert.NoError(t, s.Err())
		})
	}
}

func TestStore_RejectedLocally(t *testing.T) {
	blank := "   "
	tests := []struct {
		name    string
		run     func(s *Store, f boardFixture) error
		wantErr error
	}{
		{
			name: "실패: 빈 열 제목",
			run: func(s *Store, f boardFixture) error {
				_, err := s.CreateColumn(context.Background(), blank, "")
				return err
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "실패: 잘못된 색상",
			run: func(s *Store, f boardFixture) error {
				_, err := s.CreateColumn(context.Background(), "x", "red")
				return err
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "실패: 잘못된 우선순위",
			run: func(s *Store, f boardFixture) error {
				p := domain.Priority("someday")
				_, err := s.UpdateCard(context.Background(), f.t1, CardUpdate{Priority: &p})
				return err
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBoardFixture()
			remote := &MockRemote{}
			s := openStore(t, f, remote)

			err := tt.run(s, f)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, s.Err(), tt.wantErr)
			assert.Equal(t, f.board.Columns, s.CurrentBoard().Columns)
			assert.Zero(t, remote.CallCount("UpdateBoard"))
		})
	}
}

func TestStore_NoBoardOpen(t *testing.T) {
	s := New(&MockRemote{}, uuid.New(), zap.NewNop())

	_, err := s.CreateColumn(context.Background(), "x", "")

	assert.ErrorIs(t, err, ErrNoBoard)
}

func TestStore_ReadOnlyActorCannotRestructure(t *testing.T) {
	f := newBoardFixture()
	reader := uuid.New()
	f.board.SharedWith = []domain.SharedUser{{UserID: reader, Permission: domain.PermissionRead}}
	remote := &MockRemote{FetchBoardFunc: f.fetch()}
	s := New(remote, reader, zap.NewNop())
	require.NoError(t, s.OpenBoard(context.Background(), f.board.ID))

	_, err := s.MoveColumn(context.Background(), f.c2, 0)

	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Zero(t, remote.CallCount("UpdateBoard"))
}

func TestStore_RollbackOnStructuralFailure(t *testing.T) {
	// Given
	f := newBoardFixture()
	authoritative := f.board.Clone()
	authoritative.Columns[0].Title = "server"
	remote := &MockRemote{
		UpdateBoardFunc: func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
			return nil, domain.ErrRemoteFailure
		},
	}
	s := openStore(t, f, remote)
	remote.FetchBoardFunc = func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
		b := authoritative.Clone()
		return &b, nil
	}

	// When
	p, err := s.MoveCard(context.Background(), f.t1, f.c1, f.c2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, cardTitles(s.CurrentBoard().Columns[1]))
	waitErr := p.Wait(waitCtx(t))

	// Then
	assert.ErrorIs(t, waitErr, domain.ErrRemoteFailure)
	assert.ErrorIs(t, s.Err(), domain.ErrRemoteFailure)
	assert.Equal(t, authoritative.Columns, s.CurrentBoard().Columns)
	assert.Equal(t, 2, remote.CallCount("FetchBoard"))
	_, ok := p.Confirmed()
	assert.False(t, ok)

	s.ClearError()
	assert.NoError(t, s.Err())
}

func TestStore_RollbackDropsDeletedBoard(t *testing.T) {
	f := newBoardFixture()
	remote := &MockRemote{
		UpdateBoardFunc: func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
			return nil, domain.ErrNotFound
		},
	}
	s := openStore(t, f, remote)
	remote.FetchBoardFunc = func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
		return nil, domain.ErrNotFound
	}

	p, err := s.DeleteCard(context.Background(), f.t2)
	require.NoError(t, err)
	require.Error(t, p.Wait(waitCtx(t)))

	assert.Nil(t, s.CurrentBoard())
	assert.Empty(t, s.Boards())
}

func TestStore_ConfirmedBoardReplacesLocal(t *testing.T) {
	f := newBoardFixture()
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	remote := &MockRemote{
		UpdateBoardFunc: func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
			b := f.board.Clone()
			b.Columns = patch.Columns
			b.UpdatedAt = stamp
			return &b, nil
		},
	}
	s := openStore(t, f, remote)

	p, err := s.CreateColumn(context.Background(), "Later", "#abc")
	require.NoError(t, err)
	require.NoError(t, p.Wait(waitCtx(t)))

	confirmed, ok := p.Confirmed()
	require.True(t, ok)
	assert.Equal(t, stamp, confirmed.UpdatedAt)
	assert.Equal(t, stamp, s.CurrentBoard().UpdatedAt)
	assert.Len(t, s.CurrentBoard().Columns, 3)
}

func TestStore_StructuralWritesAreSerialized(t *testing.T) {
	// Given
	f := newBoardFixture()
	release := make(chan struct{})
	var mu sync.Mutex
	var sizes []int
	remote := &MockRemote{
		UpdateBoardFunc: func(ctx context.Context, id uuid.UUID, patch BoardPatch) (*domain.Board, error) {
			mu.Lock()
			sizes = append(sizes, len(patch.Columns))
			first := len(sizes) == 1
			mu.Unlock()
			if first {
				<-release
			}
			return nil, nil
		},
	}
	s := openStore(t, f, remote)

	// When
	p1, err := s.CreateColumn(context.Background(), "third", "")
	require.NoError(t, err)
	p2, err := s.CreateColumn(context.Background(), "fourth", "")
	require.NoError(t, err)

	// Then
	assert.Len(t, s.CurrentBoard().Columns, 4)
	assert.Never(t, func() bool {
		return remote.CallCount("UpdateBoard") > 1
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	require.NoError(t, p1.Wait(waitCtx(t)))
	require.NoError(t, p2.Wait(waitCtx(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{3, 4}, sizes)
}

func TestStore_ErrorSlotKeepsLatestFailure(t *testing.T) {
	f := newBoardFixture()
	s := openStore(t, f, &MockRemote{})

	_, first := s.CreateColumn(context.Background(), "", "")
	_, second := s.DeleteCard(context.Background(), uuid.New())

	require.Error(t, first)
	assert.Equal(t, second, s.Err())
}

func TestStore_DropCard(t *testing.T) {
	f := newBoardFixture()
	remote := &MockRemote{}
	s := openStore(t, f, remote)

	s.DragOver(&reorder.Target{Kind: reorder.OverCard, ID: f.t3})
	assert.Equal(t, f.c2, s.DragOverColumn())

	p, outcome, err := s.DropCard(context.Background(), reorder.DragEnd{
		ActiveID: f.t1,
		Over:     &reorder.Target{Kind: reorder.OverCard, ID: f.t2},
	})

	require.NoError(t, err)
	assert.Equal(t, reorder.Moved, outcome)
	assert.Equal(t, uuid.Nil, s.DragOverColumn())
	assert.Equal(t, []string{"t2", "t1"}, cardTitles(s.CurrentBoard().Columns[0]))
	require.NoError(t, p.Wait(waitCtx(t)))

	p, outcome, err = s.DropCard(context.Background(), reorder.DragEnd{ActiveID: f.t1})
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, reorder.Cancelled, outcome)
}

func TestStore_DropColumn(t *testing.T) {
	f := newBoardFixture()
	s := openStore(t, f, &MockRemote{})

	p, outcome, err := s.DropColumn(context.Background(), reorder.DragEnd{
		ActiveID: f.c1,
		Over:     &reorder.Target{Kind: reorder.OverColumn, ID: f.c2},
	})

	require.NoError(t, err)
	assert.Equal(t, reorder.Moved, outcome)
	assert.Equal(t, f.c2, s.CurrentBoard().Columns[0].ID)
	require.NoError(t, p.Wait(waitCtx(t)))
}

func TestStore_VisibleColumns(t *testing.T) {
	f := newBoardFixture()
	guest := uuid.New()
	f.board.SharedWith = []domain.SharedUser{{UserID: guest, Permission: domain.PermissionWrite}}
	f.board.Columns[1].SharedWith = []domain.SharedUser{{UserID: guest, Permission: domain.PermissionRead}}
	f.board.Columns[1].Cards[0].SharedWith = []domain.SharedUser{{UserID: guest, Permission: domain.PermissionRead}}
	remote := &MockRemote{FetchBoardFunc: f.fetch()}
	s := New(remote, guest, zap.NewNop())
	require.NoError(t, s.OpenBoard(context.Background(), f.board.ID))

	visible := s.VisibleColumns()

	require.Len(t, visible, 1)
	assert.Equal(t, f.c2, visible[0].ID)
	assert.Equal(t, []string{"t3"}, cardTitles(visible[0]))
}

func TestStore_LoadFailuresSetError(t *testing.T) {
	remote := &MockRemote{
		FetchBoardsForUserFunc: func(ctx context.Context) ([]domain.Board, error) {
			return nil, errors.New("boom")
		},
	}
	s := New(remote, uuid.New(), zap.NewNop())

	err := s.LoadBoards(context.Background())

	assert.Error(t, err)
	assert.Equal(t, err, s.Err())
	assert.Error(t, s.OpenBoard(context.Background(), uuid.New()))
}

func TestStore_LoadLabelsAndUsers(t *testing.T) {
	label := domain.Label{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "bug", Color: "#f00"}
	user := domain.User{ID: uuid.New(), Name: "Dana"}
	remote := &MockRemote{
		ListLabelsFunc: func(ctx context.Context) ([]domain.Label, error) { return []domain.Label{label}, nil },
		ListUsersFunc:  func(ctx context.Context) ([]domain.User, error) { return []domain.User{user}, nil },
	}
	s := New(remote, uuid.New(), zap.NewNop())

	require.NoError(t, s.LoadLabels(context.Background()))
	require.NoError(t, s.LoadUsers(context.Background()))

	assert.Equal(t, []domain.Label{label}, s.Labels())
	assert.Equal(t, []domain.User{user}, s.Users())
}

func TestStore_CloseBoard(t *testing.T) {
	f := newBoardFixture()
	s := openStore(t, f, &MockRemote{})
	require.Len(t, s.Boards(), 1)

	s.CloseBoard()

	assert.Nil(t, s.CurrentBoard())
	assert.Len(t, s.Boards(), 1)
	assert.Empty(t, s.VisibleColumns())
}
