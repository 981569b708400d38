package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/lock"
	"collab-board/internal/metrics"
	"collab-board/internal/response"
)

type boardFixture struct {
	owner, writer, reader, stranger uuid.UUID
	todoID, doneID, t1, t2          uuid.UUID
	board                           domain.Board
}

func newBoardFixture() boardFixture {
	f := boardFixture{
		owner: uuid.New(), writer: uuid.New(), reader: uuid.New(), stranger: uuid.New(),
		todoID: uuid.New(), doneID: uuid.New(), t1: uuid.New(), t2: uuid.New(),
	}
	f.board = domain.Board{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		UserID:    f.owner,
		Title:     "Roadmap",
		SharedWith: []domain.SharedUser{
			{UserID: f.writer, Permission: domain.PermissionWrite},
			{UserID: f.reader, Permission: domain.PermissionRead},
		},
		Columns: []domain.Column{
			{ID: f.todoID, UserID: f.owner, Title: "Todo", Color: "#aaaaaa", Cards: []domain.Card{
				{ID: f.t1, UserID: f.owner, Title: "t1", Priority: domain.PriorityMedium,
					SharedWith: []domain.SharedUser{{UserID: f.reader, Permission: domain.PermissionWrite}}},
				{ID: f.t2, UserID: f.owner, Title: "t2", Priority: domain.PriorityLow},
			}},
			{ID: f.doneID, UserID: f.owner, Title: "Done", Color: "#bbbbbb", Cards: []domain.Card{}},
		},
	}
	f.board.Normalize()
	return f
}

func ctxFor(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), "user_id", userID)
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
}

func newTestBoardService(repo *MockBoardRepository, pub *MockPublisher) BoardService {
	if pub == nil {
		pub = &MockPublisher{}
	}
	return NewBoardService(repo, lock.NewLocalLocker(time.Second, nil), pub, testMetrics(), zap.NewNop())
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestBoardService_CreateBoard(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name        string
		ctx         context.Context
		req         *dto.CreateBoardRequest
		mockBoard   func(*MockBoardRepository)
		wantErr     bool
		wantErrCode string
		wantOrder   int
	}{
		{
			name: "성공: 보드 생성 시 목록 끝에 배치",
			ctx:  ctxFor(userID),
			req:  &dto.CreateBoardRequest{Title: "  Sprint  ", Description: "desc"},
			mockBoard: func(m *MockBoardRepository) {
				m.FindOwnedFunc = func(ctx context.Context, id uuid.UUID) ([]*domain.Board, error) {
					return []*domain.Board{{}, {}}, nil
				}
				m.CreateFunc = func(ctx context.Context, board *domain.Board) error {
					board.ID = uuid.New()
					return nil
				}
			},
			wantOrder: 2,
		},
		{
			name:        "실패: Context에 user_id가 없음",
			ctx:         context.Background(),
			req:         &dto.CreateBoardRequest{Title: "Sprint"},
			mockBoard:   func(m *MockBoardRepository) {},
			wantErr:     true,
			wantErrCode: response.ErrCodeUnauthorized,
		},
		{
			name:        "실패: 공백 제목",
			ctx:         ctxFor(userID),
			req:         &dto.CreateBoardRequest{Title: "   "},
			mockBoard:   func(m *MockBoardRepository) {},
			wantErr:     true,
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name: "실패: 저장소 오류",
			ctx:  ctxFor(userID),
			req:  &dto.CreateBoardRequest{Title: "Sprint"},
			mockBoard: func(m *MockBoardRepository) {
				m.CreateFunc = func(ctx context.Context, board *domain.Board) error {
					return errors.New("db down")
				}
			},
			wantErr:     true,
			wantErrCode: response.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			repo := &MockBoardRepository{}
			tt.mockBoard(repo)
			svc := newTestBoardService(repo, &MockPublisher{})

			// When
			got, err := svc.CreateBoard(tt.ctx, tt.req)

			// Then
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrCode, appCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Sprint", got.Title)
			assert.Equal(t, userID, got.UserID)
			assert.Equal(t, tt.wantOrder, got.Order)
			assert.NotNil(t, got.Columns)
			assert.NotNil(t, got.SharedWith)
		})
	}
}

func TestBoardService_GetBoard(t *testing.T) {
	f := newBoardFixture()
	mem := newMemoryBoards(f.board)
	svc := newTestBoardService(mem.repo(), &MockPublisher{})

	tests := []struct {
		name     string
		actor    uuid.UUID
		boardID  uuid.UUID
		wantCode string
	}{
		{"성공: 소유자", f.owner, f.board.ID, ""},
		{"성공: 읽기 공유 사용자는 전체 트리를 받음", f.reader, f.board.ID, ""},
		{"실패: 권한 없는 사용자", f.stranger, f.board.ID, response.ErrCodeForbidden},
		{"실패: 존재하지 않는 보드", f.owner, uuid.New(), response.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetBoard(ctxFor(tt.actor), tt.boardID)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, appCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Columns, 2)
			assert.Len(t, got.Columns[0].Cards, 2)
		})
	}
}

func TestBoardService_ListBoards(t *testing.T) {
	userID := uuid.New()
	repo := &MockBoardRepository{
		FindAccessibleFunc: func(ctx context.Context, id uuid.UUID) ([]*domain.Board, error) {
			assert.Equal(t, userID, id)
			return []*domain.Board{{UserID: userID, Title: "a"}, {UserID: uuid.New(), Title: "b"}}, nil
		},
	}

	got, err := newTestBoardService(repo, nil).ListBoards(ctxFor(userID))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
}

func TestBoardService_UpdateBoard_Columns(t *testing.T) {
	tests := []struct {
		name     string
		actor    func(f boardFixture) uuid.UUID
		mutate   func(f boardFixture, cols []domain.Column) []domain.Column
		wantCode string
		verify   func(t *testing.T, f boardFixture, saved domain.Board)
	}{
		{
			name:  "성공: 소유자가 t1을 Done 맨 앞으로 이동",
			actor: func(f boardFixture) uuid.UUID { return f.owner },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				card := cols[0].Cards[0]
				cols[0].Cards = cols[0].Cards[1:]
				cols[1].Cards = append([]domain.Card{card}, cols[1].Cards...)
				return cols
			},
			verify: func(t *testing.T, f boardFixture, saved domain.Board) {
				require.Len(t, saved.Columns[1].Cards, 1)
				moved := saved.Columns[1].Cards[0]
				assert.Equal(t, f.t1, moved.ID)
				assert.Equal(t, f.doneID, moved.ColumnID)
				assert.Equal(t, 0, moved.Order)
				assert.Equal(t, 0, saved.Columns[0].Cards[0].Order)
			},
		},
		{
			name:  "성공: 쓰기 공유 사용자가 소유자 없는 새 카드 추가",
			actor: func(f boardFixture) uuid.UUID { return f.writer },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				cols[1].Cards = append(cols[1].Cards, domain.Card{ID: uuid.New(), Title: "new"})
				return cols
			},
			verify: func(t *testing.T, f boardFixture, saved domain.Board) {
				added := saved.Columns[1].Cards[0]
				assert.Equal(t, f.writer, added.UserID)
				assert.Equal(t, domain.PriorityMedium, added.Priority)
				assert.False(t, added.CreatedAt.IsZero())
			},
		},
		{
			name:  "성공: 빈 배열은 모든 열 삭제",
			actor: func(f boardFixture) uuid.UUID { return f.owner },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				return []domain.Column{}
			},
			verify: func(t *testing.T, f boardFixture, saved domain.Board) {
				assert.Empty(t, saved.Columns)
			},
		},
		{
			name:  "성공: 읽기 사용자가 write 공유된 카드 제목 수정",
			actor: func(f boardFixture) uuid.UUID { return f.reader },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				cols[0].Cards[0].Title = "edited"
				return cols
			},
			verify: func(t *testing.T, f boardFixture, saved domain.Board) {
				assert.Equal(t, "edited", saved.Columns[0].Cards[0].Title)
			},
		},
		{
			name:  "실패: 읽기 사용자는 카드를 이동할 수 없음",
			actor: func(f boardFixture) uuid.UUID { return f.reader },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				cols[0].Cards[0], cols[0].Cards[1] = cols[0].Cards[1], cols[0].Cards[0]
				return cols
			},
			wantCode: response.ErrCodeForbidden,
		},
		{
			name:  "실패: 열 ID 중복",
			actor: func(f boardFixture) uuid.UUID { return f.owner },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				return append(cols, cols[0])
			},
			wantCode: response.ErrCodeValidation,
		},
		{
			name:  "실패: 잘못된 우선순위",
			actor: func(f boardFixture) uuid.UUID { return f.owner },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				cols[0].Cards[0].Priority = "someday"
				return cols
			},
			wantCode: response.ErrCodeValidation,
		},
		{
			name:  "실패: 권한 없는 사용자",
			actor: func(f boardFixture) uuid.UUID { return f.stranger },
			mutate: func(f boardFixture, cols []domain.Column) []domain.Column {
				return cols
			},
			wantCode: response.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			f := newBoardFixture()
			mem := newMemoryBoards(f.board)
			pub := &MockPublisher{}
			svc := newTestBoardService(mem.repo(), pub)
			next := tt.mutate(f, domain.CloneColumns(f.board.Columns))

			// When
			got, err := svc.UpdateBoard(ctxFor(tt.actor(f)), f.board.ID, &dto.UpdateBoardRequest{Columns: &next})

			// Then
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, appCode(t, err))
				assert.Equal(t, 0, mem.saveCount())
				assert.Empty(t, pub.published())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			tt.verify(t, f, mem.get(f.board.ID))

			events := pub.published()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventBoardUpdated, events[0].Type)
			assert.Equal(t, tt.actor(f), events[0].ActorID)
		})
	}
}

func TestBoardService_UpdateBoard_Fields(t *testing.T) {
	f := newBoardFixture()
	title := "Renamed"
	order := 3

	t.Run("성공: 쓰기 사용자가 제목 변경", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		got, err := newTestBoardService(mem.repo(), nil).UpdateBoard(ctxFor(f.writer), f.board.ID, &dto.UpdateBoardRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Len(t, mem.get(f.board.ID).Columns, 2)
	})

	t.Run("실패: 읽기 사용자가 제목 변경", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		_, err := newTestBoardService(mem.repo(), nil).UpdateBoard(ctxFor(f.reader), f.board.ID, &dto.UpdateBoardRequest{Title: &title})
		assert.Equal(t, response.ErrCodeForbidden, appCode(t, err))
	})

	t.Run("성공: 소유자가 순서 변경", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		got, err := newTestBoardService(mem.repo(), nil).UpdateBoard(ctxFor(f.owner), f.board.ID, &dto.UpdateBoardRequest{Order: &order})
		require.NoError(t, err)
		assert.Equal(t, 3, got.Order)
	})

	t.Run("실패: 소유자가 아닌 사용자가 순서 변경", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		_, err := newTestBoardService(mem.repo(), nil).UpdateBoard(ctxFor(f.writer), f.board.ID, &dto.UpdateBoardRequest{Order: &order})
		assert.Equal(t, response.ErrCodeForbidden, appCode(t, err))
	})

	t.Run("실패: 존재하지 않는 보드", func(t *testing.T) {
		mem := newMemoryBoards()
		_, err := newTestBoardService(mem.repo(), nil).UpdateBoard(ctxFor(f.owner), uuid.New(), &dto.UpdateBoardRequest{Title: &title})
		assert.Equal(t, response.ErrCodeNotFound, appCode(t, err))
	})
}

func TestBoardService_UpdateBoard_BusyBoard(t *testing.T) {
	f := newBoardFixture()
	mem := newMemoryBoards(f.board)
	locker := lock.NewLocalLocker(20*time.Millisecond, nil)
	svc := NewBoardService(mem.repo(), locker, nil, testMetrics(), zap.NewNop())

	release, err := locker.Lock(context.Background(), boardLockKey(f.board.ID))
	require.NoError(t, err)
	defer release()

	title := "x"
	_, err = svc.UpdateBoard(ctxFor(f.owner), f.board.ID, &dto.UpdateBoardRequest{Title: &title})

	assert.Equal(t, response.ErrCodeConflict, appCode(t, err))
}

func TestBoardService_DeleteBoard(t *testing.T) {
	f := newBoardFixture()

	t.Run("성공: 소유자가 삭제하면 삭제 이벤트 발행", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		pub := &MockPublisher{}
		require.NoError(t, newTestBoardService(mem.repo(), pub).DeleteBoard(ctxFor(f.owner), f.board.ID))

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventBoardDeleted, events[0].Type)
		assert.Equal(t, f.board.ID, events[0].BoardID)
	})

	t.Run("실패: 쓰기 공유 사용자는 삭제할 수 없음", func(t *testing.T) {
		mem := newMemoryBoards(f.board)
		err := newTestBoardService(mem.repo(), nil).DeleteBoard(ctxFor(f.writer), f.board.ID)
		assert.Equal(t, response.ErrCodeForbidden, appCode(t, err))
	})

	t.Run("실패: 존재하지 않는 보드", func(t *testing.T) {
		err := newTestBoardService(newMemoryBoards().repo(), nil).DeleteBoard(ctxFor(f.owner), uuid.New())
		assert.Equal(t, response.ErrCodeNotFound, appCode(t, err))
	})
}

func TestBoardService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newBoardFixture()
	mem := newMemoryBoards(f.board)
	pub := &MockPublisher{Err: errors.New("redis down")}
	title := "ok"

	got, err := newTestBoardService(mem.repo(), pub).UpdateBoard(ctxFor(f.owner), f.board.ID, &dto.UpdateBoardRequest{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Title)
	assert.Equal(t, "ok", mem.get(f.board.ID).Title)
}
