package database

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"collab-board/internal/domain"
)

// mockMetricsRecorder is a mock implementation of MetricsRecorder for testing
type mockMetricsRecorder struct {
	mu      sync.Mutex
	queries []queryRecord
	dbStats []sql.DBStats
}

type queryRecord struct {
	operation string
	table     string
	err       error
}

func (m *mockMetricsRecorder) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, queryRecord{operation: operation, table: table, err: err})
}

func (m *mockMetricsRecorder) UpdateDBStats(stats interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dbStats, ok := stats.(sql.DBStats); ok {
		m.dbStats = append(m.dbStats, dbStats)
	}
}

func (m *mockMetricsRecorder) recorded(operation string) []queryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []queryRecord
	for _, q := range m.queries {
		if q.operation == operation {
			out = append(out, q)
		}
	}
	return out
}

func (m *mockMetricsRecorder) statsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dbStats)
}

// setupTestDB creates a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, AutoMigrate(db), "Failed to migrate")
	return db
}

func TestRegisterMetricsCallbacks(t *testing.T) {
	// Given
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	board := &domain.Board{UserID: uuid.New(), Title: "Roadmap"}

	// When
	require.NoError(t, db.Create(board).Error)
	var loaded domain.Board
	require.NoError(t, db.First(&loaded, "id = ?", board.ID).Error)
	require.NoError(t, db.Model(&loaded).Update("title", "Renamed").Error)
	require.NoError(t, db.Delete(&loaded).Error)

	// Then
	for _, op := range []string{"insert", "select", "update", "delete"} {
		got := recorder.recorded(op)
		if assert.NotEmpty(t, got, "operation %s", op) {
			assert.Equal(t, "boards", got[0].table)
			assert.NoError(t, got[0].err)
		}
	}
}

func TestRegisterMetricsCallbacks_RecordsErrors(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	var missing domain.Board
	err := db.First(&missing, "id = ?", uuid.New()).Error

	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	selects := recorder.recorded("select")
	require.NotEmpty(t, selects)
	assert.ErrorIs(t, selects[len(selects)-1].err, gorm.ErrRecordNotFound)
}

func TestStartDBStatsCollector(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}

	done := StartDBStatsCollector(db, recorder, 10*time.Millisecond)
	defer close(done)

	assert.Eventually(t, func() bool { return recorder.statsCalls() > 0 }, time.Second, 5*time.Millisecond)
}

func TestNew_SQLite(t *testing.T) {
	db, err := New(Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, IsConnected())
	assert.Same(t, db, GetDB())
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle"})
	assert.Error(t, err)
}
