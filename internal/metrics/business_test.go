package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestIncrementBoardCreated(t *testing.T) {
	m := getTestMetrics()
	initial := getCounterValue(t, m.BoardCreatedTotal)

	m.IncrementBoardCreated()
	m.IncrementBoardCreated()

	assert.Equal(t, initial+2, getCounterValue(t, m.BoardCreatedTotal))
}

func TestRecordStructuralUpdate(t *testing.T) {
	m := getTestMetrics()

	m.RecordStructuralUpdate("applied")
	m.RecordStructuralUpdate("applied")
	m.RecordStructuralUpdate("denied")

	assert.Equal(t, 2.0, getCounterValue(t, m.StructuralUpdatesTotal.WithLabelValues("applied")))
	assert.Equal(t, 1.0, getCounterValue(t, m.StructuralUpdatesTotal.WithLabelValues("denied")))
	assert.Equal(t, 0.0, getCounterValue(t, m.StructuralUpdatesTotal.WithLabelValues("invalid")))
}

func TestRecordShareChange(t *testing.T) {
	m := getTestMetrics()

	m.RecordShareChange("board", "share")
	m.RecordShareChange("card", "unshare")

	assert.Equal(t, 1.0, getCounterValue(t, m.ShareChangesTotal.WithLabelValues("board", "share")))
	assert.Equal(t, 1.0, getCounterValue(t, m.ShareChangesTotal.WithLabelValues("card", "unshare")))
}

func TestLockAndArchiveCounters(t *testing.T) {
	m := getTestMetrics()

	m.IncrementLockContention()
	m.AddBoardsArchived(3)
	m.AddBoardsArchived(0)

	assert.Equal(t, 1.0, getCounterValue(t, m.LockContentionTotal))
	assert.Equal(t, 3.0, getCounterValue(t, m.BoardsArchivedTotal))
}

func TestGauges(t *testing.T) {
	m := getTestMetrics()

	tests := []struct {
		name  string
		count int64
	}{
		{"zero", 0},
		{"one", 1},
		{"many", 42},
		{"large number", 5000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetBoardsTotal(tt.count)
			m.SetLabelsTotal(tt.count)
			m.SetRealtimeConnections(int(tt.count))

			assert.Equal(t, float64(tt.count), getGaugeValue(t, m.BoardsTotal))
			assert.Equal(t, float64(tt.count), getGaugeValue(t, m.LabelsTotal))
			assert.Equal(t, float64(tt.count), getGaugeValue(t, m.RealtimeConnections))
		})
	}
}

func TestUpdateDBStats(t *testing.T) {
	m := getTestMetrics()

	m.UpdateDBStats(sql.DBStats{MaxOpenConnections: 25, OpenConnections: 10, InUse: 4, Idle: 6})
	m.UpdateDBStats("not stats")

	assert.Equal(t, 10.0, getGaugeValue(t, m.DBConnectionsOpen))
	assert.Equal(t, 4.0, getGaugeValue(t, m.DBConnectionsInUse))
	assert.Equal(t, 6.0, getGaugeValue(t, m.DBConnectionsIdle))
	assert.Equal(t, 25.0, getGaugeValue(t, m.DBConnectionsMax))
}

func TestUpdateDBStats_WaitCountersGrowByDelta(t *testing.T) {
	m := getTestMetrics()

	m.UpdateDBStats(sql.DBStats{WaitCount: 3, WaitDuration: 2 * time.Second})
	m.UpdateDBStats(sql.DBStats{WaitCount: 5, WaitDuration: 3 * time.Second})
	m.UpdateDBStats(sql.DBStats{WaitCount: 5, WaitDuration: 3 * time.Second})

	assert.Equal(t, 5.0, getCounterValue(t, m.DBConnectionWaitTotal))
	assert.Equal(t, 3.0, getCounterValue(t, m.DBConnectionWaitDuration))
}

func TestRecordDBQuery_NotFoundIsNotAnError(t *testing.T) {
	m := getTestMetrics()

	m.RecordDBQuery("select", "boards", time.Millisecond, gorm.ErrRecordNotFound)
	m.RecordDBQuery("select", "", time.Millisecond, assert.AnError)

	assert.Equal(t, 0.0, getCounterValue(t, m.DBQueryErrors.WithLabelValues("select", "boards")))
	assert.Equal(t, 1.0, getCounterValue(t, m.DBQueryErrors.WithLabelValues("select", "unknown")))
}

func TestRecordDBQuery_NormalizesOperation(t *testing.T) {
	m := getTestMetrics()

	m.RecordDBQuery("UPDATE", "boards", time.Millisecond, assert.AnError)

	assert.Equal(t, 1.0, getCounterValue(t, m.DBQueryErrors.WithLabelValues("update", "boards")))
}

// Metric recording never takes down the caller.
func TestMetricOperationsDoNotPanic(t *testing.T) {
	logger := zap.NewNop()

	ops := map[string]func(*Metrics){
		"RecordHTTPRequest":      func(m *Metrics) { m.RecordHTTPRequest("GET", "/test", 200, time.Second) },
		"RecordDBQuery":          func(m *Metrics) { m.RecordDBQuery("select", "boards", time.Millisecond, nil) },
		"RecordExternalAPICall":  func(m *Metrics) { m.RecordExternalAPICall("/boards", "GET", 502, time.Second, nil) },
		"RecordStructuralUpdate": func(m *Metrics) { m.RecordStructuralUpdate("applied") },
		"RecordShareChange":      func(m *Metrics) { m.RecordShareChange("column", "share") },
		"RecordEventPublished":   func(m *Metrics) { m.RecordEventPublished("board.deleted") },
		"UpdateDBStats":          func(m *Metrics) { m.UpdateDBStats(sql.DBStats{OpenConnections: 1}) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			m := NewWithRegistry(prometheus.NewRegistry(), logger)
			assert.NotPanics(t, func() { op(m) })
		})
	}
}

func TestSafeExecuteWithPanic(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())

	assert.NotPanics(t, func() {
		m.safeExecute("test_panic", func() {
			panic("intentional panic for testing")
		})
	})
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementBoardCreated()
		m.RecordHTTPRequest("GET", "/test", 200, time.Second)
		m.AddBoardsArchived(1)
	})
}
