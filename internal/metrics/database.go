package metrics

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UpdateDBStats copies connection pool gauges from a sql.DBStats value.
// WaitCount and WaitDuration are cumulative in sql.DBStats, so only the growth
// since the previous sample is added to the counters.
func (m *Metrics) UpdateDBStats(statsInterface interface{}) {
	m.safeExecute("UpdateDBStats", func() {
		stats, ok := statsInterface.(sql.DBStats)
		if !ok {
			return
		}
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		m.poolMu.Lock()
		defer m.poolMu.Unlock()
		if stats.WaitCount >= m.lastWaitCount {
			m.DBConnectionWaitTotal.Add(float64(stats.WaitCount - m.lastWaitCount))
		}
		if stats.WaitDuration >= m.lastWaitDuration {
			m.DBConnectionWaitDuration.Add((stats.WaitDuration - m.lastWaitDuration).Seconds())
		}
		m.lastWaitCount = stats.WaitCount
		m.lastWaitDuration = stats.WaitDuration
	})
}

// RecordDBQuery observes a statement's duration by operation and table.
// A lookup that found no row is not counted as a query error.
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		if table == "" {
			table = "unknown"
		}
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
