package database

import (
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats interface{})
}

const startTimeKey = "metrics:start_time"

// RegisterMetricsCallbacks times every select, insert, update and delete and
// reports it to recorder with the statement's table.
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"select",
			func(n string, fn func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, fn) }},
		{"insert",
			func(n string, fn func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, fn) }},
		{"update",
			func(n string, fn func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, fn) }},
		{"delete",
			func(n string, fn func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, fn) },
			func(n string, fn func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, fn) }},
	}

	for _, h := range hooks {
		operation := h.operation
		if err := h.before("metrics:"+operation+"_before", func(tx *gorm.DB) {
			tx.InstanceSet(startTimeKey, time.Now())
		}); err != nil {
			return err
		}
		if err := h.after("metrics:"+operation+"_after", func(tx *gorm.DB) {
			start, ok := tx.InstanceGet(startTimeKey)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(start.(time.Time)), tx.Error)
		}); err != nil {
			return err
		}
	}
	return nil
}

// StartDBStatsCollector reports connection pool stats every interval until
// the returned channel is closed.
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-done:
				return
			}
		}
	}()

	return done
}
