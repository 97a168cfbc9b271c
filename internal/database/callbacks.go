package database

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats sql.DBStats)
}

// RegisterMetricsCallbacks registers GORM callbacks that time every
// query/create/update/delete and report it to the recorder.
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) {
	register := func(operation string, before func(string, func(*gorm.DB)) error, after func(string, func(*gorm.DB)) error) {
		_ = before("metrics:"+operation+"_before", func(db *gorm.DB) {
			db.InstanceSet("query_start_time", time.Now())
		})
		_ = after("metrics:"+operation+"_after", func(db *gorm.DB) {
			startTime, ok := db.InstanceGet("query_start_time")
			if !ok {
				return
			}
			table := db.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), db.Error)
		})
	}

	register("select",
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Query().Before("gorm:query").Register(name, fn)
		},
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Query().After("gorm:query").Register(name, fn)
		})
	register("insert",
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Create().Before("gorm:create").Register(name, fn)
		},
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Create().After("gorm:create").Register(name, fn)
		})
	register("update",
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Update().Before("gorm:update").Register(name, fn)
		},
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Update().After("gorm:update").Register(name, fn)
		})
	register("delete",
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Delete().Before("gorm:delete").Register(name, fn)
		},
		func(name string, fn func(*gorm.DB)) error {
			return db.Callback().Delete().After("gorm:delete").Register(name, fn)
		})
}

// StartDBStatsCollector starts periodic connection pool stats collection.
// Closing the returned channel stops the collector.
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(15 * time.Second)
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
