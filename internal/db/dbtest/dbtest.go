// Package dbtest opens isolated in-memory databases for tests.
package dbtest

import (
	"sync/atomic"
	"testing"
	"time"

	"inpstories/internal/db"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Epoch is the first timestamp handed out by the fake clock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Open returns a migrated sqlite database private to t. Every timestamp gorm
// assigns is one second after the previous one, so creation order is total.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	var tick int64
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return Epoch.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
