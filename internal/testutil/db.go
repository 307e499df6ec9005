// Package testutil 测试公用的数据库与 HTTP 辅助函数
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/ceb/pkg/database"
)

// NewDB 在临时目录创建已迁移的 sqlite 数据库
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "test.db")
	db, err := database.Open("sqlite", dsn, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close(db) })
	return db
}
