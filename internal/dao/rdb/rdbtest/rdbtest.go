// Package rdbtest 为测试提供独立的内存 SQLite 数据库
package rdbtest

import (
	"testing"

	"family_hub_server/internal/dao/rdb"
	"family_hub_server/internal/dao/rdb/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 返回迁移完成的 Repository 聚合，测试结束时自动关闭连接
// 单连接保证同一个 :memory: 库在整个测试内可见
func Open(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := rdb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewRepositories(db)
}
