// Package dbtest 测试用内存数据库
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database"
)

// New 打开已迁移的sqlite内存库,测试结束自动关闭
// 每次调用都是独立的库,测试之间互不影响
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	}, false)
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
