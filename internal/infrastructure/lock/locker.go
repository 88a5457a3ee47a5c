// Package lock 物料级串行化
//
// 同一物料的分配、挂批、撤回必须串行执行,否则两个并发的FIFO分配可能读到同一批次余量。
// 数据库行锁只覆盖已存在的行,物料锁覆盖"读取全部在库批次再决定"的整个过程。
package lock

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// Locker 按key互斥
type Locker interface {
	// Acquire 按升序依次获取全部key,任一失败时释放已获取的锁
	// 返回的release可重复调用
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// MaterialKey 物料锁key
func MaterialKey(materialID uint) string {
	return fmt.Sprintf("%d", materialID)
}

// MaterialKeys 去重后的物料锁key
func MaterialKeys(materialIDs ...uint) []string {
	seen := make(map[uint]struct{}, len(materialIDs))
	keys := make([]string, 0, len(materialIDs))
	for _, id := range materialIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, MaterialKey(id))
	}
	return keys
}

// normalize 去重并排序,保证多把锁的获取顺序一致,避免死锁
// 先比长度再比字典序,物料ID的key即按数值升序
func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// releaseAll 逆序释放
func releaseAll(releases []func()) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}

// New 按配置创建Locker
// redis模式需要传入RedisClient,local模式忽略client和log
func New(cfg config.LockConfig, client RedisClient, log logrus.FieldLogger) (Locker, error) {
	switch cfg.Mode {
	case config.LockModeRedis:
		if client == nil {
			return nil, apperrors.ErrLockFailed.WithDetail("redis锁模式缺少Redis客户端")
		}
		return NewRedisLocker(client, cfg, log), nil
	default:
		return NewLocalLocker(), nil
	}
}
