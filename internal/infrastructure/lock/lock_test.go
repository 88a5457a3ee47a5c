package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

func TestMaterialKeys(t *testing.T) {
	assert.Equal(t, []string{"3", "1"}, MaterialKeys(3, 1, 3))
	assert.Equal(t, []string{"1", "3"}, normalize(MaterialKeys(3, 1, 3)))
	assert.Equal(t, []string{"2", "9", "10", "100"}, normalize(MaterialKeys(100, 10, 9, 2, 10)))
}

func TestLocalLocker(t *testing.T) {
	t.Run("同一key串行执行", func(t *testing.T) {
		l := NewLocalLocker()
		var (
			wg      sync.WaitGroup
			holders int32
			maxSeen int32
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := l.Acquire(context.Background(), "1")
				if !assert.NoError(t, err) {
					return
				}
				n := atomic.AddInt32(&holders, 1)
				if n > atomic.LoadInt32(&maxSeen) {
					atomic.StoreInt32(&maxSeen, n)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&holders, -1)
				release()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxSeen)
		assert.Empty(t, l.slots, "释放后应回收slot")
	})

	t.Run("不同key互不阻塞", func(t *testing.T) {
		l := NewLocalLocker()
		release1, err := l.Acquire(context.Background(), "1")
		require.NoError(t, err)
		defer release1()

		release2, err := l.Acquire(context.Background(), "2")
		require.NoError(t, err)
		release2()
	})

	t.Run("ctx取消时放弃等待", func(t *testing.T) {
		l := NewLocalLocker()
		release, err := l.Acquire(context.Background(), "1")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = l.Acquire(ctx, "2", "1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		// 失败时已获取的key=2应被释放
		release2, err := l.Acquire(context.Background(), "2")
		require.NoError(t, err)
		release2()
	})

	t.Run("release可重复调用", func(t *testing.T) {
		l := NewLocalLocker()
		release, err := l.Acquire(context.Background(), "1", "2")
		require.NoError(t, err)
		release()
		assert.NotPanics(t, release)
	})
}

func newRedisLocker(t *testing.T, cfg config.LockConfig) (*RedisLocker, *miniredis.Miniredis, *logtest.Hook) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log, hook := logtest.NewNullLogger()
	return NewRedisLocker(client, cfg, log), mr, hook
}

func TestRedisLocker(t *testing.T) {
	cfg := config.LockConfig{
		Mode:      config.LockModeRedis,
		TTL:       time.Second,
		KeyPrefix: "scrapledger:material:",
	}

	t.Run("加锁写入带前缀的key,释放后删除", func(t *testing.T) {
		l, mr, hook := newRedisLocker(t, cfg)
		release, err := l.Acquire(context.Background(), "7")
		require.NoError(t, err)
		assert.True(t, mr.Exists("scrapledger:material:7"))

		release()
		assert.False(t, mr.Exists("scrapledger:material:7"))
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("已被占用时返回加锁失败", func(t *testing.T) {
		l, _, _ := newRedisLocker(t, cfg)
		release, err := l.Acquire(context.Background(), "7")
		require.NoError(t, err)
		defer release()

		_, err = l.Acquire(context.Background(), "7")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrLockFailed)
	})

	t.Run("部分失败时释放已获取的锁", func(t *testing.T) {
		l, mr, _ := newRedisLocker(t, cfg)
		release, err := l.Acquire(context.Background(), "9")
		require.NoError(t, err)
		defer release()

		_, err = l.Acquire(context.Background(), "1", "9")
		require.Error(t, err)
		assert.False(t, mr.Exists("scrapledger:material:1"))
	})

	t.Run("TTL到期自动释放", func(t *testing.T) {
		l, mr, _ := newRedisLocker(t, cfg)
		_, err := l.Acquire(context.Background(), "5")
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)
		release, err := l.Acquire(context.Background(), "5")
		require.NoError(t, err)
		release()
	})

	t.Run("锁过期后释放记录告警", func(t *testing.T) {
		l, mr, hook := newRedisLocker(t, cfg)
		release, err := l.Acquire(context.Background(), "6")
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)
		release()

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "scrapledger:material:6", entry.Data["key"])
		assert.Error(t, entry.Data[logrus.ErrorKey].(error))
	})
}

func TestNew(t *testing.T) {
	l, err := New(config.LockConfig{Mode: config.LockModeLocal}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalLocker{}, l)

	_, err = New(config.LockConfig{Mode: config.LockModeRedis}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrLockFailed)
}
