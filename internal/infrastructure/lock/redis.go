package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	apperrors "github.com/xiebiao/scrapledger/pkg/errors"
)

// RedisClient redislock需要的最小Redis能力,*redis.Client满足
type RedisClient = redislock.RedisClient

// RedisLocker 基于Redis的分布式锁,多个进程共享同一数据库时使用
// 锁带TTL,进程崩溃后自动过期
type RedisLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	retry  redislock.RetryStrategy
	log    logrus.FieldLogger
}

// NewRedisLocker 创建Redis Locker
func NewRedisLocker(client RedisClient, cfg config.LockConfig, log logrus.FieldLogger) *RedisLocker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := redislock.NoRetry()
	if cfg.RetryMax > 0 && cfg.RetryEvery > 0 {
		retry = redislock.LimitRetry(redislock.LinearBackoff(cfg.RetryEvery), cfg.RetryMax)
	}
	return &RedisLocker{
		client: redislock.New(client),
		prefix: cfg.KeyPrefix,
		ttl:    ttl,
		retry:  retry,
		log:    log,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	releases := make([]func(), 0, len(keys))
	for _, key := range keys {
		lk, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
		if err != nil {
			releaseAll(releases)()
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, apperrors.ErrLockFailed.WithDetail("key=%s被占用", key)
			}
			return nil, apperrors.New(apperrors.ErrCodeRedisError, "获取Redis锁失败").WithDetail("key=%s: %v", key, err)
		}
		releases = append(releases, func() {
			// 使用独立ctx,调用方ctx取消后仍要释放
			if err := lk.Release(context.Background()); err != nil {
				// 锁已过期或被他人持有,持锁期间的操作可能没有被串行化
				l.log.WithFields(logrus.Fields{"key": l.prefix + key, "ttl": l.ttl}).
					WithError(err).Warn("释放Redis锁失败")
			}
		})
	}
	return releaseAll(releases), nil
}
