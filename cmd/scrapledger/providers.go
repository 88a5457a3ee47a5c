package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/xiebiao/scrapledger/internal/infrastructure/config"
	"github.com/xiebiao/scrapledger/internal/infrastructure/lock"
	"github.com/xiebiao/scrapledger/internal/infrastructure/logger"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/database"
	"github.com/xiebiao/scrapledger/internal/infrastructure/persistence/redis"
)

func provideLogger(cfg *config.Config) (logrus.FieldLogger, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return log.WithField("app", cfg.App.Name), nil
}

func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// provideLocker local模式不连接Redis
func provideLocker(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (lock.Locker, func(), error) {
	if cfg.Lock.Mode != config.LockModeRedis {
		return lock.NewLocalLocker(), func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	locker, err := lock.New(cfg.Lock, client, log.WithField("component", "lock"))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return locker, func() { _ = client.Close() }, nil
}
