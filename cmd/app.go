package cmd

import (
	"log/slog"

	"github.com/redis/rueidis"
	"gorm.io/gorm"

	config "nextlevel.com/nextlevel/internal/configs"
	"nextlevel.com/nextlevel/internal/events"
	"nextlevel.com/nextlevel/internal/locks"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

// app holds the shared infrastructure every command needs.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *gorm.DB
	store     *repository.Store
	redis     rueidis.Client
	locker    locks.Locker
	publisher events.Publisher
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := config.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		store:  repository.NewStore(db),
	}

	redisClient, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		a.close()
		return nil, err
	}
	if redisClient != nil {
		a.redis = redisClient
		a.locker = locks.NewRedisLocker(redisClient)
		logger.Info("using redis locks", slog.String("addr", cfg.RedisAddr))
	} else {
		a.locker = locks.NewLocalLocker()
		logger.Info("REDIS_ADDR not set, using in-process locks")
	}

	if cfg.AMQPURL != "" {
		a.publisher = events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue, logger)
	} else {
		a.publisher = events.NoopPublisher{}
	}

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
