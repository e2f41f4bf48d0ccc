package database

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/config"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
)

const pingTimeout = 5 * time.Second

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// RedisOptions maps the mirror settings onto client options. A zero
// FetchTimeout keeps the client's default read and write timeouts.
func RedisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     4,
		DialTimeout:  pingTimeout,
		ReadTimeout:  cfg.FetchTimeout,
		WriteTimeout: cfg.FetchTimeout,
	}
}

// GetRedis returns the process-wide mirror client. A failed ping is logged,
// not fatal: the CSV mirror degrades to direct fetches.
func GetRedis(cfg *config.Config) *redis.Client {
	redisOnce.Do(func() {
		opts := RedisOptions(cfg)
		redisClient = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		log := logger.Log.WithFields(logrus.Fields{"addr": opts.Addr, "db": opts.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("CSV mirror unreachable, files will be fetched directly")
		} else {
			log.Info("CSV mirror connected")
		}
	})

	return redisClient
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
