package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
)

// RedisMirror shares fetched CSV bodies between service instances so a cold
// instance does not go back to the static file host. Redis failures are misses.
type RedisMirror struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisMirror(client *redis.Client, prefix string, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, prefix: prefix, ttl: ttl}
}

func (m *RedisMirror) key(path string) string {
	return m.prefix + path
}

func (m *RedisMirror) Get(ctx context.Context, path string) ([]byte, bool) {
	body, err := m.client.Get(ctx, m.key(path)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("path", path).Debug("csv mirror read failed")
		}
		return nil, false
	}
	return body, true
}

func (m *RedisMirror) Set(ctx context.Context, path string, body []byte) {
	if err := m.client.Set(ctx, m.key(path), body, m.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("path", path).Debug("csv mirror write failed")
	}
}

// Purge drops every mirrored body under the prefix. It is used when upstream
// announces new data files.
func (m *RedisMirror) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := m.client.Scan(ctx, cursor, m.prefix+"*", 200).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := m.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
