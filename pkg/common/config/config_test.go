package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.CacheIndexTTL != 30*time.Minute {
		t.Fatalf("expected 30m index TTL, got %v", cfg.CacheIndexTTL)
	}
	if cfg.CacheSeriesTTL != 15*time.Minute {
		t.Fatalf("expected 15m series TTL, got %v", cfg.CacheSeriesTTL)
	}
	if cfg.FetchTimeout != 0 {
		t.Fatalf("expected no fetch timeout by default, got %v", cfg.FetchTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_SERIES_TTL", "2m")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("REDIS_MIRROR_ENABLED", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	if cfg.CacheSeriesTTL != 2*time.Minute {
		t.Fatalf("expected 2m, got %v", cfg.CacheSeriesTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.RedisMirrorEnabled {
		t.Fatal("expected mirror enabled")
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected fallback redis db 0, got %d", cfg.RedisDB)
	}
}
