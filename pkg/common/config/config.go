package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Data source
	DataBaseURL  string
	DataDir      string
	ServeDataDir bool
	FetchTimeout time.Duration
	CatalogPath  string

	// Cache
	CacheDefaultTTL time.Duration
	CacheIndexTTL   time.Duration
	CacheSeriesTTL  time.Duration
	PreloadOnStart  bool

	// Redis
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	RedisMirrorEnabled bool
	RedisMirrorTTL     time.Duration
	RedisMirrorPrefix  string

	// Kafka
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaGroupID      string
	KafkaEventsTopic  string
	KafkaRefreshTopic string

	// Gateway specific
	GatewayRateLimitRPS   int
	GatewayRateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		DataBaseURL:  getEnv("DATA_BASE_URL", ""),
		DataDir:      getEnv("DATA_DIR", "./data"),
		ServeDataDir: getBoolEnv("SERVE_DATA_DIR", false),
		FetchTimeout: getDuration("FETCH_TIMEOUT", 0),
		CatalogPath:  getEnv("CATALOG_PATH", ""),

		CacheDefaultTTL: getDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		CacheIndexTTL:   getDuration("CACHE_INDEX_TTL", 30*time.Minute),
		CacheSeriesTTL:  getDuration("CACHE_SERIES_TTL", 15*time.Minute),
		PreloadOnStart:  getBoolEnv("PRELOAD_ON_START", true),

		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getIntEnv("REDIS_DB", 0),
		RedisMirrorEnabled: getBoolEnv("REDIS_MIRROR_ENABLED", false),
		RedisMirrorTTL:     getDuration("REDIS_MIRROR_TTL", time.Hour),
		RedisMirrorPrefix:  getEnv("REDIS_MIRROR_PREFIX", "vitals:csv:"),

		KafkaEnabled:      getBoolEnv("KAFKA_ENABLED", false),
		KafkaBrokers:      getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "vitals-service"),
		KafkaEventsTopic:  getEnv("KAFKA_EVENTS_TOPIC", "vitals.dashboard.events"),
		KafkaRefreshTopic: getEnv("KAFKA_REFRESH_TOPIC", "vitals.data.refreshed"),

		GatewayRateLimitRPS:   getIntEnv("GATEWAY_RATE_LIMIT_RPS", 50),
		GatewayRateLimitBurst: getIntEnv("GATEWAY_RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
