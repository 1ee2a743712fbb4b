package cache

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPrefix    = "smctrader"
	defaultLocalSize = 1000
	defaultLocalTTL  = 5 * time.Second
	cleanupEvery     = 5 * time.Minute
)

// RedisOption adjusts the client built by NewRedisCache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	addr     string
	password string
	db       int
	poolSize int
	prefix   string
}

func defaultRedisConfig() redisConfig {
	return redisConfig{addr: "localhost:6379", poolSize: 10, prefix: defaultPrefix}
}

// WithRedisAddress sets host and port. Blank or zero parts keep localhost:6379.
func WithRedisAddress(host string, port int) RedisOption {
	return func(c *redisConfig) {
		if host = strings.TrimSpace(host); host == "" {
			host = "localhost"
		}
		if port <= 0 {
			port = 6379
		}
		c.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(c *redisConfig) {
		c.password = password
		c.db = db
	}
}

// WithRedisPoolSize sets the pool size; zero keeps the default.
func WithRedisPoolSize(n int) RedisOption {
	return func(c *redisConfig) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithRedisPrefix namespaces every key; empty keeps the default.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryMaxSize bounds the number of entries; the least recently read is
// evicted first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(mc *MemoryCache) {
		if size > 0 {
			mc.maxSize = size
		}
	}
}

// LayeredOption configures the local tier of a LayeredCache.
type LayeredOption func(*layeredConfig)

type layeredConfig struct {
	size int
	ttl  time.Duration
}

func WithLayeredMemorySize(size int) LayeredOption {
	return func(c *layeredConfig) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithLayeredMemoryTTL caps how long the local tier keeps an entry.
func WithLayeredMemoryTTL(ttl time.Duration) LayeredOption {
	return func(c *layeredConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}
