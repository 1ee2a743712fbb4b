package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		// Collector aggregates repeated errors and flushes them to kafka.logs_topic.
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
			IncludeWarn    bool          `yaml:"include_warn"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
		RateLimitRPS    float64       `yaml:"rate_limit_rps"`
		RateLimitBurst  int           `yaml:"rate_limit_burst"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		CandlesTopic string   `yaml:"candles_topic"`
		ContextTopic string   `yaml:"context_topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		MaxOpenConns     int           `yaml:"max_open_conns"`
		MaxIdleConns     int           `yaml:"max_idle_conns"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime"`
		Breaker          struct {
			MaxRequests uint32        `yaml:"max_requests"`
			Interval    time.Duration `yaml:"interval"`
			Timeout     time.Duration `yaml:"timeout"`
			MaxFailures uint32        `yaml:"max_failures"`
		} `yaml:"breaker"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
		PoolSize int    `yaml:"pool_size"`
		// LocalSize > 0 puts an in-process LRU in front of Redis.
		LocalSize int           `yaml:"local_size"`
		LocalTTL  time.Duration `yaml:"local_ttl"`
	} `yaml:"redis"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		Timeframes     []string      `yaml:"timeframes"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		BufferSize     int           `yaml:"buffer_size"`
	} `yaml:"feed"`
	Engine struct {
		Timeframe        string        `yaml:"timeframe"`
		HTFTimeframe     string        `yaml:"htf_timeframe"`
		Candles          int           `yaml:"candles"`
		Lookback         int           `yaml:"lookback"`
		EqualTolerance   float64       `yaml:"equal_tolerance"`
		EqualLookback    int           `yaml:"equal_lookback"`
		ZoneBufferPct    float64       `yaml:"zone_buffer_pct"`
		NearestCount     int           `yaml:"nearest_count"`
		LifecycleWindow  int           `yaml:"lifecycle_window"`
		RequireKillZone  *bool         `yaml:"require_kill_zone"`
		NarrativeMaxHops int           `yaml:"narrative_max_hops"`
		NarrativeTTL     time.Duration `yaml:"narrative_ttl"`
		IdeaExpiry       time.Duration `yaml:"idea_expiry"`
		IdeaBucketStep   float64       `yaml:"idea_bucket_step"`
		ContextCacheTTL  time.Duration `yaml:"context_cache_ttl"`
		LoadTimeout      time.Duration `yaml:"load_timeout"`
	} `yaml:"engine"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parseWithEnv(b, os.Getenv)
}

func parseWithEnv(b []byte, getenv func(string) string) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	c.applyEnv(getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = splitList(v)
	}
	if v := getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_CANDLES_TOPIC"); v != "" {
		c.Kafka.CandlesTopic = v
	}
	if v := getenv("KAFKA_CONTEXT_TOPIC"); v != "" {
		c.Kafka.ContextTopic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if p, err := strconv.Atoi(port); ok && err == nil {
			c.Redis.Port = p
		}
		c.Redis.Enabled = true
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.Collector.Interval <= 0 {
		c.Log.Collector.Interval = 30 * time.Second
	}
	if c.Log.Collector.CountThreshold <= 0 {
		c.Log.Collector.CountThreshold = 100
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 10
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Kafka.CandlesTopic == "" {
		c.Kafka.CandlesTopic = "smc.candles"
	}
	if c.Kafka.ContextTopic == "" {
		c.Kafka.ContextTopic = "smc.context"
	}
	if c.Kafka.LogsTopic == "" {
		c.Kafka.LogsTopic = "smc.logs"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "smctrader"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "smctrader"
	}
	if c.Engine.Timeframe == "" {
		c.Engine.Timeframe = "5m"
	}
	if c.Engine.HTFTimeframe == "" {
		c.Engine.HTFTimeframe = "1h"
	}
	if len(c.Feed.Timeframes) == 0 {
		c.Feed.Timeframes = []string{c.Engine.Timeframe, c.Engine.HTFTimeframe}
	}
	if c.Engine.IdeaExpiry <= 0 {
		c.Engine.IdeaExpiry = 4 * time.Hour
	}
	if c.Engine.NarrativeTTL <= 0 {
		c.Engine.NarrativeTTL = 24 * time.Hour
	}
}

var timeframes = map[string]bool{"1m": true, "5m": true, "15m": true, "1h": true, "4h": true, "1d": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with the kafka backend")
	}
	if c.Feed.Enabled {
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols cannot be empty")
		}
		if c.Feed.WebSocketURL == "" {
			return fmt.Errorf("feed.websocket_url is required")
		}
		for _, tf := range c.Feed.Timeframes {
			if !timeframes[tf] {
				return fmt.Errorf("feed.timeframes: unknown timeframe '%s'", tf)
			}
		}
	}
	if !timeframes[c.Engine.Timeframe] {
		return fmt.Errorf("engine.timeframe: unknown timeframe '%s'", c.Engine.Timeframe)
	}
	if !timeframes[c.Engine.HTFTimeframe] {
		return fmt.Errorf("engine.htf_timeframe: unknown timeframe '%s'", c.Engine.HTFTimeframe)
	}
	if c.Engine.EqualTolerance < 0 || c.Engine.ZoneBufferPct < 0 {
		return fmt.Errorf("engine tolerances must not be negative")
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("server.rate_limit_rps must not be negative")
	}
	return nil
}
