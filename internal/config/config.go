package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort           string
	GRPCPort           string
	LogMode            string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	CatalogDBPath   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	KafkaBrokers   []string
	KafkaTopic     string
	EventQueueSize int

	OrdersServiceURL        string
	OrderSubmitTimeout      time.Duration
	OrderSubmitAttempts     int
	OrderRetryBackoff       time.Duration
	BreakerFailures         int
	BreakerOpenTimeout      time.Duration
	SimulatedLatency        time.Duration
	SimulatedFailurePercent int
	ServeOrderSimulator     bool

	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
}

// Load reads the configuration from the environment. Every malformed value is reported.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		GRPCPort:           getEnv("GRPC_PORT", "50051"),
		LogMode:            getEnv("LOG_MODE", "dev"),
		RequestTimeout:     p.durationVal("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    p.durationVal("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: int64(p.intVal("MAX_REQUEST_BODY_SIZE", 1<<20)), // 1MB

		CatalogDBPath:   getEnv("CATALOG_DB_PATH", ":memory:"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         p.intVal("REDIS_DB", 0),
		CatalogCacheTTL: p.durationVal("CATALOG_CACHE_TTL", 15*time.Minute),

		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "storefront-events"),
		EventQueueSize: p.intVal("EVENT_QUEUE_SIZE", 1024),

		OrdersServiceURL:        getEnv("ORDERS_SERVICE_URL", ""),
		OrderSubmitTimeout:      p.durationVal("ORDER_SUBMIT_TIMEOUT", 8*time.Second),
		OrderSubmitAttempts:     p.intVal("ORDER_SUBMIT_ATTEMPTS", 3),
		OrderRetryBackoff:       p.durationVal("ORDER_RETRY_BACKOFF", 300*time.Millisecond),
		BreakerFailures:         p.intVal("BREAKER_FAILURES", 5),
		BreakerOpenTimeout:      p.durationVal("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		SimulatedLatency:        p.durationVal("SIMULATED_LATENCY", 1500*time.Millisecond),
		SimulatedFailurePercent: p.intVal("SIMULATED_FAILURE_PERCENT", 5),
		ServeOrderSimulator:     p.boolVal("SERVE_ORDER_SIMULATOR", false),

		SessionTTL:             p.durationVal("SESSION_TTL", 30*time.Minute),
		SessionCleanupInterval: p.durationVal("SESSION_CLEANUP_INTERVAL", time.Minute),
	}

	if cfg.SimulatedFailurePercent < 0 || cfg.SimulatedFailurePercent > 100 {
		p.fail("SIMULATED_FAILURE_PERCENT", fmt.Errorf("must be within 0..100, got %d", cfg.SimulatedFailurePercent))
	}
	if cfg.OrderSubmitAttempts < 1 {
		p.fail("ORDER_SUBMIT_ATTEMPTS", fmt.Errorf("must be at least 1, got %d", cfg.OrderSubmitAttempts))
	}
	// PlaceOrder runs inside an HTTP request; every attempt has to fit in it.
	if cfg.OrderSubmitAttempts >= 1 && cfg.OrderSubmitBudget() >= cfg.RequestTimeout {
		p.fail("ORDER_SUBMIT_TIMEOUT", fmt.Errorf("%d attempts need up to %s, more than REQUEST_TIMEOUT %s",
			cfg.OrderSubmitAttempts, cfg.OrderSubmitBudget(), cfg.RequestTimeout))
	}
	if cfg.BreakerFailures < 1 {
		p.fail("BREAKER_FAILURES", fmt.Errorf("must be at least 1, got %d", cfg.BreakerFailures))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// OrderSubmitBudget is the longest PlaceOrder waits on the order service: every attempt
// timing out plus the linear backoff between attempts.
func (c *Config) OrderSubmitBudget() time.Duration {
	n := time.Duration(c.OrderSubmitAttempts)
	return c.OrderSubmitTimeout*n + c.OrderRetryBackoff*n*(n-1)/2
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type parser struct {
	errs []error
}

func (p *parser) fail(key string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
}

func (p *parser) intVal(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return v
}

func (p *parser) durationVal(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return v
}

func (p *parser) boolVal(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
