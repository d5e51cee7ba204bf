// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a .env file, a YAML file and ASSIGNER_* env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Scorer backends selectable via the "scorer" key.
const (
	ScorerLinear     = "linear"
	ScorerExpression = "expression"
	ScorerRPC        = "rpc"
)

var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxCandidates caps candidate_employees per request.
	MaxCandidates int `koanf:"max_candidates"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MaxBulkRequests caps the number of items in POST /predict-assignments.
	MaxBulkRequests int `koanf:"max_bulk_requests"`

	// BulkConcurrency bounds how many bulk items are ranked in parallel.
	BulkConcurrency int `koanf:"bulk_concurrency"`

	// DefaultPriority and DefaultDeadlineHours fill omitted request fields.
	DefaultPriority      string  `koanf:"default_priority"`
	DefaultDeadlineHours float64 `koanf:"default_deadline_hours"`

	// Scorer selects the backend: linear, expression or rpc.
	Scorer string `koanf:"scorer"`

	// ModelPath points at a linear model file; empty uses built-in weights.
	ModelPath string `koanf:"model_path"`

	// ScorerExpression is the CEL expression for the expression scorer.
	ScorerExpression string `koanf:"scorer_expression"`

	// RPC scorer settings.
	RPCEndpoint    string `koanf:"rpc_endpoint"`
	RPCTimeoutMS   int    `koanf:"rpc_timeout_ms"`
	RPCBatchSize   int    `koanf:"rpc_batch_size"`
	RPCConcurrency int    `koanf:"rpc_concurrency"`

	// Redis score cache settings.
	CacheEnabled    bool   `koanf:"cache_enabled"`
	RedisAddr       string `koanf:"redis_addr"`
	RedisDB         int    `koanf:"redis_db"`
	RedisPassword   string `koanf:"redis_password"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`
	CachePrefix     string `koanf:"cache_prefix"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		MaxCandidates:        1_000,
		MaxBodyBytes:         1 << 20,
		MaxBulkRequests:      100,
		BulkConcurrency:      8,
		DefaultPriority:      "LOW",
		DefaultDeadlineHours: 24,
		Scorer:               ScorerLinear,
		RPCTimeoutMS:         2_000,
		RPCBatchSize:         256,
		RPCConcurrency:       4,
		RedisAddr:            "localhost:6379",
		CacheTTLSeconds:      300,
		CachePrefix:          "assigner:score:",
		MetricsEnabled:       true,
		MetricsNamespace:     "assigner",
	}
}

// RPCTimeout returns the RPC scorer timeout as a duration.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutMS) * time.Millisecond
}

// CacheTTL returns the score cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxCandidates <= 0:
		return fmt.Errorf("%w: max_candidates must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.MaxBulkRequests <= 0:
		return fmt.Errorf("%w: max_bulk_requests must be positive", ErrInvalidConfig)
	case c.BulkConcurrency <= 0:
		return fmt.Errorf("%w: bulk_concurrency must be positive", ErrInvalidConfig)
	case c.DefaultDeadlineHours <= 0:
		return fmt.Errorf("%w: default_deadline_hours must be positive", ErrInvalidConfig)
	case !metricNamespace.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}

	switch c.Scorer {
	case ScorerLinear:
	case ScorerExpression:
		if strings.TrimSpace(c.ScorerExpression) == "" {
			return fmt.Errorf("%w: scorer_expression is required for the expression scorer", ErrInvalidConfig)
		}
	case ScorerRPC:
		if strings.TrimSpace(c.RPCEndpoint) == "" {
			return fmt.Errorf("%w: rpc_endpoint is required for the rpc scorer", ErrInvalidConfig)
		}
		if c.RPCBatchSize <= 0 || c.RPCConcurrency <= 0 || c.RPCTimeoutMS <= 0 {
			return fmt.Errorf("%w: rpc batch size, concurrency and timeout must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown scorer %q", ErrInvalidConfig, c.Scorer)
	}

	if c.CacheEnabled {
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required when cache_enabled", ErrInvalidConfig)
		}
		if c.CacheTTLSeconds <= 0 {
			return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
		}
	}
	return nil
}
