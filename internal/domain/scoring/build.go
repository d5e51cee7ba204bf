package scoring

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/assigner/internal/config"
	"github.com/okian/assigner/pkg/logger"
)

// Settings selects and configures a scorer backend.
type Settings struct {
	Kind           string
	ModelPath      string
	Expression     string
	RPCEndpoint    string
	RPCTimeout     time.Duration
	RPCBatchSize   int
	RPCConcurrency int
	Cache          CacheSettings
	Logger         logger.Logger
}

// CacheSettings configures the optional Redis score cache.
type CacheSettings struct {
	Enabled  bool
	Addr     string
	DB       int
	Password string
	TTL      time.Duration
	Prefix   string
}

// SettingsFromConfig maps the process configuration onto scorer settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Kind:           cfg.Scorer,
		ModelPath:      cfg.ModelPath,
		Expression:     cfg.ScorerExpression,
		RPCEndpoint:    cfg.RPCEndpoint,
		RPCTimeout:     cfg.RPCTimeout(),
		RPCBatchSize:   cfg.RPCBatchSize,
		RPCConcurrency: cfg.RPCConcurrency,
		Cache: CacheSettings{
			Enabled:  cfg.CacheEnabled,
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL(),
			Prefix:   cfg.CachePrefix,
		},
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// Build constructs the configured backend, optionally behind the Redis
// cache, and instruments it. The returned closer releases the cache client.
func Build(ctx context.Context, s Settings) (Scorer, io.Closer, error) {
	log := s.Logger
	if log == nil {
		log = logger.Nop()
	}

	var base Scorer
	switch s.Kind {
	case "", config.ScorerLinear:
		if s.ModelPath == "" {
			base = DefaultLinearModel()
			break
		}
		m, err := LoadLinearModel(s.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		base = m
	case config.ScorerExpression:
		e, err := NewExpressionScorer(s.Expression)
		if err != nil {
			return nil, nil, err
		}
		base = e
	case config.ScorerRPC:
		base = NewRPCScorer(s.RPCEndpoint,
			WithRPCTimeout(s.RPCTimeout),
			WithBatchSize(s.RPCBatchSize),
			WithConcurrency(s.RPCConcurrency),
		)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScorer, s.Kind)
	}

	if !s.Cache.Enabled {
		log.Info(ctx, "scorer ready", logger.String("scorer", base.Name()), logger.Bool("cache", false))
		return Instrument(base), nopCloser, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.Cache.Addr,
		DB:       s.Cache.DB,
		Password: s.Cache.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn(ctx, "score cache not reachable at startup, continuing",
			logger.String("addr", s.Cache.Addr), logger.Error(err))
	}

	cached := NewCachingScorer(base, client,
		WithCacheTTL(s.Cache.TTL),
		WithCachePrefix(s.Cache.Prefix),
		WithCacheFingerprint(Fingerprint(base)),
		WithCacheLogger(log),
	)
	log.Info(ctx, "scorer ready", logger.String("scorer", base.Name()), logger.Bool("cache", true),
		logger.String("redis", s.Cache.Addr), logger.String("fingerprint", Fingerprint(base)))
	return Instrument(cached), client, nil
}
