package scoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/pkg/logger"
	"github.com/okian/assigner/pkg/metrics"
)

// Default cache settings.
const (
	defaultCacheTTL    = 5 * time.Minute
	defaultCachePrefix = "assigner:score:"
)

// CacheOption applies a configuration option to the CachingScorer.
type CacheOption func(*CachingScorer)

// WithCacheTTL sets how long a cached score lives.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachingScorer) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCachePrefix sets the key prefix.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *CachingScorer) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheFingerprint sets the model fingerprint embedded in every key.
// It defaults to Fingerprint(next).
func WithCacheFingerprint(fp string) CacheOption {
	return func(c *CachingScorer) {
		c.fingerprint = fp
	}
}

// WithCacheLogger sets the logger used for degraded-cache warnings.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachingScorer) {
		if l != nil {
			c.log = l
		}
	}
}

// CachingScorer memoizes per-vector scores of another scorer in Redis.
// Scores are keyed by backend name, model fingerprint and the exact feature
// values, so identical vectors scored by the same model hit the cache. Redis failures never fail
// a request: the wrapped scorer is called for the whole batch instead.
type CachingScorer struct {
	next        Scorer
	client      redis.UniversalClient
	ttl         time.Duration
	prefix      string
	fingerprint string
	log         logger.Logger
}

// NewCachingScorer decorates next with a Redis-backed score cache.
func NewCachingScorer(next Scorer, client redis.UniversalClient, opts ...CacheOption) *CachingScorer {
	c := &CachingScorer{
		next:        next,
		client:      client,
		ttl:         defaultCacheTTL,
		prefix:      defaultCachePrefix,
		fingerprint: Fingerprint(next),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the backend being cached.
func (c *CachingScorer) Name() string { return c.next.Name() }

// Fingerprint reports the fingerprint used in cache keys.
func (c *CachingScorer) Fingerprint() string { return c.fingerprint }

// Score serves cached scores and delegates the misses to the wrapped scorer
// in a single call.
func (c *CachingScorer) Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error) {
	if len(batch) == 0 {
		return c.next.Score(ctx, batch)
	}

	keys := make([]string, len(batch))
	for i, v := range batch {
		keys[i] = c.key(v)
	}

	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.degrade(ctx, "mget", err)
		return c.next.Score(ctx, batch)
	}

	out := make([]float64, len(batch))
	var missIdx []int
	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		f, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			missIdx = append(missIdx, i)
			continue
		}
		out[i] = f
	}

	metrics.RecordScoreCacheHits(len(batch) - len(missIdx))
	metrics.RecordScoreCacheMisses(len(missIdx))
	if len(missIdx) == 0 {
		return out, nil
	}

	misses := make([]model.FeatureVector, len(missIdx))
	for j, i := range missIdx {
		misses[j] = batch[i]
	}
	scores, err := c.next.Score(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(misses) {
		return nil, fmt.Errorf("cached scorer %s: got %d scores for %d vectors", c.next.Name(), len(scores), len(misses))
	}

	pipe := c.client.Pipeline()
	for j, i := range missIdx {
		out[i] = scores[j]
		pipe.Set(ctx, keys[i], strconv.FormatFloat(scores[j], 'g', -1, 64), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.degrade(ctx, "set", err)
	}
	return out, nil
}

func (c *CachingScorer) key(v model.FeatureVector) string {
	var b strings.Builder
	b.WriteString(c.prefix)
	b.WriteString(c.next.Name())
	b.WriteByte(':')
	if c.fingerprint != "" {
		b.WriteString(c.fingerprint)
		b.WriteByte(':')
	}
	for i, x := range v.Values() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}

func (c *CachingScorer) degrade(ctx context.Context, op string, err error) {
	metrics.RecordScoreCacheError()
	c.log.Warn(ctx, "score cache unavailable, scoring without cache",
		logger.String("op", op),
		logger.String("scorer", c.next.Name()),
		logger.Error(err))
}
