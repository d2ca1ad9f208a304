package contentcache

import (
	"context"
	"fmt"
	"time"

	"github.com/basil51/ai-school-sub003/internal/config"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
)

// Cache fronts a primary Store with an in-process fallback. When the
// primary errors, the operation is served by the fallback and a warning
// is logged; cache errors never reach callers.
type Cache struct {
	primary  Store
	fallback *MemoryStore
	log      *logger.Logger
	metrics  *metrics.Metrics
	closer   func() error
}

// New creates a cache over primary. A nil primary means memory only.
func New(primary Store, log *logger.Logger, m *metrics.Metrics) *Cache {
	fallback := NewMemoryStore()
	if primary == nil {
		primary = fallback
	}
	return &Cache{
		primary:  primary,
		fallback: fallback,
		log:      logger.OrNop(log),
		metrics:  m,
	}
}

// Open selects the backend from cfg. Backend "redis" requires a reachable
// server; "auto" uses redis when an address is configured and reachable
// and memory otherwise.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Cache, error) {
	log = logger.OrNop(log)
	backend := cfg.Cache.Backend
	if backend == "memory" || (backend == "auto" && !cfg.Redis.Enabled()) {
		log.Info("content cache using memory backend")
		return New(nil, log, m), nil
	}

	rs, err := NewRedisStore(ctx, RedisOptions{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	if err != nil {
		if backend == "redis" {
			return nil, fmt.Errorf("open content cache: %w", err)
		}
		log.Warn("redis unavailable, content cache using memory backend", "addr", cfg.Redis.Addr, "error", err)
		return New(nil, log, m), nil
	}
	log.Info("content cache using redis backend", "addr", cfg.Redis.Addr)
	c := New(rs, log, m)
	c.closer = rs.Close
	return c, nil
}

// Close releases the backend connection, if any.
func (c *Cache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Lookup returns the payload stored under fp.
func (c *Cache) Lookup(ctx context.Context, fp Fingerprint) ([]byte, bool) {
	payload, ok, err := c.primary.Get(ctx, fp)
	if err != nil {
		c.log.Warn("content cache read failed, using memory", "fingerprint", fp, "error", err)
		payload, ok, _ = c.fallback.Get(ctx, fp)
	}
	c.metrics.CacheLookup(string(fp.Kind()), ok)
	return payload, ok
}

// Store writes payload under fp, overwriting any existing entry. A ttl of
// zero or less selects the kind's default.
func (c *Cache) Store(ctx context.Context, fp Fingerprint, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = fp.Kind().TTL()
	}
	if err := c.primary.Put(ctx, fp, payload, ttl); err != nil {
		c.log.Warn("content cache write failed, using memory", "fingerprint", fp, "error", err)
		_ = c.fallback.Put(ctx, fp, payload, ttl)
	}
}

// Get looks up the artifact identified by p.
func (c *Cache) Get(ctx context.Context, p Params) ([]byte, bool) {
	return c.Lookup(ctx, Of(p))
}

// Put stores the artifact identified by p with its kind's TTL.
func (c *Cache) Put(ctx context.Context, p Params, payload []byte) {
	c.Store(ctx, Of(p), payload, 0)
}
