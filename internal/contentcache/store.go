package contentcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a fingerprint-keyed payload store. Get reports a miss with
// ok=false; expired entries are misses.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (payload []byte, ok bool, err error)
	Put(ctx context.Context, fp Fingerprint, payload []byte, ttl time.Duration) error
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps entries in process. Expired entries are ignored on
// read but never purged; there is no capacity bound.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Fingerprint]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Fingerprint]entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, fp Fingerprint) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[fp]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (m *MemoryStore) Put(_ context.Context, fp Fingerprint, payload []byte, ttl time.Duration) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.mu.Lock()
	m.entries[fp] = entry{payload: buf, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// RedisStore keeps entries in redis with native key expiry.
type RedisStore struct {
	client *redis.Client
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewRedisStore connects to redis and pings it.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		MaxRetries:  1,
	})

	pingCtx := ctx
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, fp Fingerprint) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, string(fp)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

func (r *RedisStore) Put(ctx context.Context, fp Fingerprint, payload []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, string(fp), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
