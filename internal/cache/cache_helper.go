package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides common caching operations for repositories
type CacheHelper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	// pending is set on helpers scoped to a transaction
	pending *pendingDeletes
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, prefix string, ttl time.Duration) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key prefixes per record type
const (
	ProfilePrefix = "profile:"
	StudentPrefix = "student:"
	UserPrefix    = "user:"
)

// DefaultTTL is used when the manager is built without an explicit TTL
const DefaultTTL = 5 * time.Minute

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

// TTL returns the default expiry of entries written through this helper
func (c *CacheHelper) TTL() time.Duration {
	return c.ttl
}

// Enabled reports whether a Redis client backs this helper
func (c *CacheHelper) Enabled() bool {
	return c.client != nil
}

// Get retrieves and unmarshals data from cache. Helpers scoped to a
// transaction never read.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil || c.pending != nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil || c.pending != nil {
		return nil // Graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// Delete removes data from cache
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}

	if c.pending != nil {
		c.pending.add(cacheKeys...)
		return nil
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// InvalidatePattern removes all keys matching a pattern using SCAN instead of KEYS
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.GetCacheKey(pattern)
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		pipe.Del(ctx, keys[i:end]...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}

	return nil
}

// CacheOrExecute implements cache-aside: dest is filled from cache, or from
// fetchFunc whose result is then written back before returning.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.InfoContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	if c.client != nil && c.pending == nil {
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := c.client.Set(setCtx, c.GetCacheKey(key), data, c.ttl).Err(); err != nil {
			slog.ErrorContext(ctx, "Cache set error", "error", err, "key", key)
		}
		cancel()
	}

	return json.Unmarshal(data, dest)
}

// pendingDeletes collects the keys a transaction invalidated
type pendingDeletes struct {
	mu   sync.Mutex
	keys []string
}

func (p *pendingDeletes) add(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, keys...)
}

func (p *pendingDeletes) drain() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := p.keys
	p.keys = nil
	return keys
}

// CacheManager manages the cache helpers of each record type
type CacheManager struct {
	client  *redis.Client
	pending *pendingDeletes

	Profile *CacheHelper
	Student *CacheHelper
	User    *CacheHelper
}

// NewCacheManager creates cache manager with all cache helpers. A nil client
// yields helpers that never hit and never fail.
func NewCacheManager(client *redis.Client, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CacheManager{
		client:  client,
		Profile: NewCacheHelper(client, ProfilePrefix, ttl),
		Student: NewCacheHelper(client, StudentPrefix, ttl),
		User:    NewCacheHelper(client, UserPrefix, ttl),
	}
}

// Deferred returns a manager for use inside a database transaction. Its
// reads bypass Redis and write nothing back; its deletes are held until
// Flush. Called on a deferred manager it returns the receiver.
func (cm *CacheManager) Deferred() *CacheManager {
	if cm.pending != nil {
		return cm
	}

	p := &pendingDeletes{}
	scoped := func(h *CacheHelper) *CacheHelper {
		return &CacheHelper{client: h.client, prefix: h.prefix, ttl: h.ttl, pending: p}
	}
	return &CacheManager{
		client:  cm.client,
		pending: p,
		Profile: scoped(cm.Profile),
		Student: scoped(cm.Student),
		User:    scoped(cm.User),
	}
}

// IsDeferred reports whether cm was built by Deferred
func (cm *CacheManager) IsDeferred() bool {
	return cm.pending != nil
}

// Flush deletes the keys held by a deferred manager. Run it once the
// transaction has committed.
func (cm *CacheManager) Flush(ctx context.Context) error {
	if cm.pending == nil {
		return nil
	}
	keys := cm.pending.drain()
	if cm.client == nil || len(keys) == 0 {
		return nil
	}
	return cm.client.Del(ctx, keys...).Err()
}

// Discard forgets the keys held by a deferred manager
func (cm *CacheManager) Discard() {
	if cm.pending != nil {
		cm.pending.drain()
	}
}

// HealthCheck pings Redis when configured
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return nil
	}
	return cm.client.Ping(ctx).Err()
}

// ClearAll drops every key this service writes
func (cm *CacheManager) ClearAll(ctx context.Context) error {
	return BatchInvalidate(ctx, []*CacheHelper{cm.Profile, cm.Student, cm.User}, "*")
}
