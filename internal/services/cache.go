package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCacheExpiration      = 24 * time.Hour
	DefaultCacheCleanupInterval = 10 * time.Minute
)

// ErrCacheMiss is returned by Get and Take when the key does not exist or has
// expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache stores JSON-encoded values with an expiration.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	// Take reads and removes the key in one step.
	Take(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// StoreCache is a Cache on top of a gocache store. Values are JSON encoded so
// the in-memory and the Redis store hold the same bytes.
type StoreCache struct {
	store store.StoreInterface
	// redis is only set for the Redis store; Take uses GETDEL on it.
	redis *redis.Client
	// takeMu serializes Get+Delete on stores without an atomic take.
	takeMu sync.Mutex
}

var _ Cache = (*StoreCache)(nil)

// NewStore picks the Redis store when redisURL is set and the in-memory
// go-cache store otherwise.
func NewStore(redisURL string) (*StoreCache, error) {
	if redisURL == "" {
		return NewMemoryStore(DefaultCacheExpiration, DefaultCacheCleanupInterval), nil
	}
	return NewRedisStore(redisURL)
}

// NewMemoryStore keeps entries in process memory. Entries set without an
// expiration live for defaultExpiration.
func NewMemoryStore(defaultExpiration, cleanupInterval time.Duration) *StoreCache {
	goc := gocache.New(defaultExpiration, cleanupInterval)
	return &StoreCache{store: gocache_store.NewGoCache(goc)}
}

// NewRedisStore connects to redisURL and fails if the server does not answer
// a ping.
func NewRedisStore(redisURL string) (*StoreCache, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis cache url: %w", err)
	}

	client := redis.NewClient(options)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("Redis connection established")
	return &StoreCache{store: redis_store.NewRedis(client), redis: client}, nil
}

// Type is the backing store's type, "go-cache" or "redis".
func (c *StoreCache) Type() string {
	return c.store.GetType()
}

func (c *StoreCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if expiration > 0 {
		return c.store.Set(ctx, key, data, store.WithExpiration(expiration))
	}
	return c.store.Set(ctx, key, data)
}

func (c *StoreCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		return translateStoreErr(err)
	}
	return decode(value, dest)
}

func (c *StoreCache) Take(ctx context.Context, key string, dest interface{}) error {
	if c.redis != nil {
		data, err := c.redis.GetDel(ctx, key).Bytes()
		if err != nil {
			return translateStoreErr(err)
		}
		return json.Unmarshal(data, dest)
	}

	c.takeMu.Lock()
	defer c.takeMu.Unlock()

	value, err := c.store.Get(ctx, key)
	if err != nil {
		return translateStoreErr(err)
	}
	if err := c.store.Delete(ctx, key); err != nil {
		return err
	}
	return decode(value, dest)
}

func (c *StoreCache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Close releases the Redis connection, if any.
func (c *StoreCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// decode unmarshals a stored value. go-cache hands back the []byte that was
// set; the Redis store returns a string.
func decode(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cache: unexpected value type %T", value)
	}
}

func translateStoreErr(err error) error {
	var notFound *store.NotFound
	if errors.As(err, &notFound) || errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	return err
}
