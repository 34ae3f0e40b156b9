package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Cache is a byte-oriented cache over redis. A miss is reported as
// (nil, false, nil) so callers can distinguish absence from failure.
type Cache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	logger     logging.Logger
}

// NewCache wires a cache. A zero defaultTTL means entries set with ttl <= 0
// never expire.
func NewCache(client *redis.Client, keyPrefix string, defaultTTL time.Duration, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		logger:     logger.Named("cache"),
	}
}

func (c *Cache) key(k string) string {
	return c.keyPrefix + k
}

// Get fetches a raw value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeDatabaseError, "redis: reading key")
	}
	return val, true, nil
}

// Set stores a raw value. A non-positive ttl falls back to the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "redis: writing key")
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "redis: deleting key")
	}
	return nil
}
