// Package cache holds the Redis read-through cache for the listing page.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/ceb/internal/model"
)

const (
	// ListingKey is the Redis key holding the serialized listing snapshot.
	ListingKey = "reg:index"
	// GenerationKey is bumped on every invalidation.
	GenerationKey = "reg:index:gen"
)

var (
	// ErrMiss reports that no usable snapshot is cached.
	ErrMiss = errors.New("cache miss")
	// ErrStale reports that an invalidation happened after the snapshot was read.
	ErrStale = errors.New("stale listing snapshot")
)

// ListingCache stores the full listing snapshot as JSON with a TTL.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewListingCache builds a cache on top of the given client. A nil client is allowed
// and turns every call into a miss.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListingCache{client: client, ttl: ttl}
}

func (c *ListingCache) Get(ctx context.Context) (*model.Listing, error) {
	if c == nil || c.client == nil {
		return nil, ErrMiss
	}
	data, err := c.client.Get(ctx, ListingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, ErrMiss
	}
	if err != nil {
		c.misses.Add(1)
		return nil, err
	}
	var out model.Listing
	if err := json.Unmarshal(data, &out); err != nil {
		c.misses.Add(1)
		return nil, err
	}
	c.hits.Add(1)
	return &out, nil
}

// Generation returns the current invalidation generation. Read it before loading
// rows from the database and hand it to Set.
func (c *ListingCache) Generation(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores l only if no invalidation happened since gen was read, otherwise it
// returns ErrStale and leaves the cache empty.
func (c *ListingCache) Set(ctx context.Context, l *model.Listing, gen int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, GenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ListingKey, payload, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Invalidate drops the cached snapshot after a write and bumps the generation so
// that snapshots read before the write are not stored.
func (c *ListingCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, ListingKey)
		return nil
	})
	return err
}

// Counters reports cache hits and misses since start or the last reset.
func (c *ListingCache) Counters() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// ResetCounters clears recorded hit/miss counters.
func (c *ListingCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
}
