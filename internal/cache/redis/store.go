// Package redis shares the metadata cache between clients through Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/billie-coop/metanet/internal/cache"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "metanet:cache:"

// Options configure the Redis store.
type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL lets Redis expire entries on its own. Zero keeps them forever.
	TTL    time.Duration
	Prefix string
}

// Store is a cache.Store backed by Redis hashes.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ cache.Store = (*Store)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.TTL, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, ttl: ttl, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get loads an entry by key.
func (s *Store) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return cache.Entry{}, false, cache.ErrEmptyKey
	}

	vals, err := s.client.HMGet(ctx, s.key(key), "payload", "stored_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{}, false, fmt.Errorf("get cache entry: %w", err)
	}
	payload, ok := vals[0].(string)
	if !ok {
		return cache.Entry{}, false, nil
	}
	storedAt, _ := vals[1].(string)
	millis, err := strconv.ParseInt(storedAt, 10, 64)
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("parse stored_at for %s: %w", key, err)
	}

	return cache.Entry{
		Key:      key,
		Payload:  []byte(payload),
		StoredAt: time.UnixMilli(millis).UTC(),
	}, true, nil
}

// Put writes an entry and refreshes its expiry.
func (s *Store) Put(ctx context.Context, entry cache.Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return cache.ErrEmptyKey
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}

	k := s.key(entry.Key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, "payload", entry.Payload, "stored_at", entry.StoredAt.UTC().UnixMilli())
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry by key.
func (s *Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return cache.ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every key under the prefix.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear cache entries: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache entries: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear cache entries: %w", err)
		}
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
