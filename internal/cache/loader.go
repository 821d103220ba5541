package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetch produces a fresh value for a key.
type Fetch[T any] func(ctx context.Context) (T, error)

// Loader is a typed view over a Store with stale-while-revalidate reads.
type Loader[T any] struct {
	store  Store
	policy Policy
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewLoader wraps store for values of type T.
func NewLoader[T any](store Store, policy Policy, logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Peek returns the cached value for key when it is present and usable under
// the policy. Unreadable entries count as misses.
func (l *Loader[T]) Peek(ctx context.Context, key string) (T, bool) {
	v, _, ok := l.peek(ctx, key)
	return v, ok
}

func (l *Loader[T]) peek(ctx context.Context, key string) (T, time.Duration, bool) {
	var zero T
	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("cache read failed", "key", key, "error", err)
		return zero, 0, false
	}
	if !ok {
		return zero, 0, false
	}

	age := entry.Age(l.now())
	if !l.policy.Usable(age) {
		return zero, 0, false
	}

	var v T
	if err := json.Unmarshal(entry.Payload, &v); err != nil {
		l.logger.Warn("cache entry unreadable", "key", key, "error", err)
		return zero, 0, false
	}
	return v, age, true
}

// Refresh runs fetch and caches its result. Concurrent refreshes of the same
// key share one fetch. A failed fetch leaves the cache untouched.
func (l *Loader[T]) Refresh(ctx context.Context, key string, fetch Fetch[T]) (T, error) {
	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := l.store.Put(ctx, Entry{Key: key, Payload: payload, StoredAt: l.now().UTC()}); err != nil {
			l.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Load delivers the cached value to onValue first, then revalidates unless
// the entry is still fresh and delivers the fetched value as well. When the
// fetch fails the error is returned and onValue is not called again.
func (l *Loader[T]) Load(ctx context.Context, key string, fetch Fetch[T], onValue func(T)) error {
	cached, age, ok := l.peek(ctx, key)
	if ok {
		onValue(cached)
		if l.policy.Fresh(age) {
			return nil
		}
	}

	fresh, err := l.Refresh(ctx, key, fetch)
	if err != nil {
		return err
	}
	onValue(fresh)
	return nil
}

// Invalidate removes key from the backing store.
func (l *Loader[T]) Invalidate(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
