// Package cache stores display metadata that can always be fetched again.
//
// Entries are opaque JSON payloads stamped with the time they were written.
// Writers do not coordinate: the last Put for a key wins.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned for blank cache keys.
var ErrEmptyKey = errors.New("cache key is required")

// Entry is one cached payload.
type Entry struct {
	Key      string
	Payload  []byte
	StoredAt time.Time
}

// Age reports how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Store is a key/value backend for cache entries.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Policy controls how old an entry may be before it is revalidated or
// ignored. Zero values mean "always revalidate" and "never ignore".
type Policy struct {
	FreshFor time.Duration
	MaxStale time.Duration
}

// Fresh reports whether an entry of this age can skip revalidation.
func (p Policy) Fresh(age time.Duration) bool {
	return p.FreshFor > 0 && age < p.FreshFor
}

// Usable reports whether an entry of this age may be shown at all.
func (p Policy) Usable(age time.Duration) bool {
	return p.MaxStale <= 0 || age <= p.MaxStale
}
