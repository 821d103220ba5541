package cache

import (
	"context"
	"strings"
	"time"

	"github.com/billie-coop/metanet/internal/csync"
)

// MemoryStore keeps entries for the life of the process.
type MemoryStore struct {
	entries *csync.Map[string, Entry]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: csync.NewMap[string, Entry]()}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}
	e, ok := m.entries.Get(key)
	return e, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return ErrEmptyKey
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	m.entries.Set(entry.Key, entry)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.entries.Delete(strings.TrimSpace(key))
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.entries.Clear()
	return nil
}

// Len returns the number of entries.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}

func (m *MemoryStore) Close() error {
	return nil
}
