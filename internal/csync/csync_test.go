package csync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	assert.Equal(t, 0, q.PushBack(1))
	assert.Equal(t, 1, q.PushBack(2))
	q.PushBack(3)

	head, ok := q.Front()
	require.True(t, ok)
	assert.Equal(t, 1, head)

	for want := 1; want <= 3; want++ {
		got, remaining, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, 3-want, remaining)
	}

	_, _, ok = q.PopFront()
	assert.False(t, ok)
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.PushBack(v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
	assert.True(t, q.Any(func(v int) bool { return v == 49 }))
}

func TestMapSetIfAbsent(t *testing.T) {
	m := NewMap[string, int]()
	assert.True(t, m.SetIfAbsent("a", 1))
	assert.False(t, m.SetIfAbsent("a", 2))

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.Equal(t, 0, m.Len())
}
