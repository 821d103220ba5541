package focus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFocus struct {
	focused    bool
	requests   int
	relinquish int
	queryErr   error
	requestErr error
}

func (f *fakeFocus) IsFocused(context.Context) (bool, error) {
	return f.focused, f.queryErr
}

func (f *fakeFocus) RequestFocus(context.Context) error {
	f.requests++
	if f.requestErr != nil {
		return f.requestErr
	}
	f.focused = true
	return nil
}

func (f *fakeFocus) RelinquishFocus(context.Context) error {
	f.relinquish++
	f.focused = false
	return nil
}

func TestArbiterRelinquishesWhatItTook(t *testing.T) {
	ctx := context.Background()
	h := &fakeFocus{}
	a := NewArbiter(h, nil)

	require.NoError(t, a.Acquire(ctx))
	require.NoError(t, a.Acquire(ctx))
	assert.Equal(t, 1, h.requests)
	assert.True(t, a.Held())

	require.NoError(t, a.Release(ctx))
	require.NoError(t, a.Release(ctx))
	assert.Equal(t, 1, h.relinquish)
	assert.False(t, a.Held())
}

func TestArbiterKeepsFocusItAlreadyHad(t *testing.T) {
	ctx := context.Background()
	h := &fakeFocus{focused: true}
	a := NewArbiter(h, nil)

	require.NoError(t, a.Acquire(ctx))
	require.NoError(t, a.Release(ctx))

	assert.Zero(t, h.requests)
	assert.Zero(t, h.relinquish)
	assert.True(t, h.focused)
}

func TestArbiterQueryError(t *testing.T) {
	h := &fakeFocus{queryErr: errors.New("bridge down")}
	a := NewArbiter(h, nil)

	err := a.Acquire(context.Background())
	require.Error(t, err)
	assert.False(t, a.Held())
}

func TestArbiterFailedRequestIsNotRelinquished(t *testing.T) {
	ctx := context.Background()
	h := &fakeFocus{requestErr: errors.New("window manager refused")}
	a := NewArbiter(h, nil)

	require.Error(t, a.Acquire(ctx))
	assert.False(t, a.Held())
	require.NoError(t, a.Release(ctx))
	assert.Zero(t, h.relinquish)

	h.requestErr = nil
	require.NoError(t, a.Acquire(ctx))
	require.NoError(t, a.Release(ctx))
	assert.Equal(t, 2, h.requests)
	assert.Equal(t, 1, h.relinquish)
}
