package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/host/local"
)

const (
	code  = "424242"
	phone = "+15555550100"
)

func newLocalHost(t *testing.T, dir string) *local.Host {
	t.Helper()
	h, err := local.New(local.Options{
		Dir:        dir,
		Code:       code,
		BcryptCost: bcrypt.MinCost,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return h
}

func startFlow(t *testing.T, h *local.Host, broker *events.Broker) *Flow {
	t.Helper()
	f := NewFlow(h, broker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, f.Start(context.Background()))
	t.Cleanup(f.Stop)
	return f
}

func TestSignUpWalksEveryStep(t *testing.T) {
	ctx := context.Background()
	broker := events.NewBroker()
	defer broker.Close()
	sub := broker.Subscribe(events.AuthStateChanged)

	f := startFlow(t, newLocalHost(t, t.TempDir()), broker)
	assert.Equal(t, StatePhone, f.Snapshot().State)

	require.NoError(t, f.SubmitPhone(ctx, phone))
	assert.Equal(t, StateCode, f.Snapshot().State)

	require.NoError(t, f.SubmitCode(ctx, code))
	snap := f.Snapshot()
	assert.Equal(t, StatePassword, snap.State)
	assert.True(t, snap.NewUser)

	require.NoError(t, f.SubmitPassword(ctx, "pw-123456", "pw-123456"))
	snap = f.Snapshot()
	assert.Equal(t, StateRecoveryKey, snap.State)
	assert.NotEmpty(t, snap.RecoveryKey)

	require.NoError(t, f.AcknowledgeRecoveryKey(ctx))
	snap = f.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.NotEmpty(t, snap.IdentityKey)
	assert.True(t, snap.NewUser)
	assert.Empty(t, snap.RecoveryKey)

	var last Snapshot
	for len(sub) > 0 {
		last = (<-sub).Payload.(Snapshot)
	}
	assert.Equal(t, StateAuthenticated, last.State)
}

func TestAbortCodeReturnsToPhone(t *testing.T) {
	ctx := context.Background()
	f := startFlow(t, newLocalHost(t, t.TempDir()), nil)

	require.NoError(t, f.SubmitPhone(ctx, phone))
	require.NoError(t, f.AbortCode(ctx))
	assert.Equal(t, StatePhone, f.Snapshot().State)
	assert.ErrorIs(t, f.SubmitCode(ctx, code), ErrWrongState)
}

func TestActionsOutOfOrder(t *testing.T) {
	ctx := context.Background()
	f := startFlow(t, newLocalHost(t, t.TempDir()), nil)

	assert.ErrorIs(t, f.SubmitCode(ctx, code), ErrWrongState)
	assert.ErrorIs(t, f.SubmitPassword(ctx, "a", "a"), ErrWrongState)
	assert.ErrorIs(t, f.AcknowledgeRecoveryKey(ctx), ErrWrongState)
}

func TestHostErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	f := startFlow(t, newLocalHost(t, t.TempDir()), nil)

	require.NoError(t, f.SubmitPhone(ctx, phone))
	assert.ErrorIs(t, f.SubmitCode(ctx, "000000"), host.ErrInvalidCode)
	assert.Equal(t, StateCode, f.Snapshot().State)
}

func TestRecoveryLogin(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	h := newLocalHost(t, dir)
	f := startFlow(t, h, nil)
	require.NoError(t, f.SubmitPhone(ctx, phone))
	require.NoError(t, f.SubmitCode(ctx, code))
	require.NoError(t, f.SubmitPassword(ctx, "first", "first"))
	key := f.Snapshot().RecoveryKey
	require.NoError(t, f.AcknowledgeRecoveryKey(ctx))
	require.NoError(t, f.Logout(ctx))

	f.BeginRecovery()
	require.NoError(t, f.SubmitPhone(ctx, phone))
	require.NoError(t, f.SubmitCode(ctx, code))
	snap := f.Snapshot()
	require.Equal(t, StatePassword, snap.State)
	assert.False(t, snap.NewUser)
	assert.True(t, snap.Recovering)

	assert.ErrorIs(t, f.SubmitPassword(ctx, "second", "second"), ErrWrongState, "recovery key comes first")
	require.NoError(t, f.SubmitRecoveryKey(ctx, key))
	require.NoError(t, f.SubmitPassword(ctx, "second", "second"))
	assert.Equal(t, StateAuthenticated, f.Snapshot().State)
}

func TestStartPicksUpExistingSession(t *testing.T) {
	ctx := context.Background()
	h := newLocalHost(t, t.TempDir())
	first := startFlow(t, h, nil)
	require.NoError(t, first.SubmitPhone(ctx, phone))
	require.NoError(t, first.SubmitCode(ctx, code))
	require.NoError(t, first.SubmitPassword(ctx, "pw", "pw"))
	require.NoError(t, first.AcknowledgeRecoveryKey(ctx))
	first.Stop()

	second := startFlow(t, h, nil)
	snap := second.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, first.Snapshot().IdentityKey, snap.IdentityKey)
	assert.Equal(t, 1, h.Bound(host.EventCodeRequired))
}

func TestCancelRecovery(t *testing.T) {
	f := startFlow(t, newLocalHost(t, t.TempDir()), nil)

	f.BeginRecovery()
	require.True(t, f.Snapshot().Recovering)
	f.CancelRecovery()
	snap := f.Snapshot()
	assert.Equal(t, StatePhone, snap.State)
	assert.False(t, snap.Recovering)
}
