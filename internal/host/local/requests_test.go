package local

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/metanet/internal/host"
)

// answer binds a callback that decides every request of the event as soon as
// it is emitted and counts how often it was asked.
func answer(t *testing.T, h *Host, name host.EventName, decide func(id string) error) *int {
	t.Helper()
	asked := 0
	h.BindCallback(name, func(payload json.RawMessage) {
		var req struct {
			RequestID string `json:"requestID"`
		}
		require.NoError(t, json.Unmarshal(payload, &req))
		asked++
		require.NoError(t, decide(req.RequestID))
	})
	return &asked
}

func TestProtocolGrantIsRemembered(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	asked := answer(t, h, host.EventProtocolPermissionRequested, func(id string) error {
		return h.GrantProtocolPermission(ctx, id)
	})

	req := host.ProtocolPermissionRequest{
		Originator:    "todo.example.com",
		ProtocolID:    "todo list",
		SecurityLevel: host.SecurityLevelCounterparty,
		Counterparty:  host.CounterpartySelf,
	}

	ok, err := h.RequestProtocolPermission(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, *asked)

	ok, err = h.RequestProtocolPermission(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, *asked, "remembered grant skips the prompt")

	req.Renewal = true
	_, err = h.RequestProtocolPermission(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, *asked, "renewal always prompts")
}

func TestDeniedBasketIsNotRemembered(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	asked := answer(t, h, host.EventBasketAccessRequested, func(id string) error {
		return h.DenyBasketAccess(ctx, id)
	})

	req := host.BasketAccessRequest{Originator: "todo.example.com", Basket: "todo tokens"}
	for range 2 {
		ok, err := h.RequestBasketAccess(ctx, req)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 2, *asked)
}

func TestGrantsPersistAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	req := host.CertificateAccessRequest{
		Originator:        "shop.example.com",
		CertificateType:   "email",
		Fields:            []string{"email", "name"},
		VerifierPublicKey: "02ab",
	}

	h := newTestHost(t, dir)
	answer(t, h, host.EventCertificateAccessRequested, func(id string) error {
		return h.GrantCertificateAccess(ctx, id)
	})
	ok, err := h.RequestCertificateAccess(ctx, req)
	require.NoError(t, err)
	require.True(t, ok)

	reopened := newTestHost(t, dir)
	asked := answer(t, reopened, host.EventCertificateAccessRequested, func(id string) error {
		return reopened.DenyCertificateAccess(ctx, id)
	})
	req.Fields = []string{"name", "email"}
	ok, err = reopened.RequestCertificateAccess(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, *asked)
}

func TestDecisionKindMustMatch(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()

	var wrongKindErr error
	h.BindCallback(host.EventBasketAccessRequested, func(payload json.RawMessage) {
		var req host.BasketAccessRequest
		require.NoError(t, json.Unmarshal(payload, &req))
		wrongKindErr = h.GrantProtocolPermission(ctx, req.RequestID)
		require.NoError(t, h.GrantBasketAccess(ctx, req.RequestID))
	})

	ok, err := h.RequestBasketAccess(ctx, host.BasketAccessRequest{Originator: "a.com", Basket: "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ErrorIs(t, wrongKindErr, host.ErrUnknownRequest)
}

func TestRequestIDIsAssigned(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()

	var seen host.BasketAccessRequest
	h.BindCallback(host.EventBasketAccessRequested, func(payload json.RawMessage) {
		require.NoError(t, json.Unmarshal(payload, &seen))
		require.NoError(t, h.DenyBasketAccess(ctx, seen.RequestID))
	})

	_, err := h.RequestBasketAccess(ctx, host.BasketAccessRequest{Originator: "a.com", Basket: "b"})
	require.NoError(t, err)
	assert.Len(t, seen.RequestID, 36)
}

func TestGroupGrantReturnsApprovedSubset(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()

	subset := host.GroupGrant{
		BasketAccess: []host.BasketGrant{{Basket: "todo tokens"}},
	}
	answer(t, h, host.EventGroupPermissionRequested, func(id string) error {
		return h.GrantGroupPermission(ctx, id, subset)
	})

	granted, ok, err := h.RequestGroupPermission(ctx, host.GroupPermissionRequest{
		Originator: "todo.example.com",
		Permissions: host.GroupGrant{
			SpendingAuthorization: &host.SpendingAuthorization{Amount: 1000},
			BasketAccess:          []host.BasketGrant{{Basket: "todo tokens"}},
			ProtocolPermissions:   []host.ProtocolGrant{{ProtocolID: "todo list", SecurityLevel: 2}},
		},
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, subset, granted)

	// the approved basket is now remembered
	ok, err = h.RequestBasketAccess(ctx, host.BasketAccessRequest{Originator: "todo.example.com", Basket: "todo tokens"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGroupDenyIsWhole(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	answer(t, h, host.EventGroupPermissionRequested, func(id string) error {
		return h.DenyGroupPermission(ctx, id)
	})

	granted, ok, err := h.RequestGroupPermission(ctx, host.GroupPermissionRequest{
		Originator:  "a.com",
		Permissions: host.GroupGrant{BasketAccess: []host.BasketGrant{{Basket: "b"}}},
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, granted.Empty())
}
