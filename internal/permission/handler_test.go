package permission

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/billie-coop/metanet/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerSubscribesAndUnsubscribes(t *testing.T) {
	q, h := newTestQueue(false)
	handlers := NewHandlers(h, q, nil)
	for _, handler := range handlers {
		handler.Start(context.Background())
		handler.Start(context.Background())
	}

	for _, kind := range []Kind{KindProtocol, KindBasket, KindCertificate, KindGroup} {
		assert.Equal(t, 1, h.bound(kind.Event()), kind)
	}

	for _, handler := range handlers {
		handler.Stop()
	}
	for _, kind := range []Kind{KindProtocol, KindBasket, KindCertificate, KindGroup} {
		assert.Zero(t, h.bound(kind.Event()), kind)
	}
}

func TestHandlerEnqueuesHostEvents(t *testing.T) {
	q, h := newTestQueue(false)
	for _, handler := range NewHandlers(h, q, nil) {
		handler.Start(context.Background())
	}

	h.emit(host.EventBasketAccessRequested, host.BasketAccessRequest{RequestID: "b1", Originator: "a.com", Basket: "todo"})
	h.emit(host.EventProtocolPermissionRequested, host.ProtocolPermissionRequest{RequestID: "p1", Originator: "a.com", ProtocolID: "todo", SecurityLevel: 2, Counterparty: "self"})
	h.emit(host.EventGroupPermissionRequested, host.GroupPermissionRequest{
		RequestID:   "g1",
		Originator:  "a.com",
		Permissions: host.GroupGrant{BasketAccess: []host.BasketGrant{{Basket: "todo"}}},
	})

	pending := q.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, KindBasket, pending[0].Kind)
	assert.Equal(t, "todo", pending[0].Basket.Basket)
	assert.Equal(t, KindProtocol, pending[1].Kind)
	assert.Equal(t, "self", pending[1].Protocol.Counterparty)
	assert.Equal(t, KindGroup, pending[2].Kind)
	assert.Len(t, pending[2].Group.Items(), 1)
	assert.Equal(t, 1, h.requested)
}

func TestHandlerDropsMalformedPayload(t *testing.T) {
	q, h := newTestQueue(true)
	handler := NewHandler(KindProtocol, h, q, nil)
	handler.Start(context.Background())

	h.mu.Lock()
	var cb host.Callback
	for _, c := range h.callbacks[host.EventProtocolPermissionRequested] {
		cb = c
	}
	h.mu.Unlock()
	require.NotNil(t, cb)

	cb(json.RawMessage(`{"requestID": 12`))
	cb(json.RawMessage(`{"originator": "a.com"}`))
	assert.Zero(t, q.Len())
}
