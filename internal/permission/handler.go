package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/billie-coop/metanet/internal/host"
)

// Handler bridges one host event stream into the approval queue.
type Handler struct {
	kind   Kind
	events host.Events
	queue  *Queue
	logger *slog.Logger

	mu    sync.Mutex
	id    host.CallbackID
	bound bool
}

// NewHandler creates a handler for kind.
func NewHandler(kind Kind, events host.Events, queue *Queue, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		kind:   kind,
		events: events,
		queue:  queue,
		logger: logger.With("component", "permission-handler", "kind", kind),
	}
}

// NewHandlers creates one handler per request kind.
func NewHandlers(events host.Events, queue *Queue, logger *slog.Logger) []*Handler {
	kinds := []Kind{KindProtocol, KindBasket, KindCertificate, KindGroup}
	handlers := make([]*Handler, 0, len(kinds))
	for _, k := range kinds {
		handlers = append(handlers, NewHandler(k, events, queue, logger))
	}
	return handlers
}

// Kind returns the request kind this handler serves.
func (h *Handler) Kind() Kind {
	return h.kind
}

// Start registers the handler with the host. ctx is used for the focus calls
// made when requests arrive.
func (h *Handler) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bound {
		return
	}
	h.id = h.events.BindCallback(h.kind.Event(), func(payload json.RawMessage) {
		req, err := Decode(h.kind, payload)
		if err != nil {
			h.logger.Error("decode permission request", "error", err)
			return
		}
		h.queue.Enqueue(ctx, req)
	})
	h.bound = true
}

// Stop unregisters the handler using the ID returned at registration.
func (h *Handler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.bound {
		return
	}
	h.events.UnbindCallback(h.kind.Event(), h.id)
	h.bound = false
}

// Decode turns a host payload into a queued request.
func Decode(kind Kind, payload json.RawMessage) (*Request, error) {
	var req *Request
	switch kind {
	case KindProtocol:
		var p host.ProtocolPermissionRequest
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal protocol request: %w", err)
		}
		req = NewProtocolRequest(p)
	case KindBasket:
		var p host.BasketAccessRequest
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal basket request: %w", err)
		}
		req = NewBasketRequest(p)
	case KindCertificate:
		var p host.CertificateAccessRequest
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal certificate request: %w", err)
		}
		req = NewCertificateRequest(p)
	case KindGroup:
		var p host.GroupPermissionRequest
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal group request: %w", err)
		}
		req = NewGroupRequest(p)
	default:
		return nil, fmt.Errorf("unknown request kind %q", kind)
	}
	if req.ID == "" {
		return nil, fmt.Errorf("%s request without requestID", kind)
	}
	return req, nil
}
