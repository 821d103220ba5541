package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/billie-coop/metanet/internal/csync"
	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/focus"
	"github.com/billie-coop/metanet/internal/host"
)

// Queue is the single approval queue shared by every request kind.
type Queue struct {
	decisions host.Decisions
	arbiter   *focus.Arbiter
	broker    *events.Broker
	logger    *slog.Logger

	pending *csync.Queue[*Request]
	// mu orders queue transitions with the focus acquire/release they trigger.
	mu sync.Mutex
	// deciding is the ID of the head while its host call runs.
	deciding string
}

// QueueChangedPayload is published on events.QueueChanged.
type QueueChangedPayload struct {
	Len  int
	Head *Request
}

// NewQueue creates an empty approval queue.
func NewQueue(decisions host.Decisions, arbiter *focus.Arbiter, broker *events.Broker, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		decisions: decisions,
		arbiter:   arbiter,
		broker:    broker,
		logger:    logger.With("component", "approval-queue"),
		pending:   csync.NewQueue[*Request](),
	}
}

// Enqueue appends req to the tail. The first request of a burst acquires
// focus. A request whose ID is already queued is ignored.
func (q *Queue) Enqueue(ctx context.Context, req *Request) {
	q.mu.Lock()
	if q.pending.Any(func(r *Request) bool { return r.ID == req.ID }) {
		q.mu.Unlock()
		q.logger.Warn("duplicate permission request ignored", "request_id", req.ID, "kind", req.Kind)
		return
	}
	wasEmpty := q.pending.PushBack(req) == 0
	if wasEmpty && q.arbiter != nil {
		if err := q.arbiter.Acquire(ctx); err != nil {
			q.logger.Error("acquire focus", "error", err)
		}
	}
	q.mu.Unlock()

	q.logger.Info("permission requested",
		"request_id", req.ID,
		"kind", req.Kind,
		"originator", req.Originator,
	)
	q.publish()
}

// Head returns the request currently shown to the user.
func (q *Queue) Head() (*Request, bool) {
	return q.pending.Front()
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	return q.pending.Len()
}

// Pending returns the queued requests in arrival order.
func (q *Queue) Pending() []*Request {
	return q.pending.Snapshot()
}

// Grant approves the head request. For group requests every item that is
// still enabled in its selection is granted.
func (q *Queue) Grant(ctx context.Context, requestID string) error {
	return q.decide(ctx, requestID, func(req *Request) error {
		switch req.Kind {
		case KindProtocol:
			return q.decisions.GrantProtocolPermission(ctx, req.ID)
		case KindBasket:
			return q.decisions.GrantBasketAccess(ctx, req.ID)
		case KindCertificate:
			return q.decisions.GrantCertificateAccess(ctx, req.ID)
		case KindGroup:
			granted := req.Group.Granted()
			if granted.Empty() {
				return ErrNothingSelected
			}
			return q.decisions.GrantGroupPermission(ctx, req.ID, granted)
		}
		return fmt.Errorf("unknown request kind %q", req.Kind)
	})
}

// GrantGroup approves the head group request with an explicit subset.
func (q *Queue) GrantGroup(ctx context.Context, requestID string, granted host.GroupGrant) error {
	return q.decide(ctx, requestID, func(req *Request) error {
		if req.Kind != KindGroup {
			return ErrWrongKind
		}
		if granted.Empty() {
			return ErrNothingSelected
		}
		return q.decisions.GrantGroupPermission(ctx, req.ID, granted)
	})
}

// Deny rejects the head request as a whole.
func (q *Queue) Deny(ctx context.Context, requestID string) error {
	return q.decide(ctx, requestID, func(req *Request) error {
		switch req.Kind {
		case KindProtocol:
			return q.decisions.DenyProtocolPermission(ctx, req.ID)
		case KindBasket:
			return q.decisions.DenyBasketAccess(ctx, req.ID)
		case KindCertificate:
			return q.decisions.DenyCertificateAccess(ctx, req.ID)
		case KindGroup:
			return q.decisions.DenyGroupPermission(ctx, req.ID)
		}
		return fmt.Errorf("unknown request kind %q", req.Kind)
	})
}

// decide runs call against the head and pops it when call succeeds or the
// host no longer knows the request. Any other failure keeps the head so the
// user can try again. The host call runs without holding mu so new requests
// can still arrive; only one decision per head is in flight.
func (q *Queue) decide(ctx context.Context, requestID string, call func(*Request) error) error {
	q.mu.Lock()
	head, ok := q.pending.Front()
	switch {
	case !ok:
		q.mu.Unlock()
		return ErrEmptyQueue
	case head.ID != requestID:
		q.mu.Unlock()
		return ErrNotHead
	case q.deciding == head.ID:
		q.mu.Unlock()
		return ErrDecisionPending
	}
	q.deciding = head.ID
	q.mu.Unlock()

	err := call(head)
	gone := errors.Is(err, host.ErrUnknownRequest)

	q.mu.Lock()
	q.deciding = ""
	if err != nil && !gone {
		q.mu.Unlock()
		q.logger.Error("permission decision failed", "request_id", head.ID, "kind", head.Kind, "error", err)
		return fmt.Errorf("decide %s request %s: %w", head.Kind, head.ID, err)
	}
	current, ok := q.pending.Front()
	if !ok || current != head {
		q.mu.Unlock()
		return ErrNotHead
	}
	_, remaining, _ := q.pending.PopFront()
	if remaining == 0 && q.arbiter != nil {
		if err := q.arbiter.Release(ctx); err != nil {
			q.logger.Error("release focus", "error", err)
		}
	}
	q.mu.Unlock()
	q.publish()

	if gone {
		q.logger.Warn("permission request no longer pending", "request_id", head.ID, "kind", head.Kind, "remaining", remaining)
		return fmt.Errorf("%w: %s request %s: %w", ErrNoLongerPending, head.Kind, head.ID, err)
	}
	q.logger.Info("permission decided", "request_id", head.ID, "kind", head.Kind, "remaining", remaining)
	return nil
}

func (q *Queue) publish() {
	if q.broker == nil {
		return
	}
	head, _ := q.pending.Front()
	q.broker.Publish(events.Event{
		Type: events.QueueChanged,
		Payload: QueueChangedPayload{
			Len:  q.pending.Len(),
			Head: head,
		},
	})
}
