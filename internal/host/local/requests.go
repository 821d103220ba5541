package local

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/billie-coop/metanet/internal/host"
)

const (
	kindProtocol    = "protocol"
	kindBasket      = "basket"
	kindCertificate = "certificate"
	kindGroup       = "group"
)

type decision struct {
	granted bool
	group   host.GroupGrant
}

type pendingRequest struct {
	kind     string
	decision chan decision
}

// RequestProtocolPermission asks the user to approve a protocol and blocks
// until they decide or ctx ends. Previously granted identical requests are
// approved without asking unless req.Renewal is set.
func (h *Host) RequestProtocolPermission(ctx context.Context, req host.ProtocolPermissionRequest) (bool, error) {
	g := protocolGrant(req.Originator, req.ProtocolID, req.SecurityLevel, req.Counterparty)
	if !req.Renewal && h.remembered(g) {
		return true, nil
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	d, err := h.await(ctx, req.RequestID, kindProtocol, host.EventProtocolPermissionRequested, req)
	if err != nil {
		return false, err
	}
	if d.granted {
		h.remember(g)
	}
	return d.granted, nil
}

// RequestBasketAccess asks the user to approve basket access.
func (h *Host) RequestBasketAccess(ctx context.Context, req host.BasketAccessRequest) (bool, error) {
	g := basketGrant(req.Originator, req.Basket)
	if !req.Renewal && h.remembered(g) {
		return true, nil
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	d, err := h.await(ctx, req.RequestID, kindBasket, host.EventBasketAccessRequested, req)
	if err != nil {
		return false, err
	}
	if d.granted {
		h.remember(g)
	}
	return d.granted, nil
}

// RequestCertificateAccess asks the user to reveal certificate fields.
func (h *Host) RequestCertificateAccess(ctx context.Context, req host.CertificateAccessRequest) (bool, error) {
	g := certificateGrant(req.Originator, req.CertificateType, req.VerifierPublicKey, req.Fields)
	if !req.Renewal && h.remembered(g) {
		return true, nil
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	d, err := h.await(ctx, req.RequestID, kindCertificate, host.EventCertificateAccessRequested, req)
	if err != nil {
		return false, err
	}
	if d.granted {
		h.remember(g)
	}
	return d.granted, nil
}

// RequestGroupPermission asks for several permissions at once. It returns the
// subset the user approved; ok is false when the whole group was denied.
func (h *Host) RequestGroupPermission(ctx context.Context, req host.GroupPermissionRequest) (granted host.GroupGrant, ok bool, err error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	d, err := h.await(ctx, req.RequestID, kindGroup, host.EventGroupPermissionRequested, req)
	if err != nil {
		return host.GroupGrant{}, false, err
	}
	if !d.granted {
		return host.GroupGrant{}, false, nil
	}

	for _, p := range d.group.ProtocolPermissions {
		h.remember(protocolGrant(req.Originator, p.ProtocolID, p.SecurityLevel, p.Counterparty))
	}
	for _, b := range d.group.BasketAccess {
		h.remember(basketGrant(req.Originator, b.Basket))
	}
	for _, c := range d.group.CertificateAccess {
		h.remember(certificateGrant(req.Originator, c.CertificateType, c.VerifierPublicKey, c.Fields))
	}
	return d.group, true, nil
}

// PendingRequests reports how many requests are waiting for a decision.
func (h *Host) PendingRequests() int {
	return h.pending.Len()
}

func (h *Host) await(ctx context.Context, requestID, kind string, event host.EventName, payload any) (decision, error) {
	p := &pendingRequest{kind: kind, decision: make(chan decision, 1)}
	if !h.pending.SetIfAbsent(requestID, p) {
		return decision{}, fmt.Errorf("request %s already pending", requestID)
	}
	defer h.pending.Delete(requestID)

	h.logger.Info("permission requested", "kind", kind, "request_id", requestID)
	if err := h.Emit(event, payload); err != nil {
		return decision{}, err
	}

	select {
	case d := <-p.decision:
		h.logger.Info("permission decided", "kind", kind, "request_id", requestID, "granted", d.granted)
		return d, nil
	case <-ctx.Done():
		return decision{}, ctx.Err()
	}
}

// decide delivers d to the waiting requester. Each request can be decided once.
func (h *Host) decide(kind, requestID string, d decision) error {
	p, ok := h.pending.Get(requestID)
	if !ok || p.kind != kind {
		return fmt.Errorf("%s request %s: %w", kind, requestID, host.ErrUnknownRequest)
	}
	if !h.pending.Delete(requestID) {
		return fmt.Errorf("%s request %s: %w", kind, requestID, host.ErrUnknownRequest)
	}
	p.decision <- d
	return nil
}

// GrantProtocolPermission approves a pending protocol request.
func (h *Host) GrantProtocolPermission(_ context.Context, requestID string) error {
	return h.decide(kindProtocol, requestID, decision{granted: true})
}

// DenyProtocolPermission rejects a pending protocol request.
func (h *Host) DenyProtocolPermission(_ context.Context, requestID string) error {
	return h.decide(kindProtocol, requestID, decision{})
}

// GrantBasketAccess approves a pending basket request.
func (h *Host) GrantBasketAccess(_ context.Context, requestID string) error {
	return h.decide(kindBasket, requestID, decision{granted: true})
}

// DenyBasketAccess rejects a pending basket request.
func (h *Host) DenyBasketAccess(_ context.Context, requestID string) error {
	return h.decide(kindBasket, requestID, decision{})
}

// GrantCertificateAccess approves a pending certificate request.
func (h *Host) GrantCertificateAccess(_ context.Context, requestID string) error {
	return h.decide(kindCertificate, requestID, decision{granted: true})
}

// DenyCertificateAccess rejects a pending certificate request.
func (h *Host) DenyCertificateAccess(_ context.Context, requestID string) error {
	return h.decide(kindCertificate, requestID, decision{})
}

// GrantGroupPermission approves the given subset of a pending group request.
func (h *Host) GrantGroupPermission(_ context.Context, requestID string, granted host.GroupGrant) error {
	return h.decide(kindGroup, requestID, decision{granted: true, group: granted})
}

// DenyGroupPermission rejects a whole pending group request.
func (h *Host) DenyGroupPermission(_ context.Context, requestID string) error {
	return h.decide(kindGroup, requestID, decision{})
}

func (h *Host) remembered(g grant) bool {
	v := h.vault.Get()
	return v.granted(g)
}

func (h *Host) remember(g grant) {
	err := h.vault.Update(func(v *vault) error {
		v.remember(g)
		return nil
	})
	if err != nil {
		h.logger.Error("failed to persist grant", "kind", g.Kind, "originator", g.Originator, "error", err)
	}
}

func protocolGrant(originator, protocolID string, level host.SecurityLevel, counterparty string) grant {
	return grant{
		Originator: originator,
		Kind:       kindProtocol,
		Key:        fmt.Sprintf("%d/%s/%s", level, protocolID, counterparty),
	}
}

func basketGrant(originator, basket string) grant {
	return grant{Originator: originator, Kind: kindBasket, Key: basket}
}

func certificateGrant(originator, certType, verifier string, fields []string) grant {
	fields = slices.Clone(fields)
	slices.Sort(fields)
	return grant{
		Originator: originator,
		Kind:       kindCertificate,
		Key:        fmt.Sprintf("%s/%s/%v", certType, verifier, fields),
	}
}
