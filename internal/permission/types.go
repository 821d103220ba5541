// Package permission queues host permission requests and reports the user's
// decisions back to the host.
//
// Requests of every kind share one FIFO and one rendering surface: only the
// head is shown, and a decision always applies to the head.
package permission

import (
	"errors"
	"time"

	"github.com/billie-coop/metanet/internal/host"
)

// Kind is the category of a permission request.
type Kind string

const (
	KindProtocol    Kind = "protocol"
	KindBasket      Kind = "basket"
	KindCertificate Kind = "certificate"
	KindGroup       Kind = "group"
)

// Event returns the host event that carries requests of this kind.
func (k Kind) Event() host.EventName {
	switch k {
	case KindProtocol:
		return host.EventProtocolPermissionRequested
	case KindBasket:
		return host.EventBasketAccessRequested
	case KindCertificate:
		return host.EventCertificateAccessRequested
	case KindGroup:
		return host.EventGroupPermissionRequested
	}
	return ""
}

var (
	ErrEmptyQueue      = errors.New("no pending permission request")
	ErrNotHead         = errors.New("request is not at the head of the queue")
	ErrNothingSelected = errors.New("no permissions selected")
	ErrWrongKind       = errors.New("decision does not match request kind")
	ErrDecisionPending = errors.New("a decision on this request is already in progress")
	// ErrNoLongerPending means the host forgot the request, usually because
	// the requester gave up. The request is dropped from the queue.
	ErrNoLongerPending = errors.New("request is no longer pending")
)

// Request is one pending permission request. Exactly one of the kind
// specific fields is set.
type Request struct {
	ID          string
	Kind        Kind
	Originator  string
	Description string
	Renewal     bool
	ReceivedAt  time.Time

	Protocol    *host.ProtocolPermissionRequest
	Basket      *host.BasketAccessRequest
	Certificate *host.CertificateAccessRequest
	Group       *GroupSelection
}

// NewProtocolRequest wraps a protocol permission payload.
func NewProtocolRequest(p host.ProtocolPermissionRequest) *Request {
	return &Request{
		ID:          p.RequestID,
		Kind:        KindProtocol,
		Originator:  p.Originator,
		Description: p.Description,
		Renewal:     p.Renewal,
		ReceivedAt:  time.Now(),
		Protocol:    &p,
	}
}

// NewBasketRequest wraps a basket access payload.
func NewBasketRequest(p host.BasketAccessRequest) *Request {
	return &Request{
		ID:          p.RequestID,
		Kind:        KindBasket,
		Originator:  p.Originator,
		Description: p.Description,
		Renewal:     p.Renewal,
		ReceivedAt:  time.Now(),
		Basket:      &p,
	}
}

// NewCertificateRequest wraps a certificate access payload.
func NewCertificateRequest(p host.CertificateAccessRequest) *Request {
	return &Request{
		ID:          p.RequestID,
		Kind:        KindCertificate,
		Originator:  p.Originator,
		Description: p.Description,
		Renewal:     p.Renewal,
		ReceivedAt:  time.Now(),
		Certificate: &p,
	}
}

// NewGroupRequest wraps a group permission payload with every item enabled.
func NewGroupRequest(p host.GroupPermissionRequest) *Request {
	return &Request{
		ID:          p.RequestID,
		Kind:        KindGroup,
		Originator:  p.Originator,
		Description: p.Description,
		Renewal:     p.Renewal,
		ReceivedAt:  time.Now(),
		Group:       NewGroupSelection(p.Permissions),
	}
}
