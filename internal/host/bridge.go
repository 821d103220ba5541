// Package host defines the contract between the client and the wallet host.
//
// The host owns every wallet, key and network operation. The client only
// subscribes to host events, renders decisions and reports them back through
// the Bridge. Nothing in this package performs wallet work itself.
package host

import (
	"context"
	"encoding/json"
	"errors"
)

// EventName names an event the host can emit.
type EventName string

const (
	EventProtocolPermissionRequested EventName = "onProtocolPermissionRequested"
	EventBasketAccessRequested       EventName = "onBasketAccessRequested"
	EventCertificateAccessRequested  EventName = "onCertificateAccessRequested"
	EventGroupPermissionRequested    EventName = "onGroupPermissionRequested"
	EventCodeRequired                EventName = "onCodeRequired"
	EventRecoveryKeyNeedsSaving      EventName = "onRecoveryKeyNeedsSaving"
	EventAccountStatusDiscovered     EventName = "onAccountStatusDiscovered"
	EventAuthenticationSuccess       EventName = "onAuthenticationSuccess"
)

// CallbackID identifies a registration returned by BindCallback.
type CallbackID int

// Callback receives the raw JSON payload of a host event.
type Callback func(payload json.RawMessage)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnknownRequest   = errors.New("unknown request")
	ErrInvalidCode      = errors.New("invalid code")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNoPendingAuth    = errors.New("no authentication in progress")
	ErrInvalidRecovery  = errors.New("invalid recovery key")
)

// Events is the event registration surface of the host.
type Events interface {
	BindCallback(name EventName, cb Callback) CallbackID
	UnbindCallback(name EventName, id CallbackID)
}

// Decisions reports the user's answer for a pending permission request.
type Decisions interface {
	GrantProtocolPermission(ctx context.Context, requestID string) error
	DenyProtocolPermission(ctx context.Context, requestID string) error
	GrantBasketAccess(ctx context.Context, requestID string) error
	DenyBasketAccess(ctx context.Context, requestID string) error
	GrantCertificateAccess(ctx context.Context, requestID string) error
	DenyCertificateAccess(ctx context.Context, requestID string) error
	GrantGroupPermission(ctx context.Context, requestID string, granted GroupGrant) error
	DenyGroupPermission(ctx context.Context, requestID string) error
}

// Focus lets the client ask the host to raise or lower its window.
type Focus interface {
	IsFocused(ctx context.Context) (bool, error)
	RequestFocus(ctx context.Context) error
	RelinquishFocus(ctx context.Context) error
}

// Session covers authentication, account and settings calls.
type Session interface {
	StartAuth(ctx context.Context, phone string) error
	SubmitCode(ctx context.Context, code string) error
	AbortCode(ctx context.Context) error
	SubmitPassword(ctx context.Context, password, confirm string) error
	SubmitRecoveryKey(ctx context.Context, key string) error
	AcknowledgeRecoveryKey(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	IsAuthenticated(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	GetSettings(ctx context.Context) (json.RawMessage, error)
	SetSettings(ctx context.Context, settings json.RawMessage) error
	GetVersion(ctx context.Context) (string, error)
}

// Wallet is the read side of the wallet the dashboard consumes.
type Wallet interface {
	Transactions(ctx context.Context, query TransactionQuery) ([]Transaction, error)
	TransactionOutputs(ctx context.Context, basket string) ([]Output, error)
	TotalValue(ctx context.Context) (int64, error)
	PublicKey(ctx context.Context, args PublicKeyArgs) (string, error)
	FindCertificates(ctx context.Context, query CertificateQuery) ([]Certificate, error)
	ProveCertificate(ctx context.Context, args ProveArgs) (Certificate, error)
}

// Bridge is everything the client consumes from the host.
type Bridge interface {
	Events
	Decisions
	Focus
	Session
	Wallet
}
