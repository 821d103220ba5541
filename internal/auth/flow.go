// Package auth follows the host's login events and exposes where the user
// is in the phone, code, password sequence.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/host"
)

// State is a step of the login sequence.
type State string

const (
	StatePhone         State = "phone"
	StateCode          State = "code"
	StatePassword      State = "password"
	StateRecoveryKey   State = "recovery-key"
	StateAuthenticated State = "authenticated"
)

// ErrWrongState is returned when an action does not fit the current step.
var ErrWrongState = errors.New("action not allowed in current login step")

// Snapshot is a copy of the flow state published on every change.
type Snapshot struct {
	State State
	Phone string
	// NewUser is known once the code was accepted.
	NewUser bool
	// Recovering is set when the user logs in with a recovery key instead
	// of a password; RecoveryAccepted once that key was verified.
	Recovering       bool
	RecoveryAccepted bool
	// RecoveryKey is the key to save during sign up.
	RecoveryKey string
	IdentityKey string
}

// Bridge is the part of the host the flow needs.
type Bridge interface {
	host.Events
	host.Session
}

// Flow tracks the login sequence.
type Flow struct {
	host   Bridge
	broker *events.Broker
	logger *slog.Logger

	mu    sync.Mutex
	snap  Snapshot
	bound map[host.EventName]host.CallbackID
}

// NewFlow creates a flow at the phone step.
func NewFlow(h Bridge, broker *events.Broker, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		host:   h,
		broker: broker,
		logger: logger.With("component", "auth"),
		snap:   Snapshot{State: StatePhone},
		bound:  make(map[host.EventName]host.CallbackID),
	}
}

// Start binds the host login events and picks up an existing session.
func (f *Flow) Start(ctx context.Context) error {
	f.mu.Lock()
	if len(f.bound) == 0 {
		f.bound[host.EventCodeRequired] = f.host.BindCallback(host.EventCodeRequired, f.onCodeRequired)
		f.bound[host.EventAccountStatusDiscovered] = f.host.BindCallback(host.EventAccountStatusDiscovered, f.onAccountStatus)
		f.bound[host.EventRecoveryKeyNeedsSaving] = f.host.BindCallback(host.EventRecoveryKeyNeedsSaving, f.onRecoveryKey)
		f.bound[host.EventAuthenticationSuccess] = f.host.BindCallback(host.EventAuthenticationSuccess, f.onAuthenticated)
	}
	f.mu.Unlock()

	authed, err := f.host.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if authed {
		key, err := f.identityKey(ctx)
		if err != nil {
			f.logger.Warn("session active but identity key unavailable", "error", err)
		}
		f.transition(func(s *Snapshot) {
			*s = Snapshot{State: StateAuthenticated, IdentityKey: key}
		})
	}
	return nil
}

// Stop unbinds the host events.
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, id := range f.bound {
		f.host.UnbindCallback(name, id)
	}
	clear(f.bound)
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// BeginRecovery switches to logging in with the recovery key.
func (f *Flow) BeginRecovery() {
	f.transition(func(s *Snapshot) {
		*s = Snapshot{State: StatePhone, Recovering: true}
	})
}

// CancelRecovery goes back to the normal login at the phone step.
func (f *Flow) CancelRecovery() {
	f.transition(func(s *Snapshot) {
		*s = Snapshot{State: StatePhone}
	})
}

// SubmitPhone asks the host to send a code.
func (f *Flow) SubmitPhone(ctx context.Context, phone string) error {
	if err := f.expect(StatePhone); err != nil {
		return err
	}
	f.transition(func(s *Snapshot) { s.Phone = phone })
	return f.host.StartAuth(ctx, phone)
}

// SubmitCode sends the one-time code.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	if err := f.expect(StateCode); err != nil {
		return err
	}
	return f.host.SubmitCode(ctx, code)
}

// AbortCode cancels code entry and returns to the phone step.
func (f *Flow) AbortCode(ctx context.Context) error {
	if err := f.expect(StateCode); err != nil {
		return err
	}
	if err := f.host.AbortCode(ctx); err != nil {
		return err
	}
	f.transition(func(s *Snapshot) {
		*s = Snapshot{State: StatePhone, Recovering: s.Recovering}
	})
	return nil
}

// SubmitRecoveryKey verifies the recovery key; a new password follows.
func (f *Flow) SubmitRecoveryKey(ctx context.Context, key string) error {
	snap := f.Snapshot()
	if snap.State != StatePassword || !snap.Recovering || snap.NewUser {
		return ErrWrongState
	}
	if err := f.host.SubmitRecoveryKey(ctx, key); err != nil {
		return err
	}
	f.transition(func(s *Snapshot) { s.RecoveryAccepted = true })
	return nil
}

// SubmitPassword logs in, creates the account, or sets a new password after
// recovery, depending on what the host reported.
func (f *Flow) SubmitPassword(ctx context.Context, password, confirm string) error {
	snap := f.Snapshot()
	if snap.State != StatePassword {
		return ErrWrongState
	}
	if snap.Recovering && !snap.NewUser && !snap.RecoveryAccepted {
		return ErrWrongState
	}
	return f.host.SubmitPassword(ctx, password, confirm)
}

// AcknowledgeRecoveryKey confirms the new recovery key was saved.
func (f *Flow) AcknowledgeRecoveryKey(ctx context.Context) error {
	if err := f.expect(StateRecoveryKey); err != nil {
		return err
	}
	return f.host.AcknowledgeRecoveryKey(ctx)
}

// Logout ends the session.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.host.Logout(ctx); err != nil {
		return err
	}
	f.transition(func(s *Snapshot) { *s = Snapshot{State: StatePhone} })
	return nil
}

func (f *Flow) expect(state State) error {
	if got := f.Snapshot().State; got != state {
		return fmt.Errorf("%w: at %s, need %s", ErrWrongState, got, state)
	}
	return nil
}

func (f *Flow) transition(fn func(*Snapshot)) {
	f.mu.Lock()
	fn(&f.snap)
	snap := f.snap
	f.mu.Unlock()

	f.logger.Debug("auth state", "state", snap.State, "new_user", snap.NewUser, "recovering", snap.Recovering)
	if f.broker != nil {
		f.broker.Publish(events.Event{Type: events.AuthStateChanged, Payload: snap})
	}
}

func (f *Flow) identityKey(ctx context.Context) (string, error) {
	w, ok := f.host.(host.Wallet)
	if !ok {
		return "", nil
	}
	return w.PublicKey(ctx, host.PublicKeyArgs{IdentityKey: true})
}

func (f *Flow) onCodeRequired(raw json.RawMessage) {
	var p host.CodeRequired
	if err := json.Unmarshal(raw, &p); err != nil {
		f.logger.Error("bad onCodeRequired payload", "error", err)
		return
	}
	f.transition(func(s *Snapshot) {
		s.State = StateCode
		if p.Phone != "" {
			s.Phone = p.Phone
		}
	})
}

func (f *Flow) onAccountStatus(raw json.RawMessage) {
	var p host.AccountStatus
	if err := json.Unmarshal(raw, &p); err != nil {
		f.logger.Error("bad onAccountStatusDiscovered payload", "error", err)
		return
	}
	f.transition(func(s *Snapshot) {
		s.State = StatePassword
		s.NewUser = p.Status == host.AccountNew
	})
}

func (f *Flow) onRecoveryKey(raw json.RawMessage) {
	var p host.RecoveryKey
	if err := json.Unmarshal(raw, &p); err != nil {
		f.logger.Error("bad onRecoveryKeyNeedsSaving payload", "error", err)
		return
	}
	f.transition(func(s *Snapshot) {
		s.State = StateRecoveryKey
		s.RecoveryKey = p.Key
	})
}

func (f *Flow) onAuthenticated(raw json.RawMessage) {
	var p host.AuthenticationSuccess
	if err := json.Unmarshal(raw, &p); err != nil {
		f.logger.Error("bad onAuthenticationSuccess payload", "error", err)
		return
	}
	f.logger.Info("authenticated")
	f.transition(func(s *Snapshot) {
		newUser := s.NewUser
		*s = Snapshot{State: StateAuthenticated, IdentityKey: p.IdentityKey, NewUser: newUser}
	})
}
