// Package local is an in-process wallet host. It implements host.Bridge and
// host.Registry against a vault file and seeded wallet data so the client can
// run end to end without an external wallet.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/billie-coop/metanet/internal/csync"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/state"
)

// DefaultVersion is reported by GetVersion when Options.Version is empty.
const DefaultVersion = "0.1.0-local"

// Options configure a local host.
type Options struct {
	// Dir holds vault.json.
	Dir string
	// Code, when set, is issued as every one-time code instead of a random one.
	Code string
	// Version reported to the client.
	Version string
	// Seed replaces the embedded demo wallet and registry data.
	Seed *Seed
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
}

type binding struct {
	id   host.CallbackID
	name host.EventName
	cb   host.Callback
}

// Host is the in-process host.
type Host struct {
	logger     *slog.Logger
	vault      *state.Store[vault]
	seed       Seed
	version    string
	fixedCode  string
	bcryptCost int

	callbacks *csync.Map[host.CallbackID, binding]
	nextID    atomic.Int64
	pending   *csync.Map[string, *pendingRequest]

	mu                sync.Mutex
	focused           bool
	focusRequests     int
	focusRelinquishes int
	auth              pendingAuth
	authenticated     bool
	dataKey           []byte
}

var (
	_ host.Bridge   = (*Host)(nil)
	_ host.Registry = (*Host)(nil)
)

// New opens the vault under opts.Dir and returns a ready host.
func New(opts Options) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := state.Open(filepath.Join(opts.Dir, "vault.json"), newVault)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	seed := opts.Seed
	if seed == nil {
		seed, err = DefaultSeed()
		if err != nil {
			return nil, err
		}
	}

	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Host{
		logger:     logger.With("component", "local-host"),
		vault:      store,
		seed:       *seed,
		version:    version,
		fixedCode:  opts.Code,
		bcryptCost: cost,
		callbacks:  csync.NewMap[host.CallbackID, binding](),
		pending:    csync.NewMap[string, *pendingRequest](),
	}, nil
}

// BindCallback registers cb for name.
func (h *Host) BindCallback(name host.EventName, cb host.Callback) host.CallbackID {
	id := host.CallbackID(h.nextID.Add(1))
	h.callbacks.Set(id, binding{id: id, name: name, cb: cb})
	return id
}

// UnbindCallback removes a registration. Unknown IDs are ignored.
func (h *Host) UnbindCallback(name host.EventName, id host.CallbackID) {
	if b, ok := h.callbacks.Get(id); ok && b.name == name {
		h.callbacks.Delete(id)
	}
}

// Bound reports how many callbacks are registered for name.
func (h *Host) Bound(name host.EventName) int {
	n := 0
	h.callbacks.Range(func(_ host.CallbackID, b binding) bool {
		if b.name == name {
			n++
		}
		return true
	})
	return n
}

// Emit marshals payload and delivers it to every callback bound to name in
// registration order. Callbacks run on the caller's goroutine.
func (h *Host) Emit(name host.EventName, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	var targets []binding
	for _, b := range h.callbacks.Values() {
		if b.name == name {
			targets = append(targets, b)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	h.logger.Debug("emitting event", "event", name, "callbacks", len(targets))
	for _, b := range targets {
		b.cb(raw)
	}
	return nil
}

// IsFocused reports the host window focus.
func (h *Host) IsFocused(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused, nil
}

// RequestFocus raises the host window.
func (h *Host) RequestFocus(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = true
	h.focusRequests++
	return nil
}

// RelinquishFocus lowers the host window.
func (h *Host) RelinquishFocus(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = false
	h.focusRelinquishes++
	return nil
}

// SetFocused simulates the user focusing or leaving the window.
func (h *Host) SetFocused(focused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = focused
}

// FocusCalls returns how often focus was requested and relinquished.
func (h *Host) FocusCalls() (requested, relinquished int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focusRequests, h.focusRelinquishes
}

// GetVersion returns the host version.
func (h *Host) GetVersion(context.Context) (string, error) {
	return h.version, nil
}
