// Package focus arbitrates the host window focus around pending decisions.
package focus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/billie-coop/metanet/internal/host"
)

// Arbiter requests focus when work needing the user arrives and gives it
// back afterwards, but only when it was the one that took it.
type Arbiter struct {
	host   host.Focus
	logger *slog.Logger

	mu                   sync.Mutex
	held                 bool
	wasOriginallyFocused bool
}

// NewArbiter creates an arbiter over the host focus calls.
func NewArbiter(h host.Focus, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{
		host:   h,
		logger: logger.With("component", "focus"),
	}
}

// Acquire records whether the window was already focused and requests
// focus when it was not. Calling Acquire while held is a no-op.
func (a *Arbiter) Acquire(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.held {
		return nil
	}

	focused, err := a.host.IsFocused(ctx)
	if err != nil {
		return fmt.Errorf("query focus: %w", err)
	}
	if !focused {
		// not held unless the request went through
		if err := a.host.RequestFocus(ctx); err != nil {
			return fmt.Errorf("request focus: %w", err)
		}
		a.logger.Debug("focus requested")
	}
	a.held = true
	a.wasOriginallyFocused = focused
	return nil
}

// Release ends the acquisition. Focus is relinquished only when Acquire
// had to request it.
func (a *Arbiter) Release(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.held {
		return nil
	}
	a.held = false
	if a.wasOriginallyFocused {
		return nil
	}

	if err := a.host.RelinquishFocus(ctx); err != nil {
		return fmt.Errorf("relinquish focus: %w", err)
	}
	a.logger.Debug("focus relinquished")
	return nil
}

// Held reports whether an acquisition is outstanding.
func (a *Arbiter) Held() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.held
}
