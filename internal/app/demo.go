package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/host/local"
)

// DemoStep is one simulated app request.
type DemoStep struct {
	Name string
	Run  func(ctx context.Context, h *local.Host) (string, error)
}

// DemoSteps is the default scenario: a todo app asks for each kind of
// permission, then a shop asks for a certificate.
func DemoSteps() []DemoStep {
	return []DemoStep{
		{
			Name: "group",
			Run: func(ctx context.Context, h *local.Host) (string, error) {
				granted, ok, err := h.RequestGroupPermission(ctx, host.GroupPermissionRequest{
					Originator:  "todo.babbage.systems",
					Description: "ToDo needs a few permissions to **store your tasks** on chain.",
					Permissions: host.GroupGrant{
						SpendingAuthorization: &host.SpendingAuthorization{Amount: 5000, Description: "Fees for saving tasks"},
						ProtocolPermissions: []host.ProtocolGrant{
							{ProtocolID: "todo list", SecurityLevel: host.SecurityLevelCounterparty, Counterparty: host.CounterpartySelf},
						},
						BasketAccess: []host.BasketGrant{{Basket: "todo tokens", Description: "Your task tokens"}},
					},
				})
				if err != nil || !ok {
					return outcome(ok), err
				}
				n := len(granted.ProtocolPermissions) + len(granted.BasketAccess) + len(granted.CertificateAccess)
				if granted.SpendingAuthorization != nil {
					n++
				}
				return fmt.Sprintf("granted %d permissions", n), nil
			},
		},
		{
			Name: "protocol",
			Run: func(ctx context.Context, h *local.Host) (string, error) {
				ok, err := h.RequestProtocolPermission(ctx, host.ProtocolPermissionRequest{
					Originator:    "todo.babbage.systems",
					ProtocolID:    "todo list",
					SecurityLevel: host.SecurityLevelCounterparty,
					Counterparty:  host.CounterpartySelf,
					Description:   "Encrypt a new task",
					Renewal:       true,
				})
				return outcome(ok), err
			},
		},
		{
			Name: "basket",
			Run: func(ctx context.Context, h *local.Host) (string, error) {
				ok, err := h.RequestBasketAccess(ctx, host.BasketAccessRequest{
					Originator:  "todo.babbage.systems",
					Basket:      "todo tokens",
					Description: "List your saved tasks",
					Renewal:     true,
				})
				return outcome(ok), err
			},
		},
		{
			Name: "certificate",
			Run: func(ctx context.Context, h *local.Host) (string, error) {
				ok, err := h.RequestCertificateAccess(ctx, host.CertificateAccessRequest{
					Originator:        "shop.example.com",
					CertificateType:   "z40BOInXkI8m7f/wBrv4MJ09bZfzZbTj2fJqCtONqCY=",
					Fields:            []string{"userName", "profilePhoto"},
					VerifierPublicKey: local.OperatorCommunity,
					Description:       "Show your verified handle on your order",
					Renewal:           true,
				})
				return outcome(ok), err
			},
		},
	}
}

func outcome(ok bool) string {
	if ok {
		return "granted"
	}
	return "denied"
}

// Simulator plays DemoSteps against the local host once the user is signed
// in, so the approval dialogs can be tried without a real app.
type Simulator struct {
	app      *App
	steps    []DemoStep
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewSimulator creates a simulator that starts a step every interval.
func NewSimulator(a *App, steps []DemoStep, interval time.Duration) *Simulator {
	return &Simulator{
		app:      a,
		steps:    steps,
		interval: interval,
		logger:   a.Logger.With("component", "demo"),
	}
}

// Run waits for authentication, then launches the steps. Each step blocks
// until the user decides, so several may be queued at once. Run returns when
// ctx ends and every step has finished.
func (s *Simulator) Run(ctx context.Context) {
	if !s.waitForLogin(ctx) {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for _, step := range s.steps {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return
		case <-ticker.C:
		}

		s.wg.Add(1)
		go func(step DemoStep) {
			defer s.wg.Done()
			result, err := step.Run(ctx, s.app.Host)
			if err != nil {
				s.logger.Warn("demo request ended", "step", step.Name, "error", err)
				return
			}
			s.logger.Info("demo request decided", "step", step.Name, "result", result)
			s.app.Toast(events.StatusInfo, fmt.Sprintf("Demo %s request: %s", step.Name, result))
		}(step)
	}
	s.wg.Wait()
}

func (s *Simulator) waitForLogin(ctx context.Context) bool {
	sub := s.app.Events.Subscribe(events.AuthStateChanged)
	defer s.app.Events.Unsubscribe(sub)

	if authed, _ := s.app.Host.IsAuthenticated(ctx); authed {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-sub:
			if !ok {
				return false
			}
			if authed, _ := s.app.Host.IsAuthenticated(ctx); authed {
				return true
			}
		}
	}
}
