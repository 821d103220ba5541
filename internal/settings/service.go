package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/host"
)

// Service loads and saves settings through the host's encrypted storage and
// announces every change on the broker.
type Service struct {
	session  host.Session
	broker   *events.Broker
	logger   *slog.Logger
	defaults Settings

	mu      sync.RWMutex
	current Settings
}

// NewService starts from defaults until Load is called.
func NewService(session host.Session, broker *events.Broker, defaults Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		session:  session,
		broker:   broker,
		logger:   logger.With("component", "settings"),
		defaults: defaults.Clone(),
		current:  defaults.Clone(),
	}
}

// Load reads the settings from the host. Failures are logged and the
// defaults are used; settings are a preference, not a reason to stop.
func (s *Service) Load(ctx context.Context) Settings {
	loaded := s.defaults.Clone()

	raw, err := s.session.GetSettings(ctx)
	switch {
	case err != nil:
		s.logger.Warn("failed to load settings, using defaults", "error", err)
	case len(raw) == 0 || string(raw) == "null":
		s.logger.Debug("no saved settings, using defaults")
	default:
		var saved Settings
		if err := json.Unmarshal(raw, &saved); err != nil {
			s.logger.Warn("saved settings unreadable, using defaults", "error", err)
		} else {
			loaded = saved.Normalize(s.defaults)
		}
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	s.publish(loaded)
	return loaded.Clone()
}

// Current returns a copy of the settings in effect.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies fn to a copy of the settings and saves the result. Nothing
// changes if fn or the save fails.
func (s *Service) Update(ctx context.Context, fn func(*Settings) error) error {
	s.mu.Lock()
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.session.SetSettings(ctx, raw); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save settings: %w", err)
	}
	s.current = next
	s.mu.Unlock()

	s.logger.Info("settings saved", "currency", next.Currency, "theme", next.Theme.Mode, "trusted_entities", len(next.TrustedEntities))
	s.publish(next)
	return nil
}

// Reset discards in-memory settings, e.g. after logout.
func (s *Service) Reset() {
	s.mu.Lock()
	s.current = s.defaults.Clone()
	s.mu.Unlock()
	s.publish(s.defaults.Clone())
}

func (s *Service) publish(current Settings) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(events.Event{Type: events.SettingsChanged, Payload: current.Clone()})
}
