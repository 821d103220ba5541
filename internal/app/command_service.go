package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/billie-coop/metanet/internal/events"
	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/settings"
)

// HelpText is shown by /help, rendered as markdown.
const HelpText = `# Commands

**Display**
- ` + "`/currency BSV|SATS|USD`" + ` - show amounts in another currency
- ` + "`/theme dark|light`" + ` - switch the theme
- ` + "`/settings`" + ` - open the settings dialog

**Trust**
- ` + "`/trust list`" + ` - list trusted registry operators
- ` + "`/trust add <1-10> <public key> <name>`" + ` - trust an operator
- ` + "`/trust remove <public key>`" + ` - stop trusting an operator

**Wallet**
- ` + "`/refresh`" + ` - reload the dashboard
- ` + "`/cache clear`" + ` - forget every resolved name and icon
- ` + "`/logout`" + ` - sign out
- ` + "`/quit`" + ` - exit

Typing anything else filters recent transactions by label.`

var errUsage = errors.New("usage")

// CommandService handles slash command execution
type CommandService struct {
	app         *App
	eventBroker *events.Broker
}

// NewCommandService creates a new command service
func NewCommandService(app *App, eventBroker *events.Broker) *CommandService {
	return &CommandService{
		app:         app,
		eventBroker: eventBroker,
	}
}

// HandleCommand processes a slash command. Results and failures are reported
// as status messages.
func (s *CommandService) HandleCommand(ctx context.Context, command string) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "/help":
		s.openDialog("help")
	case "/settings":
		s.openDialog("settings")
	case "/currency":
		err = s.handleCurrency(ctx, args)
	case "/theme":
		err = s.handleTheme(ctx, args)
	case "/trust":
		err = s.handleTrust(ctx, args)
	case "/refresh":
		s.eventBroker.Publish(events.Event{Type: events.Navigate, Payload: events.NavigatePayload{Page: "dashboard"}})
	case "/cache":
		err = s.handleCache(ctx, args)
	case "/logout":
		err = s.handleLogout(ctx)
	case "/quit", "/exit":
		s.eventBroker.Publish(events.Event{Type: events.QuitRequested})
	default:
		s.status(events.StatusWarning, "Unknown command: "+cmd)
		return
	}

	if errors.Is(err, errUsage) {
		s.status(events.StatusWarning, err.Error())
	} else if err != nil {
		s.app.Logger.Warn("command failed", "command", cmd, "error", err)
		s.status(events.StatusError, err.Error())
	}
}

func (s *CommandService) handleCurrency(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: /currency BSV|SATS|USD", errUsage)
	}
	currency := strings.ToUpper(args[0])
	if _, err := settings.FormatAmount(0, currency, 0); err != nil {
		return err
	}
	err := s.app.Settings.Update(ctx, func(st *settings.Settings) error {
		st.Currency = currency
		return nil
	})
	if err != nil {
		return err
	}
	s.status(events.StatusSuccess, "Currency set to "+currency)
	return nil
}

func (s *CommandService) handleTheme(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: /theme dark|light", errUsage)
	}
	mode := strings.ToLower(args[0])
	if mode != settings.ThemeDark && mode != settings.ThemeLight {
		return fmt.Errorf("%w: /theme dark|light", errUsage)
	}
	err := s.app.Settings.Update(ctx, func(st *settings.Settings) error {
		st.Theme.Mode = mode
		return nil
	})
	if err != nil {
		return err
	}
	s.status(events.StatusSuccess, "Theme set to "+mode)
	return nil
}

func (s *CommandService) handleTrust(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		entities := s.app.Settings.Current().TrustedEntities
		if len(entities) == 0 {
			s.status(events.StatusInfo, "No trusted operators")
			return nil
		}
		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, fmt.Sprintf("%s (%d)", e.Name, e.Trust))
		}
		s.status(events.StatusInfo, "Trusted: "+strings.Join(names, ", "))
		return nil

	case "add":
		if len(args) < 4 {
			return fmt.Errorf("%w: /trust add <1-10> <public key> <name>", errUsage)
		}
		trust, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: trust must be a number", errUsage)
		}
		entity := settings.TrustedEntity{
			Name:      strings.Join(args[3:], " "),
			PublicKey: args[2],
			Trust:     trust,
		}
		err = s.app.Settings.Update(ctx, func(st *settings.Settings) error {
			return st.AddTrustedEntity(entity)
		})
		if err != nil {
			return err
		}
		s.status(events.StatusSuccess, "Trusting "+entity.Name)
		return nil

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("%w: /trust remove <public key>", errUsage)
		}
		key := args[1]
		err := s.app.Settings.Update(ctx, func(st *settings.Settings) error {
			if !st.RemoveTrustedEntity(key) {
				return fmt.Errorf("no trusted operator %s", resolve.ShortKey(key))
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.status(events.StatusSuccess, "Removed "+resolve.ShortKey(key))
		return nil
	}
	return fmt.Errorf("%w: /trust list|add|remove", errUsage)
}

func (s *CommandService) handleCache(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "clear" {
		return fmt.Errorf("%w: /cache clear", errUsage)
	}
	if err := s.app.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.status(events.StatusSuccess, "Metadata cache cleared")
	return nil
}

func (s *CommandService) handleLogout(ctx context.Context) error {
	if err := s.app.Auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.status(events.StatusInfo, "Signed out")
	return nil
}

func (s *CommandService) openDialog(id string) {
	s.eventBroker.Publish(events.Event{
		Type:    events.DialogOpen,
		Payload: events.DialogPayload{DialogID: id},
	})
}

func (s *CommandService) status(level events.StatusLevel, message string) {
	s.eventBroker.Publish(events.Event{
		Type:    events.StatusMessage,
		Payload: events.StatusPayload{Message: message, Level: level},
	})
}
