package app

import (
	"context"
	"strings"

	"github.com/billie-coop/metanet/internal/events"
)

// InputRouter parses the dashboard command line and routes it to the
// appropriate handler.
type InputRouter struct {
	commands    *CommandService
	eventBroker *events.Broker
}

// NewInputRouter creates a new input router.
func NewInputRouter(commands *CommandService, eventBroker *events.Broker) *InputRouter {
	return &InputRouter{
		commands:    commands,
		eventBroker: eventBroker,
	}
}

// Route sends slash commands to the command service. Anything else is a
// transaction label filter; an empty line clears the filter.
func (r *InputRouter) Route(ctx context.Context, input string) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "/") {
		r.commands.HandleCommand(ctx, input)
		return
	}
	r.eventBroker.Publish(events.Event{
		Type:    events.Navigate,
		Payload: events.NavigatePayload{Page: "dashboard", Label: input},
	})
}
