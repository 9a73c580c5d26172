package tools

import (
	"context"

	"github.com/giantswarm/kubectl-mcp/internal/events"
)

// ResourceChangedMethod is the MCP notification sent for every resource change.
const ResourceChangedMethod = "notifications/resource_changed"

// Notifier delivers MCP notifications. *server.MCPServer from mcp-go
// implements it.
type Notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// ForwardEvents relays every resource change published on bus to the
// connected MCP clients. The returned function stops forwarding.
func ForwardEvents(n Notifier, bus *events.Bus) (cancel func()) {
	return bus.Watch(events.AllResources, func(_ context.Context, ev events.Event) error {
		n.SendNotificationToAllClients(ResourceChangedMethod, map[string]any{
			"type":         ev.Type,
			"resourceType": ev.ResourceType,
			"eventType":    ev.EventType,
			"timestamp":    ev.Timestamp,
			"data":         ev.Data,
		})
		return nil
	})
}
