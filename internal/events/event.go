package events

import (
	"time"
)

// Change kinds carried by resource events.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
	Scaled  = "scaled"
)

// ConnectedType is the type of the acknowledgement sent first on every stream.
const ConnectedType = "connected"

// Event is a single broadcast message.
type Event struct {
	Type         string         `json:"type"`
	ResourceType string         `json:"resourceType,omitempty"`
	EventType    string         `json:"eventType,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Data         map[string]any `json:"data"`
}

// Namespace returns the namespace recorded in the event payload, if any.
func (e Event) Namespace() string {
	ns, _ := e.Data["namespace"].(string)
	return ns
}

// Name composes the broadcast name of a resource change, e.g. "pod_created".
func Name(resourceType, eventType string) string {
	return resourceType + "_" + eventType
}

// Filter restricts which events reach a subscriber. Empty fields match
// everything.
type Filter struct {
	ResourceType string `json:"resourceType,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
}

// Matches reports whether ev passes the filter.
func (f Filter) Matches(ev Event) bool {
	if f.ResourceType != "" && ev.ResourceType != f.ResourceType {
		return false
	}
	if f.Namespace != "" && ev.Namespace() != f.Namespace {
		return false
	}
	return true
}
