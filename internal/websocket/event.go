package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeActivity   EntityType = "activity"
	EntityTypeSpace      EntityType = "space"
	EntityTypeMembership EntityType = "membership"
	EntityTypeInvite     EntityType = "invite"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "activity.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "activity"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ActivityRecorded creates an activity.created event
func ActivityRecorded(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeActivity, payload)
}

// SpaceUpdated creates a space.updated event (rename, icon change)
func SpaceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSpace, payload)
}

// SpaceDeleted creates a space.deleted event
func SpaceDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSpace, payload)
}

// MembershipUpdated creates a membership.updated event (role or status change)
func MembershipUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMembership, payload)
}

// InviteCreated creates an invite.created event (regeneration)
func InviteCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInvite, payload)
}
