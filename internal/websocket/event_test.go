package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected string
	}{
		{"created", EventTypeCreated, "created"},
		{"updated", EventTypeUpdated, "updated"},
		{"deleted", EventTypeDeleted, "deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestEntityType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EntityType
		expected string
	}{
		{"activity", EntityTypeActivity, "activity"},
		{"space", EntityTypeSpace, "space"},
		{"membership", EntityTypeMembership, "membership"},
		{"invite", EntityTypeInvite, "invite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":   "4b2d9a1e-0000-0000-0000-000000000001",
		"type": "member_joined",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeActivity, payload)
	after := time.Now()

	assert.Equal(t, "activity.created", evt.Type)
	assert.Equal(t, EntityTypeActivity, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"type":      "member_joined",
		"actorName": "Alice",
	}

	evt := Event{
		Type:      "activity.created",
		Entity:    EntityTypeActivity,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	// Payload should be preserved
	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "member_joined", decodedPayload["type"])
	assert.Equal(t, "Alice", decodedPayload["actorName"])
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"name": "Kitchen Crew",
	}

	evt := NewEvent(EventTypeUpdated, EntityTypeSpace, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify it's valid JSON
	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "space.updated", decoded["type"])
	assert.Equal(t, "space", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id": "a1b2c3d4-0000-0000-0000-000000000001",
	}

	t.Run("ActivityRecorded", func(t *testing.T) {
		evt := ActivityRecorded(payload)
		assert.Equal(t, "activity.created", evt.Type)
		assert.Equal(t, EntityTypeActivity, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("SpaceUpdated", func(t *testing.T) {
		evt := SpaceUpdated(payload)
		assert.Equal(t, "space.updated", evt.Type)
		assert.Equal(t, EntityTypeSpace, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("SpaceDeleted", func(t *testing.T) {
		evt := SpaceDeleted(payload)
		assert.Equal(t, "space.deleted", evt.Type)
		assert.Equal(t, EntityTypeSpace, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("MembershipUpdated", func(t *testing.T) {
		evt := MembershipUpdated(payload)
		assert.Equal(t, "membership.updated", evt.Type)
		assert.Equal(t, EntityTypeMembership, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("InviteCreated", func(t *testing.T) {
		evt := InviteCreated(payload)
		assert.Equal(t, "invite.created", evt.Type)
		assert.Equal(t, EntityTypeInvite, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}
