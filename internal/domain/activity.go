package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType enumerates the domain events recorded in a space's log
type ActivityType string

const (
	ActivityMemberJoined     ActivityType = "member_joined"
	ActivityMemberLeft       ActivityType = "member_left"
	ActivityMemberRemoved    ActivityType = "member_removed"
	ActivityProductAdded     ActivityType = "product_added"
	ActivityProductUpdated   ActivityType = "product_updated"
	ActivityProductDeleted   ActivityType = "product_deleted"
	ActivityContainerCreated ActivityType = "container_created"
	ActivityContainerDeleted ActivityType = "container_deleted"
)

// MaxActivitiesPerSpace caps the per-space log; the oldest entries are
// evicted on overflow.
const MaxActivitiesPerSpace = 50

// ContentActivityTypes lists the types the content layer may write through
// the public API. Member events are produced internally only.
var ContentActivityTypes = map[ActivityType]bool{
	ActivityProductAdded:     true,
	ActivityProductUpdated:   true,
	ActivityProductDeleted:   true,
	ActivityContainerCreated: true,
	ActivityContainerDeleted: true,
}

// Activity represents an immutable audit record within a space. The actor
// name is denormalized at write time so history reads correctly even after
// the actor renames themselves or is removed.
type Activity struct {
	ID          uuid.UUID         `json:"id"`
	SpaceID     uuid.UUID         `json:"spaceId"`
	ActorUserID uuid.UUID         `json:"actorUserId"`
	ActorName   string            `json:"actorName"`
	Type        ActivityType      `json:"type"`
	Payload     map[string]string `json:"payload"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ActivityRepository defines the interface for activity persistence operations
type ActivityRepository interface {
	// Create appends one entry and evicts entries beyond
	// MaxActivitiesPerSpace for that space in the same transaction.
	Create(activity *Activity) (*Activity, error)
	// ListBySpace returns entries newest-first; limit <= 0 means no limit.
	ListBySpace(spaceID uuid.UUID, limit int) ([]*Activity, error)
}
