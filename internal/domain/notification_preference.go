package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference is a per-(user, space) toggle for expiry
// notifications. An absent row means "unset, default enabled", which is
// distinct from an explicit disable.
type NotificationPreference struct {
	UserID    uuid.UUID `json:"userId"`
	SpaceID   uuid.UUID `json:"spaceId"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotificationPreferenceRepository defines the interface for notification
// preference persistence operations
type NotificationPreferenceRepository interface {
	// Get returns ErrNotFound when no explicit preference has been stored.
	Get(userID, spaceID uuid.UUID) (*NotificationPreference, error)
	Set(userID, spaceID uuid.UUID, enabled bool) (*NotificationPreference, error)
}
