package domain

import (
	"time"

	"github.com/google/uuid"
)

// SpaceKind distinguishes the implicit single-user space from shared ones
type SpaceKind string

const (
	SpaceKindPersonal SpaceKind = "personal"
	SpaceKindShared   SpaceKind = "shared"
)

// nsPersonalSpace is the namespace for deriving personal space ids.
// Each user gets exactly one personal space whose id is a function of
// their user id, so the space can be created lazily and addressed
// before it exists.
var nsPersonalSpace = uuid.MustParse("8f4a1c6e-2d3b-4e5f-9a7c-1b0d8e6f4a2c")

// PersonalSpaceID returns the well-known id of a user's personal space.
func PersonalSpaceID(userID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(nsPersonalSpace, userID[:])
}

// Space represents a named container scoping membership, content,
// invites and activity. Personal spaces have no memberships; shared
// spaces always have exactly one active owner.
type Space struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      SpaceKind `json:"kind"`
	Icon      string    `json:"icon"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsPersonal reports whether the space is a personal space.
func (s *Space) IsPersonal() bool {
	return s.Kind == SpaceKindPersonal
}

// SharedSpaceProvision bundles the records a shared space is born with.
// They are persisted together: either all of them exist afterwards or
// none do, so a shared space can never be observed without its owner
// membership.
type SharedSpaceProvision struct {
	Space      *Space
	Owner      *Membership
	Invite     *Invite
	Preference *NotificationPreference
	Activity   *Activity
}

// SpaceRepository defines the interface for space persistence operations
type SpaceRepository interface {
	GetByID(id uuid.UUID) (*Space, error)
	Create(space *Space) (*Space, error)
	// ProvisionShared persists a shared space together with its owner
	// membership, initial invite, owner preference and join activity as
	// one atomic unit.
	ProvisionShared(p *SharedSpaceProvision) (*Space, error)
	Rename(id uuid.UUID, name string) (*Space, error)
	UpdateIcon(id uuid.UUID, icon string) (*Space, error)
	// Delete removes the space and every record scoped to it
	// (memberships, invites, activity, notification preferences) in one
	// atomic unit.
	Delete(id uuid.UUID) error
}
