package domain

import (
	"time"

	"github.com/google/uuid"
)

// MembershipRole is the role a user holds within a shared space
type MembershipRole string

const (
	RoleOwner  MembershipRole = "owner"
	RoleMember MembershipRole = "member"
)

// MembershipStatus is the lifecycle state of a membership row.
// Left and Removed are terminal; a user who re-joins gets a new row.
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipLeft    MembershipStatus = "left"
	MembershipRemoved MembershipStatus = "removed"
)

// Membership represents one user's relationship to one shared space
type Membership struct {
	ID       uuid.UUID        `json:"id"`
	UserID   uuid.UUID        `json:"userId"`
	SpaceID  uuid.UUID        `json:"spaceId"`
	Role     MembershipRole   `json:"role"`
	Status   MembershipStatus `json:"status"`
	JoinedAt time.Time        `json:"joinedAt"`
}

// MembershipRepository defines the interface for membership persistence operations.
// At most one active row may exist per (user, space); Create returns
// ErrAlreadyExists when that uniqueness would be violated.
type MembershipRepository interface {
	GetActive(userID, spaceID uuid.UUID) (*Membership, error)
	// ListActiveBySpace returns active memberships ordered by joinedAt ascending.
	ListActiveBySpace(spaceID uuid.UUID) ([]*Membership, error)
	ListActiveByUser(userID uuid.UUID) ([]*Membership, error)
	Create(m *Membership) (*Membership, error)
	SetStatus(id uuid.UUID, status MembershipStatus) (*Membership, error)
	// TransferOwnership flips the owner's role to member and the target's
	// role to owner in a single transaction.
	TransferOwnership(spaceID, ownerUserID, targetUserID uuid.UUID) error
	// LeaveWithSuccession marks the owner's membership as left and promotes
	// the successor to owner in a single transaction.
	LeaveWithSuccession(spaceID, leavingUserID, successorUserID uuid.UUID) error
}
