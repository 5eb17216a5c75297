package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus is the lifecycle state of an invite
type InviteStatus string

const (
	InviteActive  InviteStatus = "active"
	InviteRevoked InviteStatus = "revoked"
	InviteExpired InviteStatus = "expired"
)

// Invite defaults
const (
	InviteCodeLength     = 6
	DefaultInviteMaxUses = 5
	DefaultInviteTTL     = 7 * 24 * time.Hour
)

// Invite represents a redeemable code granting member access to a shared space
type Invite struct {
	ID        uuid.UUID    `json:"id"`
	SpaceID   uuid.UUID    `json:"spaceId"`
	Code      string       `json:"code"`
	CreatedBy uuid.UUID    `json:"createdBy"`
	ExpiresAt time.Time    `json:"expiresAt"`
	MaxUses   int          `json:"maxUses"`
	UsedCount int          `json:"usedCount"`
	Status    InviteStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsExpiredAt reports whether the invite's expiry has passed at the given time.
// Expiry is evaluated lazily on the read and redeem paths; there is no
// background sweep.
func (i *Invite) IsExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// InviteRepository defines the interface for invite persistence operations
type InviteRepository interface {
	// GetByCode looks an invite up case-insensitively.
	GetByCode(code string) (*Invite, error)
	GetActiveBySpace(spaceID uuid.UUID) (*Invite, error)
	// CodeInUse reports whether an active invite already uses the code.
	CodeInUse(code string) (bool, error)
	Create(invite *Invite) (*Invite, error)
	MarkExpired(id uuid.UUID) error
	RevokeActiveBySpace(spaceID uuid.UUID) error
	// Redeem consumes one use of the invite and creates the membership as a
	// single atomic unit. It returns ErrInviteExhausted when no uses remain
	// and ErrAlreadyExists when the user already holds an active membership,
	// in both cases without consuming a use or creating a row.
	Redeem(inviteID uuid.UUID, m *Membership) (*Membership, error)
}
