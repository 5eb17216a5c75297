package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalError      = errors.New("internal error")
	ErrUserNotFound       = errors.New("user not found")
	ErrSpaceNotFound      = errors.New("space not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrInvalidCode        = errors.New("invalid invite code format")
	ErrNotOwner           = errors.New("requester is not the space owner")
	ErrNotMember          = errors.New("requester is not a member of the space")
	ErrSelfRemoval        = errors.New("cannot remove yourself, leave the space instead")
	ErrInviteInvalid      = errors.New("invite is no longer valid")
	ErrInviteExpired      = errors.New("invite has expired")
	ErrInviteExhausted    = errors.New("invite has no remaining uses")
	ErrInvalidActivity    = errors.New("invalid activity type")
	ErrConflict           = errors.New("concurrent update conflict")
)

// Validation constants
const (
	MaxSpaceNameLength = 100
)
