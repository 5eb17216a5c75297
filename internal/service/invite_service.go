package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/util"
)

// maxCodeAttempts bounds the collision-retry loop when generating codes.
// With a 32-character alphabet and 6 positions collisions are vanishingly
// rare; hitting the bound indicates a broken random source.
const maxCodeAttempts = 10

// InviteService handles invite issuing and redemption
type InviteService struct {
	inviteRepo          domain.InviteRepository
	membershipRepo      domain.MembershipRepository
	spaceRepo           domain.SpaceRepository
	userRepo            domain.UserRepository
	activityService     *ActivityService
	notificationService *NotificationService
}

// NewInviteService creates a new InviteService
func NewInviteService(
	inviteRepo domain.InviteRepository,
	membershipRepo domain.MembershipRepository,
	spaceRepo domain.SpaceRepository,
	userRepo domain.UserRepository,
	activityService *ActivityService,
	notificationService *NotificationService,
) *InviteService {
	return &InviteService{
		inviteRepo:          inviteRepo,
		membershipRepo:      membershipRepo,
		spaceRepo:           spaceRepo,
		userRepo:            userRepo,
		activityService:     activityService,
		notificationService: notificationService,
	}
}

// CreateInviteInput holds optional overrides for invite creation
type CreateInviteInput struct {
	MaxUses int
	TTL     time.Duration
}

// RedeemResult represents the outcome of a successful redemption.
// AlreadyMember distinguishes the idempotent "you are already in" outcome
// from a fresh join, so callers can word the response accordingly.
type RedeemResult struct {
	Space         *domain.Space
	Membership    *domain.Membership
	AlreadyMember bool
}

// newInvite builds an unsaved invite with a freshly generated code.
// Zero-value input fields fall back to the defaults (5 uses, 7 days).
func (s *InviteService) newInvite(spaceID, createdBy uuid.UUID, input CreateInviteInput) (*domain.Invite, error) {
	maxUses := input.MaxUses
	if maxUses <= 0 {
		maxUses = domain.DefaultInviteMaxUses
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = domain.DefaultInviteTTL
	}

	code, err := s.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	return &domain.Invite{
		SpaceID:   spaceID,
		Code:      code,
		CreatedBy: createdBy,
		ExpiresAt: time.Now().Add(ttl),
		MaxUses:   maxUses,
		UsedCount: 0,
		Status:    domain.InviteActive,
	}, nil
}

// CreateInvite generates and persists a fresh invite for a space
func (s *InviteService) CreateInvite(spaceID, createdBy uuid.UUID, input CreateInviteInput) (*domain.Invite, error) {
	invite, err := s.newInvite(spaceID, createdBy, input)
	if err != nil {
		return nil, err
	}
	return s.inviteRepo.Create(invite)
}

// RegenerateInvite revokes all active invites for the space and issues a
// new one. This is the supported way to invalidate a leaked code.
func (s *InviteService) RegenerateInvite(spaceID, requesterID uuid.UUID) (*domain.Invite, error) {
	membership, err := s.membershipRepo.GetActive(requesterID, spaceID)
	if err != nil {
		return nil, domain.ErrNotMember
	}
	if membership.Role != domain.RoleOwner {
		return nil, domain.ErrNotOwner
	}

	if err := s.inviteRepo.RevokeActiveBySpace(spaceID); err != nil {
		return nil, err
	}

	return s.CreateInvite(spaceID, requesterID, CreateInviteInput{})
}

// GetActiveInvite returns the space's current active, non-expired invite,
// or nil when there is none. A stale invite discovered here is durably
// transitioned to expired as a side effect.
func (s *InviteService) GetActiveInvite(spaceID uuid.UUID) (*domain.Invite, error) {
	invite, err := s.inviteRepo.GetActiveBySpace(spaceID)
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if invite.IsExpiredAt(time.Now()) {
		if err := s.inviteRepo.MarkExpired(invite.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return invite, nil
}

// Redeem consumes an invite code for a user. The use-count increment and
// the membership insert happen in one repository transaction, so when only
// one use remains exactly one of two concurrent callers gets in.
func (s *InviteService) Redeem(code string, userID uuid.UUID) (*RedeemResult, error) {
	normalized := util.NormalizeInviteCode(code)
	if !util.IsValidInviteCode(normalized, domain.InviteCodeLength) {
		return nil, domain.ErrInvalidCode
	}

	invite, err := s.inviteRepo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}

	if err := s.checkRedeemable(invite); err != nil {
		return nil, err
	}

	space, err := s.spaceRepo.GetByID(invite.SpaceID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: an existing active member neither consumes
	// a use nor gets a duplicate row.
	if existing, err := s.membershipRepo.GetActive(userID, invite.SpaceID); err == nil {
		return &RedeemResult{Space: space, Membership: existing, AlreadyMember: true}, nil
	}

	membership := &domain.Membership{
		UserID:   userID,
		SpaceID:  invite.SpaceID,
		Role:     domain.RoleMember,
		Status:   domain.MembershipActive,
		JoinedAt: time.Now(),
	}

	created, err := s.inviteRepo.Redeem(invite.ID, membership)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a race against the same user joining twice; treat as the
			// idempotent outcome.
			existing, getErr := s.membershipRepo.GetActive(userID, invite.SpaceID)
			if getErr != nil {
				return nil, getErr
			}
			return &RedeemResult{Space: space, Membership: existing, AlreadyMember: true}, nil
		}
		if errors.Is(err, domain.ErrInviteExhausted) {
			return nil, s.classifyConsumeFailure(normalized)
		}
		return nil, err
	}

	if _, err := s.activityService.Record(invite.SpaceID, userID, user.DisplayName(), domain.ActivityMemberJoined, nil); err != nil {
		log.Error().Err(err).Str("space_id", invite.SpaceID.String()).Msg("Failed to record join activity")
	}
	if _, err := s.notificationService.Set(userID, invite.SpaceID, true); err != nil {
		log.Error().Err(err).Str("space_id", invite.SpaceID.String()).Msg("Failed to set default notification preference")
	}

	return &RedeemResult{Space: space, Membership: created, AlreadyMember: false}, nil
}

// checkRedeemable performs the pre-flight status, expiry and use checks,
// persisting a lazily discovered expiry.
func (s *InviteService) checkRedeemable(invite *domain.Invite) error {
	switch invite.Status {
	case domain.InviteActive:
	case domain.InviteExpired:
		return domain.ErrInviteExpired
	default:
		return domain.ErrInviteInvalid
	}

	if invite.IsExpiredAt(time.Now()) {
		if err := s.inviteRepo.MarkExpired(invite.ID); err != nil {
			return err
		}
		return domain.ErrInviteExpired
	}

	if invite.UsedCount >= invite.MaxUses {
		return domain.ErrInviteExhausted
	}

	return nil
}

// classifyConsumeFailure re-reads an invite whose conditional consume
// affected no rows and maps the current state to the precise error, so a
// revocation or expiry that raced in does not masquerade as exhaustion.
func (s *InviteService) classifyConsumeFailure(code string) error {
	invite, err := s.inviteRepo.GetByCode(code)
	if err != nil {
		return domain.ErrInviteExhausted
	}
	switch invite.Status {
	case domain.InviteRevoked:
		return domain.ErrInviteInvalid
	case domain.InviteExpired:
		return domain.ErrInviteExpired
	}
	if invite.IsExpiredAt(time.Now()) {
		if err := s.inviteRepo.MarkExpired(invite.ID); err != nil {
			return err
		}
		return domain.ErrInviteExpired
	}
	return domain.ErrInviteExhausted
}

// generateUniqueCode draws codes until one does not collide with another
// active invite.
func (s *InviteService) generateUniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := util.GenerateInviteCode(domain.InviteCodeLength)
		if err != nil {
			return "", err
		}
		inUse, err := s.inviteRepo.CodeInUse(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", domain.ErrConflict
}
