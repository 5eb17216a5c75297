package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/veland/larder/larder-backend/internal/domain"
)

// MembershipService handles the membership ledger: leaving, removal and
// ownership transfer. Joining goes through InviteService.Redeem.
type MembershipService struct {
	membershipRepo  domain.MembershipRepository
	spaceRepo       domain.SpaceRepository
	userRepo        domain.UserRepository
	spaceService    *SpaceService
	activityService *ActivityService
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	membershipRepo domain.MembershipRepository,
	spaceRepo domain.SpaceRepository,
	userRepo domain.UserRepository,
	spaceService *SpaceService,
	activityService *ActivityService,
) *MembershipService {
	return &MembershipService{
		membershipRepo:  membershipRepo,
		spaceRepo:       spaceRepo,
		userRepo:        userRepo,
		spaceService:    spaceService,
		activityService: activityService,
	}
}

// Member pairs a membership with the user's denormalized display fields
// for listing.
type Member struct {
	Membership *domain.Membership `json:"membership"`
	Name       string             `json:"name"`
	PictureURL *string            `json:"pictureUrl"`
}

// ListMembers returns the active members of a space ordered by tenure,
// oldest first. The requester must have access to the space.
func (s *MembershipService) ListMembers(spaceID, requesterID uuid.UUID) ([]*Member, error) {
	ok, err := s.spaceService.CanAccess(requesterID, spaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotMember
	}

	memberships, err := s.membershipRepo.ListActiveBySpace(spaceID)
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, len(memberships))
	for _, m := range memberships {
		member := &Member{Membership: m}
		if user, err := s.userRepo.GetByID(m.UserID); err == nil {
			member.Name = user.DisplayName()
			member.PictureURL = user.PictureURL
		}
		members = append(members, member)
	}
	return members, nil
}

// GetMembership returns the requester's active membership in a space
func (s *MembershipService) GetMembership(userID, spaceID uuid.UUID) (*domain.Membership, error) {
	return s.membershipRepo.GetActive(userID, spaceID)
}

// Leave removes the requester from a space. A leaving owner hands
// ownership to the longest-tenured remaining active member; a sole-member
// owner tears the whole space down instead of leaving it ownerless. The
// departure activity is recorded only after the membership flip succeeds,
// so a failed leave leaves no trace in the log; the leaver's name is
// captured up front so the entry reads correctly.
func (s *MembershipService) Leave(userID, spaceID uuid.UUID) error {
	membership, err := s.membershipRepo.GetActive(userID, spaceID)
	if err != nil {
		return err
	}

	name := s.displayName(userID)

	if membership.Role != domain.RoleOwner {
		if _, err := s.membershipRepo.SetStatus(membership.ID, domain.MembershipLeft); err != nil {
			return err
		}
		s.recordLeft(spaceID, userID, name)
		return nil
	}

	successor := s.findSuccessor(spaceID, userID)
	if successor == nil {
		// Last one out turns off the lights.
		return s.spaceService.DeleteSharedSpace(spaceID, userID)
	}

	if err := s.membershipRepo.LeaveWithSuccession(spaceID, userID, successor.UserID); err != nil {
		return err
	}
	s.recordLeft(spaceID, userID, name)
	return nil
}

func (s *MembershipService) recordLeft(spaceID, userID uuid.UUID, name string) {
	if _, err := s.activityService.Record(spaceID, userID, name, domain.ActivityMemberLeft, nil); err != nil {
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to record leave activity")
	}
}

// RemoveMember expels a member from a space. Owner only; self-removal is
// rejected (leave instead). The activity is attributed to the removed
// member's name so the log reads correctly after they are gone.
func (s *MembershipService) RemoveMember(spaceID, requesterID, targetUserID uuid.UUID) error {
	requester, err := s.membershipRepo.GetActive(requesterID, spaceID)
	if err != nil {
		return domain.ErrNotOwner
	}
	if requester.Role != domain.RoleOwner {
		return domain.ErrNotOwner
	}
	if requesterID == targetUserID {
		return domain.ErrSelfRemoval
	}

	target, err := s.membershipRepo.GetActive(targetUserID, spaceID)
	if err != nil {
		return err
	}

	targetName := s.displayName(targetUserID)

	if _, err := s.membershipRepo.SetStatus(target.ID, domain.MembershipRemoved); err != nil {
		return err
	}

	if _, err := s.activityService.Record(spaceID, targetUserID, targetName, domain.ActivityMemberRemoved, map[string]string{
		"removedBy": requesterID.String(),
	}); err != nil {
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to record removal activity")
	}

	return nil
}

// TransferOwnership hands the owner role to another active member. Both
// role flips happen in one repository transaction. Transferring to
// yourself is a silent no-op.
func (s *MembershipService) TransferOwnership(spaceID, requesterID, targetUserID uuid.UUID) error {
	requester, err := s.membershipRepo.GetActive(requesterID, spaceID)
	if err != nil {
		return domain.ErrNotOwner
	}
	if requester.Role != domain.RoleOwner {
		return domain.ErrNotOwner
	}
	if requesterID == targetUserID {
		return nil
	}

	if _, err := s.membershipRepo.GetActive(targetUserID, spaceID); err != nil {
		return err
	}

	return s.membershipRepo.TransferOwnership(spaceID, requesterID, targetUserID)
}

// findSuccessor returns the earliest-joined active member other than the
// leaver, or nil when the leaver is alone.
func (s *MembershipService) findSuccessor(spaceID, leavingUserID uuid.UUID) *domain.Membership {
	memberships, err := s.membershipRepo.ListActiveBySpace(spaceID)
	if err != nil {
		return nil
	}
	for _, m := range memberships {
		if m.UserID != leavingUserID {
			return m
		}
	}
	return nil
}

func (s *MembershipService) displayName(userID uuid.UUID) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return ""
	}
	return user.DisplayName()
}
