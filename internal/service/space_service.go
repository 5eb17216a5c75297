package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/veland/larder/larder-backend/internal/domain"
)

// PersonalSpaceName is the display name given to lazily created personal spaces
const PersonalSpaceName = "Personal"

// SpaceService handles the space registry: the implicit personal space,
// shared space lifecycle, and the per-user active-space pointer.
type SpaceService struct {
	spaceRepo       domain.SpaceRepository
	membershipRepo  domain.MembershipRepository
	userRepo        domain.UserRepository
	inviteService   *InviteService
	activityService *ActivityService
}

// NewSpaceService creates a new SpaceService
func NewSpaceService(
	spaceRepo domain.SpaceRepository,
	membershipRepo domain.MembershipRepository,
	userRepo domain.UserRepository,
	inviteService *InviteService,
	activityService *ActivityService,
) *SpaceService {
	return &SpaceService{
		spaceRepo:       spaceRepo,
		membershipRepo:  membershipRepo,
		userRepo:        userRepo,
		inviteService:   inviteService,
		activityService: activityService,
	}
}

// EnsurePersonalSpace lazily creates the user's personal space and returns
// it. The id is a deterministic function of the user id, so concurrent
// callers converge on the same record. Idempotent.
func (s *SpaceService) EnsurePersonalSpace(userID uuid.UUID) (*domain.Space, error) {
	id := domain.PersonalSpaceID(userID)

	space, err := s.spaceRepo.GetByID(id)
	if err == nil {
		return space, nil
	}
	if !errors.Is(err, domain.ErrSpaceNotFound) {
		return nil, err
	}

	space = &domain.Space{
		ID:        id,
		Name:      PersonalSpaceName,
		Kind:      domain.SpaceKindPersonal,
		CreatedBy: userID,
	}
	created, err := s.spaceRepo.Create(space)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.spaceRepo.GetByID(id)
		}
		return nil, err
	}
	return created, nil
}

// CreateSharedSpace creates a shared space with the creator as owner, an
// initial invite, an enabled notification preference, and a join activity.
// The records are provisioned as one atomic unit: a failure leaves no
// space behind, and a space can never be observed without its owner.
func (s *SpaceService) CreateSharedSpace(ownerID uuid.UUID, name, icon string) (*domain.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxSpaceNameLength {
		return nil, domain.ErrNameTooLong
	}

	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}

	spaceID := uuid.New()
	invite, err := s.inviteService.newInvite(spaceID, ownerID, CreateInviteInput{})
	if err != nil {
		return nil, err
	}

	provision := &domain.SharedSpaceProvision{
		Space: &domain.Space{
			ID:        spaceID,
			Name:      name,
			Kind:      domain.SpaceKindShared,
			Icon:      icon,
			CreatedBy: ownerID,
		},
		Owner: &domain.Membership{
			UserID:  ownerID,
			SpaceID: spaceID,
			Role:    domain.RoleOwner,
			Status:  domain.MembershipActive,
		},
		Invite: invite,
		Preference: &domain.NotificationPreference{
			UserID:  ownerID,
			SpaceID: spaceID,
			Enabled: true,
		},
		Activity: &domain.Activity{
			SpaceID:     spaceID,
			ActorUserID: ownerID,
			ActorName:   owner.DisplayName(),
			Type:        domain.ActivityMemberJoined,
			Payload:     map[string]string{},
		},
	}

	created, err := s.spaceRepo.ProvisionShared(provision)
	if err != nil {
		return nil, err
	}

	s.activityService.Announce(provision.Activity)

	return created, nil
}

// DeleteSharedSpace tears a shared space down along with every record
// scoped to it: memberships, invites, activity and notification
// preferences. Only the active owner may delete; deleting a personal space
// is a silent no-op.
func (s *SpaceService) DeleteSharedSpace(spaceID, requesterID uuid.UUID) error {
	space, err := s.spaceRepo.GetByID(spaceID)
	if err != nil {
		return err
	}
	if space.IsPersonal() {
		return nil
	}

	membership, err := s.membershipRepo.GetActive(requesterID, spaceID)
	if err != nil {
		return domain.ErrNotOwner
	}
	if membership.Role != domain.RoleOwner {
		return domain.ErrNotOwner
	}

	// One delete takes the space and everything scoped to it; there is no
	// intermediate state where the space is gone but its records linger.
	if err := s.spaceRepo.Delete(spaceID); err != nil {
		return err
	}

	log.Info().Str("space_id", spaceID.String()).Msg("Shared space deleted")
	return nil
}

// RenameSpace updates a space's name. The requester must have access to
// the space (any active member of a shared space, or the personal space's
// own user).
func (s *SpaceService) RenameSpace(spaceID, requesterID uuid.UUID, name string) (*domain.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxSpaceNameLength {
		return nil, domain.ErrNameTooLong
	}

	ok, err := s.CanAccess(requesterID, spaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotMember
	}

	return s.spaceRepo.Rename(spaceID, name)
}

// SetIcon updates a space's icon reference. Same access rule as renaming.
func (s *SpaceService) SetIcon(spaceID, requesterID uuid.UUID, icon string) (*domain.Space, error) {
	ok, err := s.CanAccess(requesterID, spaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotMember
	}

	return s.spaceRepo.UpdateIcon(spaceID, icon)
}

// GetSpace retrieves a space by id
func (s *SpaceService) GetSpace(spaceID uuid.UUID) (*domain.Space, error) {
	return s.spaceRepo.GetByID(spaceID)
}

// ListSpaces returns the user's personal space followed by the shared
// spaces they actively belong to.
func (s *SpaceService) ListSpaces(userID uuid.UUID) ([]*domain.Space, error) {
	personal, err := s.EnsurePersonalSpace(userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	spaces := []*domain.Space{personal}
	for _, m := range memberships {
		space, err := s.spaceRepo.GetByID(m.SpaceID)
		if err != nil {
			if errors.Is(err, domain.ErrSpaceNotFound) {
				continue
			}
			return nil, err
		}
		spaces = append(spaces, space)
	}
	return spaces, nil
}

// CanAccess reports whether the user may act within the space: personal
// spaces belong to their creating user only, shared spaces require an
// active membership.
func (s *SpaceService) CanAccess(userID, spaceID uuid.UUID) (bool, error) {
	space, err := s.spaceRepo.GetByID(spaceID)
	if err != nil {
		return false, err
	}
	if space.IsPersonal() {
		return space.CreatedBy == userID, nil
	}
	if _, err := s.membershipRepo.GetActive(userID, spaceID); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SwitchActive sets the user's current space pointer. An id that does not
// resolve to a space the user can access leaves the pointer untouched; UI
// callers race with stale ids, so this is deliberately not an error.
func (s *SpaceService) SwitchActive(userID, spaceID uuid.UUID) (*domain.Space, error) {
	ok, err := s.CanAccess(userID, spaceID)
	if err != nil && !errors.Is(err, domain.ErrSpaceNotFound) {
		return nil, err
	}
	if err != nil || !ok {
		return s.ActiveSpace(userID)
	}

	if err := s.userRepo.SetActiveSpace(userID, &spaceID); err != nil {
		return nil, err
	}
	return s.spaceRepo.GetByID(spaceID)
}

// ActiveSpace returns the user's current space, falling back to the
// personal space when the pointer is unset or stale (e.g. the space was
// deleted or the user left it).
func (s *SpaceService) ActiveSpace(userID uuid.UUID) (*domain.Space, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if user.ActiveSpaceID != nil {
		ok, err := s.CanAccess(userID, *user.ActiveSpaceID)
		if err == nil && ok {
			return s.spaceRepo.GetByID(*user.ActiveSpaceID)
		}
		if err != nil && !errors.Is(err, domain.ErrSpaceNotFound) {
			return nil, err
		}
	}

	return s.EnsurePersonalSpace(userID)
}
