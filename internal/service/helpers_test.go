package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/testutil"
)

// testEnv wires the full service graph over the in-memory mocks, the same
// way cmd/api wires it over postgres.
type testEnv struct {
	users       *testutil.MockUserRepository
	spaces      *testutil.MockSpaceRepository
	memberships *testutil.MockMembershipRepository
	invites     *testutil.MockInviteRepository
	activities  *testutil.MockActivityRepository
	prefs       *testutil.MockNotificationPreferenceRepository

	activityService     *ActivityService
	notificationService *NotificationService
	inviteService       *InviteService
	spaceService        *SpaceService
	membershipService   *MembershipService
	authService         *AuthService
}

func newTestEnv() *testEnv {
	e := &testEnv{
		users:       testutil.NewMockUserRepository(),
		memberships: testutil.NewMockMembershipRepository(),
		activities:  testutil.NewMockActivityRepository(),
		prefs:       testutil.NewMockNotificationPreferenceRepository(),
	}
	e.invites = testutil.NewMockInviteRepository(e.memberships)
	e.spaces = testutil.NewMockSpaceRepository(e.memberships, e.invites, e.activities, e.prefs)

	e.activityService = NewActivityService(e.activities)
	e.notificationService = NewNotificationService(e.prefs)
	e.inviteService = NewInviteService(e.invites, e.memberships, e.spaces, e.users, e.activityService, e.notificationService)
	e.spaceService = NewSpaceService(e.spaces, e.memberships, e.users, e.inviteService, e.activityService)
	e.membershipService = NewMembershipService(e.memberships, e.spaces, e.users, e.spaceService, e.activityService)
	e.authService = NewAuthService(e.users, e.spaceService)
	return e
}

var userSeq int

// addUser registers a user directly in the mock repository
func (e *testEnv) addUser(name string) *domain.User {
	userSeq++
	user := &domain.User{
		ID:      uuid.New(),
		Auth0ID: fmt.Sprintf("auth0|%s-%d", name, userSeq),
		Email:   fmt.Sprintf("%s%d@example.com", name, userSeq),
		Name:    &name,
	}
	e.users.AddUser(user)
	return user
}

// mustCreateShared creates a shared space owned by the given user
func (e *testEnv) mustCreateShared(t *testing.T, owner *domain.User, name string) *domain.Space {
	t.Helper()
	space, err := e.spaceService.CreateSharedSpace(owner.ID, name, "")
	if err != nil {
		t.Fatalf("CreateSharedSpace failed: %v", err)
	}
	membership, err := e.memberships.GetActive(owner.ID, space.ID)
	if err != nil {
		t.Fatalf("Expected owner membership after create: %v", err)
	}
	membership.JoinedAt = nextJoinTime()
	return space
}

// mustJoin redeems the space's current active invite for the given user
func (e *testEnv) mustJoin(t *testing.T, user *domain.User, space *domain.Space) *domain.Membership {
	t.Helper()
	invite, err := e.inviteService.GetActiveInvite(space.ID)
	if err != nil {
		t.Fatalf("GetActiveInvite failed: %v", err)
	}
	if invite == nil {
		t.Fatalf("Expected an active invite for space %s", space.ID)
	}
	result, err := e.inviteService.Redeem(invite.Code, user.ID)
	if err != nil {
		t.Fatalf("Redeem failed for %s: %v", user.DisplayName(), err)
	}
	// Push join times apart so tenure ordering is deterministic.
	result.Membership.JoinedAt = nextJoinTime()
	return result.Membership
}

var joinSeq int64

func nextJoinTime() time.Time {
	joinSeq++
	return time.Unix(1_700_000_000+joinSeq*60, 0)
}

// activeOwners returns the user ids holding the owner role in a space
func (e *testEnv) activeOwners(t *testing.T, spaceID uuid.UUID) []uuid.UUID {
	t.Helper()
	memberships, err := e.memberships.ListActiveBySpace(spaceID)
	if err != nil {
		t.Fatalf("ListActiveBySpace failed: %v", err)
	}
	var owners []uuid.UUID
	for _, m := range memberships {
		if m.Role == domain.RoleOwner {
			owners = append(owners, m.UserID)
		}
	}
	return owners
}
