package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/domain"
)

func TestListMembers_OrderedByTenure(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	carol := env.addUser("carol")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)
	env.mustJoin(t, carol, crew)

	members, err := env.membershipService.ListMembers(crew.ID, bob.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(members))
	}

	wantNames := []string{"alice", "bob", "carol"}
	for i, member := range members {
		if member.Name != wantNames[i] {
			t.Errorf("Expected member %d to be %s, got %s", i, wantNames[i], member.Name)
		}
	}
	if members[0].Membership.Role != domain.RoleOwner {
		t.Errorf("Expected first member to be the owner, got %s", members[0].Membership.Role)
	}
}

func TestListMembers_NonMemberRejected(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	stranger := env.addUser("mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if _, err := env.membershipService.ListMembers(crew.ID, stranger.ID); !errors.Is(err, domain.ErrNotMember) {
		t.Errorf("Expected ErrNotMember, got %v", err)
	}
}

func TestLeave_NonOwner(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	if err := env.membershipService.Leave(bob.ID, crew.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := env.memberships.GetActive(bob.ID, crew.ID); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Errorf("Expected no active membership after leave, got %v", err)
	}

	activities, _ := env.activityService.List(crew.ID, 0)
	if len(activities) == 0 || activities[0].Type != domain.ActivityMemberLeft {
		t.Errorf("Expected member_left as the newest activity")
	}
	if activities[0].ActorName != "bob" {
		t.Errorf("Expected leave attributed to 'bob', got %q", activities[0].ActorName)
	}
}

func TestLeave_OwnerPromotesEarliestJoined(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	carol := env.addUser("carol")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)
	env.mustJoin(t, carol, crew)

	if err := env.membershipService.Leave(alice.ID, crew.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Bob joined before Carol, so ownership lands on Bob.
	bobMembership, err := env.memberships.GetActive(bob.ID, crew.ID)
	if err != nil {
		t.Fatalf("Expected Bob to remain active, got %v", err)
	}
	if bobMembership.Role != domain.RoleOwner {
		t.Errorf("Expected Bob promoted to owner, got %s", bobMembership.Role)
	}

	owners := env.activeOwners(t, crew.ID)
	if len(owners) != 1 {
		t.Fatalf("Expected exactly one owner after succession, got %d", len(owners))
	}
	if owners[0] != bob.ID {
		t.Errorf("Expected owner %s, got %s", bob.ID, owners[0])
	}
}

func TestLeave_SoleOwnerTearsDownSpace(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.Leave(alice.ID, crew.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := env.spaceService.GetSpace(crew.ID); !errors.Is(err, domain.ErrSpaceNotFound) {
		t.Errorf("Expected space deleted when the last member leaves, got %v", err)
	}
	if n := env.memberships.CountBySpace(crew.ID); n != 0 {
		t.Errorf("Expected 0 memberships, got %d", n)
	}
	if n := env.invites.CountBySpace(crew.ID); n != 0 {
		t.Errorf("Expected 0 invites, got %d", n)
	}
	if n := env.activities.CountBySpace(crew.ID); n != 0 {
		t.Errorf("Expected 0 activity entries, got %d", n)
	}
}

func TestLeave_OwnerAloneAfterOthersLeft(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	if err := env.membershipService.Leave(bob.ID, crew.ID); err != nil {
		t.Fatalf("Bob's leave failed: %v", err)
	}

	// An inactive membership is not a successor: the space goes down.
	if err := env.membershipService.Leave(alice.ID, crew.ID); err != nil {
		t.Fatalf("Owner's leave failed: %v", err)
	}
	if _, err := env.spaceService.GetSpace(crew.ID); !errors.Is(err, domain.ErrSpaceNotFound) {
		t.Errorf("Expected space deleted, got %v", err)
	}
}

func TestLeave_NotAMember(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	stranger := env.addUser("mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.Leave(stranger.ID, crew.ID); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Errorf("Expected ErrMembershipNotFound, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	if err := env.membershipService.RemoveMember(crew.ID, alice.ID, bob.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := env.memberships.GetActive(bob.ID, crew.ID); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Errorf("Expected Bob's membership inactive, got %v", err)
	}

	activities, _ := env.activityService.List(crew.ID, 1)
	if len(activities) != 1 || activities[0].Type != domain.ActivityMemberRemoved {
		t.Fatalf("Expected member_removed as the newest activity")
	}
	// The entry carries the removed member's name, with the remover in the payload.
	if activities[0].ActorName != "bob" {
		t.Errorf("Expected removal attributed to 'bob', got %q", activities[0].ActorName)
	}
	if activities[0].Payload["removedBy"] != alice.ID.String() {
		t.Errorf("Expected removedBy payload %s, got %q", alice.ID, activities[0].Payload["removedBy"])
	}
}

func TestRemoveMember_NonOwnerRejected(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	carol := env.addUser("carol")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)
	env.mustJoin(t, carol, crew)

	if err := env.membershipService.RemoveMember(crew.ID, bob.ID, carol.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
	if _, err := env.memberships.GetActive(carol.ID, crew.ID); err != nil {
		t.Errorf("Expected Carol still active, got %v", err)
	}
}

func TestRemoveMember_SelfRemovalRejected(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.RemoveMember(crew.ID, alice.ID, alice.ID); !errors.Is(err, domain.ErrSelfRemoval) {
		t.Errorf("Expected ErrSelfRemoval, got %v", err)
	}
}

func TestRemoveMember_TargetNotActive(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	stranger := env.addUser("mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.RemoveMember(crew.ID, alice.ID, stranger.ID); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Errorf("Expected ErrMembershipNotFound, got %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	if err := env.membershipService.TransferOwnership(crew.ID, alice.ID, bob.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	aliceMembership, _ := env.memberships.GetActive(alice.ID, crew.ID)
	if aliceMembership.Role != domain.RoleMember {
		t.Errorf("Expected Alice demoted to member, got %s", aliceMembership.Role)
	}
	bobMembership, _ := env.memberships.GetActive(bob.ID, crew.ID)
	if bobMembership.Role != domain.RoleOwner {
		t.Errorf("Expected Bob promoted to owner, got %s", bobMembership.Role)
	}

	if owners := env.activeOwners(t, crew.ID); len(owners) != 1 {
		t.Errorf("Expected exactly one owner after transfer, got %d", len(owners))
	}
}

func TestTransferOwnership_NonOwnerRejected(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	carol := env.addUser("carol")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)
	env.mustJoin(t, carol, crew)

	if err := env.membershipService.TransferOwnership(crew.ID, bob.ID, carol.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
}

func TestTransferOwnership_ToSelfIsNoOp(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.TransferOwnership(crew.ID, alice.ID, alice.ID); err != nil {
		t.Fatalf("Expected silent no-op, got %v", err)
	}
	membership, _ := env.memberships.GetActive(alice.ID, crew.ID)
	if membership.Role != domain.RoleOwner {
		t.Errorf("Expected Alice to stay owner, got %s", membership.Role)
	}
}

func TestTransferOwnership_TargetNotActive(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	stranger := env.addUser("mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	if err := env.membershipService.TransferOwnership(crew.ID, alice.ID, stranger.ID); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Errorf("Expected ErrMembershipNotFound, got %v", err)
	}
}

func TestLeave_FailedHandoffLeavesNoTrace(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("alice")
	bob := env.addUser("bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	before := env.activities.CountBySpace(crew.ID)
	env.memberships.LeaveFn = func(spaceID, leavingUserID, successorUserID uuid.UUID) error {
		return domain.ErrConflict
	}

	if err := env.membershipService.Leave(alice.ID, crew.ID); err == nil {
		t.Fatal("Expected Leave to fail")
	}
	env.memberships.LeaveFn = nil

	m, err := env.memberships.GetActive(alice.ID, crew.ID)
	if err != nil {
		t.Fatalf("Expected alice to still be an active member: %v", err)
	}
	if m.Role != domain.RoleOwner {
		t.Errorf("Expected alice to still be owner, got %s", m.Role)
	}
	if got := env.activities.CountBySpace(crew.ID); got != before {
		t.Errorf("Expected %d activities after failed leave, got %d", before, got)
	}
}
