package service

import (
	"errors"
	"testing"

	"github.com/veland/larder/larder-backend/internal/domain"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	env := newTestEnv()

	name := "Alice"
	picture := "https://cdn.example.com/alice.png"
	result, err := env.authService.AuthenticateUser("auth0|alice", "alice@example.com", &name, &picture)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser true on first sign-in")
	}
	if result.User.Email != "alice@example.com" {
		t.Errorf("Expected email 'alice@example.com', got %q", result.User.Email)
	}
	if result.PersonalSpace == nil {
		t.Fatal("Expected a personal space to be provisioned")
	}
	if result.PersonalSpace.ID != domain.PersonalSpaceID(result.User.ID) {
		t.Errorf("Expected deterministic personal space id, got %s", result.PersonalSpace.ID)
	}
	if result.PersonalSpace.Kind != domain.SpaceKindPersonal {
		t.Errorf("Expected kind 'personal', got %s", result.PersonalSpace.Kind)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	env := newTestEnv()

	first, err := env.authService.AuthenticateUser("auth0|alice", "alice@example.com", nil, nil)
	if err != nil {
		t.Fatalf("First sign-in failed: %v", err)
	}
	second, err := env.authService.AuthenticateUser("auth0|alice", "alice@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Second sign-in failed: %v", err)
	}

	if second.IsNewUser {
		t.Error("Expected IsNewUser false on repeat sign-in")
	}
	if first.User.ID != second.User.ID {
		t.Errorf("Expected the same user, got %s and %s", first.User.ID, second.User.ID)
	}
	if first.PersonalSpace.ID != second.PersonalSpace.ID {
		t.Errorf("Expected the same personal space, got %s and %s", first.PersonalSpace.ID, second.PersonalSpace.ID)
	}
}

func TestGetUserByAuth0ID_Unknown(t *testing.T) {
	env := newTestEnv()

	if _, err := env.authService.GetUserByAuth0ID("auth0|ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
