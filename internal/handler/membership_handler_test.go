package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/veland/larder/larder-backend/internal/domain"
)

func TestListMembers(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	req := newJSONRequest(http.MethodGet, "/api/v1/spaces/"+crew.ID.String()+"/members", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, bob)

	if err := handler.ListMembers(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(response))
	}
	if response[0].Role != "owner" {
		t.Errorf("Expected the owner listed first, got role %s", response[0].Role)
	}
	if response[0].Name != "Alice" {
		t.Errorf("Expected owner 'Alice', got %s", response[0].Name)
	}
	if response[1].Name != "Bob" {
		t.Errorf("Expected member 'Bob', got %s", response[1].Name)
	}
}

func TestListMembers_NonMemberForbidden(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	mallory := env.addUser("Mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	req := newJSONRequest(http.MethodGet, "/api/v1/spaces/"+crew.ID.String()+"/members", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, mallory)

	if err := handler.ListMembers(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestLeave(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/leave", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, bob)

	if err := handler.Leave(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, err := env.memberships.GetActive(bob.ID, crew.ID); err == nil {
		t.Error("Expected Bob's membership gone")
	}
}

func TestLeave_OwnerHandsOff(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/leave", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.Leave(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	membership, err := env.memberships.GetActive(bob.ID, crew.ID)
	if err != nil {
		t.Fatalf("Expected Bob still active, got %v", err)
	}
	if membership.Role != domain.RoleOwner {
		t.Errorf("Expected Bob promoted to owner, got %s", membership.Role)
	}
}

func TestLeave_NotAMember(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	mallory := env.addUser("Mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/leave", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, mallory)

	if err := handler.Leave(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestRemoveMember_Handler(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	target := fmt.Sprintf("/api/v1/spaces/%s/members/%s", crew.ID, bob.ID)
	req := newJSONRequest(http.MethodDelete, target, "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "userId")
	c.SetParamValues(crew.ID.String(), bob.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.RemoveMember(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, err := env.memberships.GetActive(bob.ID, crew.ID); err == nil {
		t.Error("Expected Bob's membership gone")
	}
}

func TestRemoveMember_Handler_NonOwnerForbidden(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	carol := env.addUser("Carol")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)
	env.mustJoin(t, carol, crew)

	target := fmt.Sprintf("/api/v1/spaces/%s/members/%s", crew.ID, carol.ID)
	req := newJSONRequest(http.MethodDelete, target, "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "userId")
	c.SetParamValues(crew.ID.String(), carol.ID.String())
	setupAuthContextWithUser(c, bob)

	if err := handler.RemoveMember(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestRemoveMember_Handler_SelfRemovalRejected(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	target := fmt.Sprintf("/api/v1/spaces/%s/members/%s", crew.ID, alice.ID)
	req := newJSONRequest(http.MethodDelete, target, "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "userId")
	c.SetParamValues(crew.ID.String(), alice.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.RemoveMember(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestTransferOwnership_Handler(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	bob := env.addUser("Bob")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")
	env.mustJoin(t, bob, crew)

	body := fmt.Sprintf(`{"targetUserId": %q}`, bob.ID)
	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/transfer", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.TransferOwnership(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	membership, _ := env.memberships.GetActive(bob.ID, crew.ID)
	if membership.Role != domain.RoleOwner {
		t.Errorf("Expected Bob owner after transfer, got %s", membership.Role)
	}
}

func TestTransferOwnership_Handler_TargetNotFound(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	mallory := env.addUser("Mallory")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	body := fmt.Sprintf(`{"targetUserId": %q}`, mallory.ID)
	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/transfer", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.TransferOwnership(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestTransferOwnership_Handler_MalformedTarget(t *testing.T) {
	e := echo.New()
	env := newHandlerEnv()
	handler := NewMembershipHandler(env.membershipService)
	alice := env.addUser("Alice")
	crew := env.mustCreateShared(t, alice, "Kitchen Crew")

	req := newJSONRequest(http.MethodPost, "/api/v1/spaces/"+crew.ID.String()+"/members/transfer", `{"targetUserId": "nope"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(crew.ID.String())
	setupAuthContextWithUser(c, alice)

	if err := handler.TransferOwnership(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
