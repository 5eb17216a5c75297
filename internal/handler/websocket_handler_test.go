package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/veland/larder/larder-backend/internal/websocket"
)

// stubValidator maps one token to one user id
type stubValidator struct {
	token  string
	userID uuid.UUID
}

func (v *stubValidator) ValidateToken(token string) (uuid.UUID, error) {
	if token == v.token {
		return v.userID, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

// stubAccessChecker grants access to one (user, space) pair
type stubAccessChecker struct {
	userID  uuid.UUID
	spaceID uuid.UUID
}

func (a *stubAccessChecker) CanAccess(userID, spaceID uuid.UUID) (bool, error) {
	return userID == a.userID && spaceID == a.spaceID, nil
}

func newWSTestHandler(t *testing.T) (*WebSocketHandler, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	spaceID := uuid.New()
	hub := websocket.NewHub()
	validator := &stubValidator{token: "good-token", userID: userID}
	access := &stubAccessChecker{userID: userID, spaceID: spaceID}
	return NewWebSocketHandler(hub, validator, access, nil), spaceID
}

func wsContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	handler, spaceID := newWSTestHandler(t)

	c, _ := wsContext(e, "/ws?spaceId="+spaceID.String())
	err := handler.HandleWS(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected an HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.Code)
	}
}

func TestHandleWS_InvalidSpaceID(t *testing.T) {
	e := echo.New()
	handler, _ := newWSTestHandler(t)

	for _, target := range []string{"/ws?token=good-token", "/ws?token=good-token&spaceId=nope"} {
		c, _ := wsContext(e, target)
		err := handler.HandleWS(c)

		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("Expected an HTTP error for %s, got %v", target, err)
		}
		if httpErr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", target, httpErr.Code)
		}
	}
}

func TestHandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	handler, spaceID := newWSTestHandler(t)

	c, _ := wsContext(e, "/ws?token=bad-token&spaceId="+spaceID.String())
	err := handler.HandleWS(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected an HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.Code)
	}
}

func TestHandleWS_NoSpaceAccess(t *testing.T) {
	e := echo.New()
	handler, _ := newWSTestHandler(t)

	// Valid token, but a space the user is not a member of.
	c, _ := wsContext(e, "/ws?token=good-token&spaceId="+uuid.NewString())
	err := handler.HandleWS(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected an HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", httpErr.Code)
	}
}

func TestCheckOrigin(t *testing.T) {
	hub := websocket.NewHub()
	handler := NewWebSocketHandler(hub, &stubValidator{}, &stubAccessChecker{}, []string{"https://app.larder.app"})

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header", "", true},
		{"allowed origin", "https://app.larder.app", true},
		{"disallowed origin", "https://evil.example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := handler.checkOrigin(req); got != tc.want {
				t.Errorf("Expected checkOrigin=%v for %q, got %v", tc.want, tc.origin, got)
			}
		})
	}
}
