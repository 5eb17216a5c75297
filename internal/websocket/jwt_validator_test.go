package websocket

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockUserLookup is a test double for UserLookup
type mockUserLookup struct {
	userID uuid.UUID
	err    error
}

func (m *mockUserLookup) GetUserIDByAuth0ID(auth0ID string) (uuid.UUID, error) {
	return m.userID, m.err
}

func TestUserLookup_Interface(t *testing.T) {
	// Verify mockUserLookup implements UserLookup
	var _ UserLookup = (*mockUserLookup)(nil)
}

func TestJWTValidator_ErrorTypes(t *testing.T) {
	t.Run("ErrUnknownUser message", func(t *testing.T) {
		assert.Equal(t, "unknown user", ErrUnknownUser.Error())
	})

	t.Run("ErrInvalidToken message", func(t *testing.T) {
		assert.Equal(t, "invalid token", ErrInvalidToken.Error())
	})
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	err := claims.Validate(nil)
	assert.NoError(t, err, "CustomClaims.Validate should return nil")
}

func TestNewAuth0JWTValidator_EmptyDomain(t *testing.T) {
	lookup := &mockUserLookup{userID: uuid.New()}

	// Empty domain creates https:/// which is still a parseable URL
	validator, err := NewAuth0JWTValidator("", "audience", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, validator)
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockUserLookup{userID: uuid.New()}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.larder.app", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, validator)
	assert.NotNil(t, validator.validator)
	assert.Equal(t, lookup, validator.userLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockUserLookup{userID: uuid.New()}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.larder.app", lookup)
	assert.NoError(t, err)

	// Invalid token should return ErrInvalidToken
	userID, err := validator.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
