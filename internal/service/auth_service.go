package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/veland/larder/larder-backend/internal/domain"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo     domain.UserRepository
	spaceService *SpaceService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, spaceService *SpaceService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		spaceService: spaceService,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User          *domain.User
	PersonalSpace *domain.Space
	IsNewUser     bool
}

// AuthenticateUser handles the authentication flow after the Auth0
// callback. Creates the user and lazily ensures their personal space.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	isNew := false
	if _, err := s.userRepo.GetByAuth0ID(auth0ID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		isNew = true
	}

	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	personal, err := s.spaceService.EnsurePersonalSpace(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to ensure personal space")
		return nil, err
	}

	if isNew {
		log.Info().Str("user_id", user.ID.String()).Msg("Created new user with personal space")
	}

	return &AuthResult{
		User:          user,
		PersonalSpace: personal,
		IsNewUser:     isNew,
	}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}
