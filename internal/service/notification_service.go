package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/domain"
)

// NotificationService handles per-(user, space) notification preferences
type NotificationService struct {
	prefRepo domain.NotificationPreferenceRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(prefRepo domain.NotificationPreferenceRepository) *NotificationService {
	return &NotificationService{prefRepo: prefRepo}
}

// Get returns whether notifications are enabled for the user in the space.
// An unset preference means enabled; absence is not the same as disabled.
func (s *NotificationService) Get(userID, spaceID uuid.UUID) (bool, error) {
	pref, err := s.prefRepo.Get(userID, spaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return pref.Enabled, nil
}

// Set upserts the preference
func (s *NotificationService) Set(userID, spaceID uuid.UUID, enabled bool) (*domain.NotificationPreference, error) {
	return s.prefRepo.Set(userID, spaceID, enabled)
}
