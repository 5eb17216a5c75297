package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/service"
)

// NotificationHandler handles notification preference HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
	spaceService        *service.SpaceService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService, spaceService *service.SpaceService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		spaceService:        spaceService,
	}
}

// NotificationPreferenceRequest represents the preference update body
type NotificationPreferenceRequest struct {
	Enabled bool `json:"enabled"`
}

// NotificationPreferenceResponse represents a preference in API responses
type NotificationPreferenceResponse struct {
	SpaceID string `json:"spaceId"`
	Enabled bool   `json:"enabled"`
}

// GetPreference handles GET /api/v1/spaces/:id/notifications.
// An unset preference reads as enabled.
func (h *NotificationHandler) GetPreference(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	if err := checkSpaceAccess(c, h.spaceService, userID, spaceID); err != nil {
		return err
	}

	enabled, err := h.notificationService.Get(userID, spaceID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("space_id", spaceID.String()).
			Msg("Failed to get notification preference")
		return NewInternalError(c, "Failed to get notification preference")
	}

	return c.JSON(http.StatusOK, NotificationPreferenceResponse{
		SpaceID: spaceID.String(),
		Enabled: enabled,
	})
}

// SetPreference handles PUT /api/v1/spaces/:id/notifications
func (h *NotificationHandler) SetPreference(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	if err := checkSpaceAccess(c, h.spaceService, userID, spaceID); err != nil {
		return err
	}

	var req NotificationPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	pref, err := h.notificationService.Set(userID, spaceID, req.Enabled)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("space_id", spaceID.String()).
			Msg("Failed to set notification preference")
		return NewInternalError(c, "Failed to set notification preference")
	}

	return c.JSON(http.StatusOK, NotificationPreferenceResponse{
		SpaceID: pref.SpaceID.String(),
		Enabled: pref.Enabled,
	})
}
