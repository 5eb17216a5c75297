package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/service"
)

// ActivityHandler handles activity log HTTP requests
type ActivityHandler struct {
	activityService   *service.ActivityService
	membershipService *service.MembershipService
	spaceService      *service.SpaceService
	authService       *service.AuthService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(
	activityService *service.ActivityService,
	membershipService *service.MembershipService,
	spaceService *service.SpaceService,
	authService *service.AuthService,
) *ActivityHandler {
	return &ActivityHandler{
		activityService:   activityService,
		membershipService: membershipService,
		spaceService:      spaceService,
		authService:       authService,
	}
}

// RecordActivityRequest represents the content-event write request body
type RecordActivityRequest struct {
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload,omitempty"`
}

// ActivityResponse represents an activity entry in API responses
type ActivityResponse struct {
	ID        string            `json:"id"`
	SpaceID   string            `json:"spaceId"`
	ActorID   string            `json:"actorId"`
	ActorName string            `json:"actorName"`
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload"`
	CreatedAt string            `json:"createdAt"`
}

func toActivityResponse(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID.String(),
		SpaceID:   a.SpaceID.String(),
		ActorID:   a.ActorUserID.String(),
		ActorName: a.ActorName,
		Type:      string(a.Type),
		Payload:   a.Payload,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// ListActivities handles GET /api/v1/spaces/:id/activities
func (h *ActivityHandler) ListActivities(c echo.Context) error {
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

	limit := domain.MaxActivitiesPerSpace
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Must be a positive integer"},
			})
		}
		if parsed < limit {
			limit = parsed
		}
	}

	activities, err := h.activityService.List(spaceID, limit)
	if err != nil {
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to list activities")
		return NewInternalError(c, "Failed to list activities")
	}

	response := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		response = append(response, toActivityResponse(a))
	}

	return c.JSON(http.StatusOK, response)
}

// RecordActivity handles POST /api/v1/spaces/:id/activities.
// Content layers (products, containers) report their events here; membership
// events are written internally and rejected on this endpoint.
func (h *ActivityHandler) RecordActivity(c echo.Context) error {
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

	var req RecordActivityRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to resolve actor")
		return NewInternalError(c, "Failed to record activity")
	}

	activity, err := h.activityService.RecordContent(spaceID, userID, user.DisplayName(), domain.ActivityType(req.Type), req.Payload)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidActivity) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Unknown or non-content activity type"},
			})
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to record activity")
		return NewInternalError(c, "Failed to record activity")
	}

	return c.JSON(http.StatusCreated, toActivityResponse(activity))
}
