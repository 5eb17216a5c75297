package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/middleware"
	"github.com/veland/larder/larder-backend/internal/service"
)

// SpaceHandler handles space-related HTTP requests
type SpaceHandler struct {
	spaceService *service.SpaceService
}

// NewSpaceHandler creates a new SpaceHandler
func NewSpaceHandler(spaceService *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService}
}

// CreateSpaceRequest represents the create space request body
type CreateSpaceRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// RenameSpaceRequest represents the rename request body
type RenameSpaceRequest struct {
	Name string `json:"name"`
}

// SwitchSpaceRequest represents the switch-active request body
type SwitchSpaceRequest struct {
	SpaceID string `json:"spaceId"`
}

// SpaceResponse represents a space in API responses
type SpaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Icon      string `json:"icon,omitempty"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toSpaceResponse(space *domain.Space) SpaceResponse {
	return SpaceResponse{
		ID:        space.ID.String(),
		Name:      space.Name,
		Kind:      string(space.Kind),
		Icon:      space.Icon,
		CreatedBy: space.CreatedBy.String(),
		CreatedAt: space.CreatedAt.Format(time.RFC3339),
		UpdatedAt: space.UpdatedAt.Format(time.RFC3339),
	}
}

// requireUser extracts the authenticated user ID or writes a 401
func requireUser(c echo.Context) (uuid.UUID, error) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return uuid.Nil, NewUnauthorizedError(c, "Authentication required")
	}
	return userID, nil
}

// parseSpaceID parses the :id path parameter
func parseSpaceID(c echo.Context) (uuid.UUID, error) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, NewValidationError(c, "Invalid space ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}
	return spaceID, nil
}

// checkSpaceAccess writes a 404 when the space does not exist or the user
// cannot act in it; both cases look the same so ids are not probeable.
func checkSpaceAccess(c echo.Context, spaceService *service.SpaceService, userID, spaceID uuid.UUID) error {
	ok, err := spaceService.CanAccess(userID, spaceID)
	if err != nil {
		if errors.Is(err, domain.ErrSpaceNotFound) {
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Access check failed")
		return NewInternalError(c, "Failed to check space access")
	}
	if !ok {
		return NewNotFoundError(c, "Space not found")
	}
	return nil
}

// ListSpaces handles GET /api/v1/spaces
func (h *SpaceHandler) ListSpaces(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaces, err := h.spaceService.ListSpaces(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list spaces")
		return NewInternalError(c, "Failed to list spaces")
	}

	response := make([]SpaceResponse, 0, len(spaces))
	for _, space := range spaces {
		response = append(response, toSpaceResponse(space))
	}

	return c.JSON(http.StatusOK, response)
}

// CreateSpace handles POST /api/v1/spaces
func (h *SpaceHandler) CreateSpace(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req CreateSpaceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	space, err := h.spaceService.CreateSharedSpace(userID, req.Name, req.Icon)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create space")
		return NewInternalError(c, "Failed to create space")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("space_id", space.ID.String()).
		Msg("Shared space created")

	return c.JSON(http.StatusCreated, toSpaceResponse(space))
}

// GetSpace handles GET /api/v1/spaces/:id
func (h *SpaceHandler) GetSpace(c echo.Context) error {
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

	space, err := h.spaceService.GetSpace(spaceID)
	if err != nil {
		if errors.Is(err, domain.ErrSpaceNotFound) {
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to get space")
		return NewInternalError(c, "Failed to get space")
	}

	return c.JSON(http.StatusOK, toSpaceResponse(space))
}

// RenameSpace handles PUT /api/v1/spaces/:id
func (h *SpaceHandler) RenameSpace(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	var req RenameSpaceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	space, err := h.spaceService.RenameSpace(spaceID, userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to rename space")
		return NewInternalError(c, "Failed to rename space")
	}

	return c.JSON(http.StatusOK, toSpaceResponse(space))
}

// DeleteSpace handles DELETE /api/v1/spaces/:id
func (h *SpaceHandler) DeleteSpace(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	err = h.spaceService.DeleteSharedSpace(spaceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		case errors.Is(err, domain.ErrNotOwner):
			return NewForbiddenError(c, "Only the owner can delete a space")
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to delete space")
		return NewInternalError(c, "Failed to delete space")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("space_id", spaceID.String()).
		Msg("Space deleted")

	return c.NoContent(http.StatusNoContent)
}

// GetActiveSpace handles GET /api/v1/spaces/active
func (h *SpaceHandler) GetActiveSpace(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	space, err := h.spaceService.ActiveSpace(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get active space")
		return NewInternalError(c, "Failed to get active space")
	}

	return c.JSON(http.StatusOK, toSpaceResponse(space))
}

// SwitchActiveSpace handles PUT /api/v1/spaces/active.
// Switching to an inaccessible space is a silent no-op that returns the
// current active space, so stale clients degrade gracefully.
func (h *SpaceHandler) SwitchActiveSpace(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req SwitchSpaceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	spaceID, err := uuid.Parse(req.SpaceID)
	if err != nil {
		return NewValidationError(c, "Invalid space ID", []ValidationError{
			{Field: "spaceId", Message: "Must be a valid UUID"},
		})
	}

	space, err := h.spaceService.SwitchActive(userID, spaceID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to switch active space")
		return NewInternalError(c, "Failed to switch active space")
	}

	return c.JSON(http.StatusOK, toSpaceResponse(space))
}
