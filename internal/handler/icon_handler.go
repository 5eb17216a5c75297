package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/service"
)

// IconHandler handles space icon upload HTTP requests
type IconHandler struct {
	iconService  *service.IconService
	spaceService *service.SpaceService
}

// NewIconHandler creates a new IconHandler
func NewIconHandler(iconService *service.IconService, spaceService *service.SpaceService) *IconHandler {
	return &IconHandler{
		iconService:  iconService,
		spaceService: spaceService,
	}
}

// IconResponse represents the upload response
type IconResponse struct {
	Icon string `json:"icon"`
	URL  string `json:"url"`
}

// UploadIcon handles POST /api/v1/spaces/:id/icon
func (h *IconHandler) UploadIcon(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	// If storage isn't configured, don't attempt to process/upload.
	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewServiceUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	if err := checkSpaceAccess(c, h.spaceService, userID, spaceID); err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	iconKey, err := h.iconService.ProcessAndUpload(c.Request().Context(), spaceID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIconTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 2MB"},
			})
		case errors.Is(err, service.ErrIconInvalidFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrIconTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 32x32 pixels"},
			})
		case errors.Is(err, service.ErrIconInvalidData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to upload icon")
		return NewInternalError(c, "Failed to upload icon")
	}

	// Record the key on the space and clean up the previous upload
	space, err := h.spaceService.GetSpace(spaceID)
	if err == nil && space.Icon != "" && space.Icon != iconKey {
		if delErr := h.iconService.Delete(c.Request().Context(), space.Icon); delErr != nil {
			log.Warn().Err(delErr).Str("icon", space.Icon).Msg("Failed to delete previous icon")
		}
	}

	if _, err := h.spaceService.SetIcon(spaceID, userID, iconKey); err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			return NewForbiddenError(c, "Not a member of this space")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to store icon reference")
		return NewInternalError(c, "Failed to upload icon")
	}

	url, err := h.iconService.PresignedURL(c.Request().Context(), iconKey)
	if err != nil {
		log.Warn().Err(err).Str("icon", iconKey).Msg("Failed to presign icon URL")
	}

	log.Info().
		Str("space_id", spaceID.String()).
		Str("icon", iconKey).
		Msg("Space icon uploaded")

	return c.JSON(http.StatusCreated, IconResponse{
		Icon: iconKey,
		URL:  url,
	})
}

// GetIconURL handles GET /api/v1/spaces/:id/icon, returning a presigned URL
// for uploaded icons and the raw value for builtin (emoji) icons.
func (h *IconHandler) GetIconURL(c echo.Context) error {
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
		return NewNotFoundError(c, "Space not found")
	}
	if space.Icon == "" {
		return NewNotFoundError(c, "Space has no icon")
	}

	url := space.Icon
	if h.iconService.IsEnabled() {
		if presigned, err := h.iconService.PresignedURL(c.Request().Context(), space.Icon); err == nil {
			url = presigned
		}
	}

	return c.JSON(http.StatusOK, IconResponse{
		Icon: space.Icon,
		URL:  url,
	})
}
