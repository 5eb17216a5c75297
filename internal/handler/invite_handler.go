package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/service"
)

// InviteHandler handles invite-related HTTP requests
type InviteHandler struct {
	inviteService *service.InviteService
	spaceService  *service.SpaceService
}

// NewInviteHandler creates a new InviteHandler
func NewInviteHandler(inviteService *service.InviteService, spaceService *service.SpaceService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		spaceService:  spaceService,
	}
}

// RedeemInviteRequest represents the redeem request body
type RedeemInviteRequest struct {
	Code string `json:"code"`
}

// InviteResponse represents an invite in API responses
type InviteResponse struct {
	ID        string `json:"id"`
	SpaceID   string `json:"spaceId"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expiresAt"`
	MaxUses   int    `json:"maxUses"`
	UsedCount int    `json:"usedCount"`
	Status    string `json:"status"`
}

// RedeemResponse represents the result of redeeming an invite
type RedeemResponse struct {
	Space         SpaceResponse `json:"space"`
	Role          string        `json:"role"`
	AlreadyMember bool          `json:"alreadyMember"`
}

func toInviteResponse(invite *domain.Invite) InviteResponse {
	return InviteResponse{
		ID:        invite.ID.String(),
		SpaceID:   invite.SpaceID.String(),
		Code:      invite.Code,
		ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
		MaxUses:   invite.MaxUses,
		UsedCount: invite.UsedCount,
		Status:    string(invite.Status),
	}
}

// GetActiveInvite handles GET /api/v1/spaces/:id/invite.
// Expired invites are persisted as expired on this read path; a space with
// no live invite returns 404.
func (h *InviteHandler) GetActiveInvite(c echo.Context) error {
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

	invite, err := h.inviteService.GetActiveInvite(spaceID)
	if err != nil {
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to get invite")
		return NewInternalError(c, "Failed to get invite")
	}
	if invite == nil {
		return NewNotFoundError(c, "No active invite for this space")
	}

	return c.JSON(http.StatusOK, toInviteResponse(invite))
}

// RegenerateInvite handles POST /api/v1/spaces/:id/invite.
// The old code is revoked and a fresh one issued; only the owner may do this.
func (h *InviteHandler) RegenerateInvite(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	invite, err := h.inviteService.RegenerateInvite(spaceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotOwner):
			return NewForbiddenError(c, "Only the owner can regenerate the invite")
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to regenerate invite")
		return NewInternalError(c, "Failed to regenerate invite")
	}

	log.Info().
		Str("space_id", spaceID.String()).
		Str("user_id", userID.String()).
		Msg("Invite regenerated")

	return c.JSON(http.StatusCreated, toInviteResponse(invite))
}

// Redeem handles POST /api/v1/invites/redeem
func (h *InviteHandler) Redeem(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req RedeemInviteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.inviteService.Redeem(req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "code", Message: "Invalid invite code format"},
			})
		case errors.Is(err, domain.ErrInviteNotFound), errors.Is(err, domain.ErrInviteInvalid):
			return NewNotFoundError(c, "Invite code not recognized")
		case errors.Is(err, domain.ErrInviteExpired):
			return NewGoneError(c, "This invite code has expired")
		case errors.Is(err, domain.ErrInviteExhausted):
			return NewConflictError(c, "This invite code has no uses remaining")
		case errors.Is(err, domain.ErrUserNotFound):
			return NewUnauthorizedError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to redeem invite")
		return NewInternalError(c, "Failed to redeem invite")
	}

	status := http.StatusCreated
	if result.AlreadyMember {
		status = http.StatusOK
	} else {
		log.Info().
			Str("user_id", userID.String()).
			Str("space_id", result.Space.ID.String()).
			Msg("Invite redeemed")
	}

	return c.JSON(status, RedeemResponse{
		Space:         toSpaceResponse(result.Space),
		Role:          string(result.Membership.Role),
		AlreadyMember: result.AlreadyMember,
	})
}
