package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/service"
)

// MembershipHandler handles membership-related HTTP requests
type MembershipHandler struct {
	membershipService *service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// TransferOwnershipRequest represents the transfer request body
type TransferOwnershipRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// MemberResponse represents a space member in API responses
type MemberResponse struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	PictureURL *string `json:"pictureUrl"`
	Role       string  `json:"role"`
	JoinedAt   string  `json:"joinedAt"`
}

func toMemberResponse(m *service.Member) MemberResponse {
	return MemberResponse{
		UserID:     m.Membership.UserID.String(),
		Name:       m.Name,
		PictureURL: m.PictureURL,
		Role:       string(m.Membership.Role),
		JoinedAt:   m.Membership.JoinedAt.Format(time.RFC3339),
	}
}

// ListMembers handles GET /api/v1/spaces/:id/members
func (h *MembershipHandler) ListMembers(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	members, err := h.membershipService.ListMembers(spaceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).Str("space_id", spaceID.String()).Msg("Failed to list members")
		return NewInternalError(c, "Failed to list members")
	}

	response := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, toMemberResponse(m))
	}

	return c.JSON(http.StatusOK, response)
}

// Leave handles POST /api/v1/spaces/:id/members/leave.
// When the owner leaves, ownership passes to the earliest-joined remaining
// member; when the owner is the sole member, the space is torn down.
func (h *MembershipHandler) Leave(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	err = h.membershipService.Leave(userID, spaceID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMembershipNotFound), errors.Is(err, domain.ErrNotMember):
			return NewNotFoundError(c, "Membership not found")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("space_id", spaceID.String()).
			Msg("Failed to leave space")
		return NewInternalError(c, "Failed to leave space")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("space_id", spaceID.String()).
		Msg("Member left space")

	return c.NoContent(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/v1/spaces/:id/members/:userId
func (h *MembershipHandler) RemoveMember(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	targetUserID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return NewValidationError(c, "Invalid user ID", []ValidationError{
			{Field: "userId", Message: "Must be a valid UUID"},
		})
	}

	err = h.membershipService.RemoveMember(spaceID, userID, targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotOwner):
			return NewForbiddenError(c, "Only the owner can remove members")
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		case errors.Is(err, domain.ErrSelfRemoval):
			return NewValidationError(c, "Owners cannot remove themselves; leave the space instead", nil)
		case errors.Is(err, domain.ErrMembershipNotFound):
			return NewNotFoundError(c, "Member not found")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).
			Str("space_id", spaceID.String()).
			Str("target_user_id", targetUserID.String()).
			Msg("Failed to remove member")
		return NewInternalError(c, "Failed to remove member")
	}

	log.Info().
		Str("space_id", spaceID.String()).
		Str("removed_by", userID.String()).
		Str("target_user_id", targetUserID.String()).
		Msg("Member removed from space")

	return c.NoContent(http.StatusNoContent)
}

// TransferOwnership handles POST /api/v1/spaces/:id/members/transfer
func (h *MembershipHandler) TransferOwnership(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	spaceID, err := parseSpaceID(c)
	if err != nil {
		return err
	}

	var req TransferOwnershipRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	targetUserID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		return NewValidationError(c, "Invalid target user ID", []ValidationError{
			{Field: "targetUserId", Message: "Must be a valid UUID"},
		})
	}

	err = h.membershipService.TransferOwnership(spaceID, userID, targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotOwner):
			return NewForbiddenError(c, "Only the owner can transfer ownership")
		case errors.Is(err, domain.ErrNotMember):
			return NewForbiddenError(c, "Not a member of this space")
		case errors.Is(err, domain.ErrMembershipNotFound):
			return NewNotFoundError(c, "Target member not found")
		case errors.Is(err, domain.ErrSpaceNotFound):
			return NewNotFoundError(c, "Space not found")
		}
		log.Error().Err(err).
			Str("space_id", spaceID.String()).
			Str("target_user_id", targetUserID.String()).
			Msg("Failed to transfer ownership")
		return NewInternalError(c, "Failed to transfer ownership")
	}

	log.Info().
		Str("space_id", spaceID.String()).
		Str("from_user_id", userID.String()).
		Str("to_user_id", targetUserID.String()).
		Msg("Ownership transferred")

	return c.NoContent(http.StatusNoContent)
}
