package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/veland/larder/larder-backend/internal/middleware"
)

// Handlers bundles everything RegisterRoutes wires up
type Handlers struct {
	Auth         *AuthHandler
	Space        *SpaceHandler
	Membership   *MembershipHandler
	Invite       *InviteHandler
	Activity     *ActivityHandler
	Notification *NotificationHandler
	Icon         *IconHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, redeemLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	// Space routes (protected)
	spaces := api.Group("/spaces")
	spaces.Use(authMiddleware.Authenticate())
	spaces.GET("", h.Space.ListSpaces)
	spaces.POST("", h.Space.CreateSpace)
	spaces.GET("/active", h.Space.GetActiveSpace)
	spaces.PUT("/active", h.Space.SwitchActiveSpace)
	spaces.GET("/:id", h.Space.GetSpace)
	spaces.PUT("/:id", h.Space.RenameSpace)
	spaces.DELETE("/:id", h.Space.DeleteSpace)

	// Icon routes
	spaces.GET("/:id/icon", h.Icon.GetIconURL)
	spaces.POST("/:id/icon", h.Icon.UploadIcon)

	// Membership routes
	spaces.GET("/:id/members", h.Membership.ListMembers)
	spaces.DELETE("/:id/members/:userId", h.Membership.RemoveMember)
	spaces.POST("/:id/members/leave", h.Membership.Leave)
	spaces.POST("/:id/members/transfer", h.Membership.TransferOwnership)

	// Invite routes
	spaces.GET("/:id/invite", h.Invite.GetActiveInvite)
	spaces.POST("/:id/invite", h.Invite.RegenerateInvite)

	// Redemption takes guessable codes, so it is rate limited per client IP
	invites := api.Group("/invites")
	invites.Use(authMiddleware.Authenticate())
	invites.POST("/redeem", h.Invite.Redeem, middleware.RateLimitMiddleware(redeemLimiter))

	// Activity routes
	spaces.GET("/:id/activities", h.Activity.ListActivities)
	spaces.POST("/:id/activities", h.Activity.RecordActivity)

	// Notification preference routes
	spaces.GET("/:id/notifications", h.Notification.GetPreference)
	spaces.PUT("/:id/notifications", h.Notification.SetPreference)

	// WebSocket feed (token auth via query parameter)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API documentation
	e.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
