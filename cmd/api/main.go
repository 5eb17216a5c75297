package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veland/larder/larder-backend/internal/config"
	"github.com/veland/larder/larder-backend/internal/handler"
	"github.com/veland/larder/larder-backend/internal/middleware"
	"github.com/veland/larder/larder-backend/internal/repository/postgres"
	"github.com/veland/larder/larder-backend/internal/repository/storage"
	"github.com/veland/larder/larder-backend/internal/service"
	"github.com/veland/larder/larder-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	spaceRepo := postgres.NewSpaceRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	inviteRepo := postgres.NewInviteRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	prefRepo := postgres.NewNotificationPreferenceRepository(pool)

	// Icon storage is optional; without credentials uploads are disabled
	var iconService *service.IconService
	if cfg.S3.AccessKeyID != "" || cfg.S3.Endpoint != "" {
		iconStorage, err := storage.NewS3IconRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize icon storage")
		}
		iconService = service.NewIconService(iconStorage)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Icon storage enabled")
	} else {
		iconService = service.NewIconService(nil)
		log.Warn().Msg("Icon storage not configured; icon uploads disabled")
	}

	// WebSocket hub for live activity feeds, one room per space
	hub := websocket.NewHub()

	// Initialize services
	activityService := service.NewActivityService(activityRepo)
	activityService.SetEventPublisher(hub)
	notificationService := service.NewNotificationService(prefRepo)
	inviteService := service.NewInviteService(inviteRepo, membershipRepo, spaceRepo, userRepo, activityService, notificationService)
	spaceService := service.NewSpaceService(spaceRepo, membershipRepo, userRepo, inviteService, activityService)
	membershipService := service.NewMembershipService(membershipRepo, spaceRepo, userRepo, spaceService, activityService)
	authService := service.NewAuthService(userRepo, spaceService)

	// Create user provider adapter for auth middleware
	userProvider := &userProviderAdapter{authService: authService}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Rate limiter for invite redemption
	redeemLimiter := middleware.NewRateLimiter()
	defer redeemLimiter.Stop()

	// JWT validator for WebSocket connections
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, spaceService),
		Space:        handler.NewSpaceHandler(spaceService),
		Membership:   handler.NewMembershipHandler(membershipService),
		Invite:       handler.NewInviteHandler(inviteService, spaceService),
		Activity:     handler.NewActivityHandler(activityService, membershipService, spaceService, authService),
		Notification: handler.NewNotificationHandler(notificationService, spaceService),
		Icon:         handler.NewIconHandler(iconService, spaceService),
		WebSocket:    handler.NewWebSocketHandler(hub, wsValidator, spaceService, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, redeemLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// userProviderAdapter adapts AuthService to middleware.UserProvider and
// websocket.UserLookup
type userProviderAdapter struct {
	authService *service.AuthService
}

// GetUserIDByAuth0ID implements middleware.UserProvider
func (a *userProviderAdapter) GetUserIDByAuth0ID(auth0ID string) (uuid.UUID, error) {
	user, err := a.authService.GetUserByAuth0ID(auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
