package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/campuschat-server/internal/auth"
	"github.com/vovakirdan/campuschat-server/internal/config"
	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
	"github.com/vovakirdan/campuschat-server/internal/store"
)

// NewServer builds the HTTP server with REST and WebSocket routes.
func NewServer(
	svc *messaging.Service,
	hub *core.Hub,
	authService *auth.Service,
	users store.UserStore,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	userHandlers := NewUserHandlers(users, logger)
	messageHandlers := NewMessageHandlers(svc, newRateLimiter(cfg.SendRateLimit), logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(authService, logger))
	protected.GET("/me", userHandlers.Me)
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.POST("/messages", messageHandlers.Send)
	protected.GET("/messages/:id", messageHandlers.Get)
	protected.POST("/messages/:id/read", messageHandlers.MarkRead)
	protected.GET("/conversations/:userId", messageHandlers.Conversation)
	protected.GET("/inbox", messageHandlers.Inbox)
	protected.GET("/notifications/unread", messageHandlers.Unread)
	protected.GET("/notifications/badge", messageHandlers.Badge)

	router.GET("/ws/notifications", NewWSHandler(hub, svc, authService, logger).Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
