// Package server mounts the HTTP surface: health check plus the
// auth/task/conversation route groups, behind shared CORS/logging/recovery
// middleware.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/xarvis/internal/config"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"github.com/xpanvictor/xarvis/internal/handlers"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

// Dependencies bundles everything InitializeRoutes needs to wire the API
// surface. The app package builds one of these during startup.
type Dependencies struct {
	UserService  user.UserService
	UserHandler  *handlers.UserHandler
	TaskHandler  *handlers.TaskHandler
	ConvoHandler *handlers.ConversationHandler
	Logger       *Logger.Logger
}

// InitializeRoutes mounts every route group under /api/v1 and a top-level
// health check, wrapping everything in CORS, request logging, and panic
// recovery middleware.
func InitializeRoutes(cfg *config.Settings, router *gin.Engine, deps Dependencies) {
	router.Use(
		handlers.CORSMiddleware(cfg.Auth.CORSOrigins),
		handlers.RequestLoggerMiddleware(deps.Logger),
		handlers.ErrorHandlerMiddleware(deps.Logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		deps.UserHandler.RegisterUserRoutes(v1)
		deps.TaskHandler.RegisterTaskRoutes(v1, deps.UserService)
		deps.ConvoHandler.RegisterConversationRoutes(v1, deps.UserService)
	}
}
