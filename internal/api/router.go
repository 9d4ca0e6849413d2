package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/walaka/walaka/internal/api/v1"
	"github.com/walaka/walaka/internal/auth"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/metrics"
	"github.com/walaka/walaka/internal/rest/middleware"
	"github.com/walaka/walaka/internal/types"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Sequence *v1.SequenceHandler
	Session  *v1.SessionHandler
	Document *v1.DocumentHandler
	RBAC     *v1.RBACHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, authProvider auth.Provider) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		metrics.GinMiddleware(),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// v1 routes
	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AuthenticateMiddleware(authProvider, logger))
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	sequences := router.Group("/sequences")
	{
		sequences.POST("/next", handlers.Sequence.Next)
	}

	sessions := router.Group("/sessions")
	{
		sessions.POST("", handlers.Session.Start)
		sessions.GET("/:id", handlers.Session.Get)
		sessions.DELETE("/:id", handlers.Session.End)
		sessions.POST("/:id/decisions", handlers.Session.Decide)
		sessions.POST("/:id/modal/dismiss", handlers.Session.DismissModal)
		sessions.POST("/:id/marks", handlers.Session.Mark)
		sessions.POST("/:id/documents", handlers.Document.Create)
	}

	rbac := router.Group("/rbac")
	{
		rbac.GET("/roles", handlers.RBAC.ListRoles)
		rbac.GET("/roles/:id", handlers.RBAC.GetRole)
	}
}
