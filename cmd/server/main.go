package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/api"
	v1 "github.com/walaka/walaka/internal/api/v1"
	"github.com/walaka/walaka/internal/auth"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/rbac"
	"github.com/walaka/walaka/internal/repository"
	"github.com/walaka/walaka/internal/service"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Auth
			auth.NewProvider,

			// RBAC and gate rules
			rbac.NewRBACService,
			provideRules,
		),
	)

	// Repositories
	opts = append(opts, repository.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSequenceService,
			service.NewTrialService,
			service.NewSessionService,
			service.NewDocumentService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideRules(cfg *config.Configuration) *gate.Rules {
	return gate.NewRules(cfg.Gate)
}

func provideHandlers(
	logger *logger.Logger,
	rbacService *rbac.RBACService,
	sequenceService service.SequenceService,
	sessionService service.SessionService,
	documentService service.DocumentService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Sequence: v1.NewSequenceHandler(sequenceService, logger),
		Session:  v1.NewSessionHandler(sessionService, logger),
		Document: v1.NewDocumentHandler(documentService, logger),
		RBAC:     v1.NewRBACHandler(rbacService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, authProvider auth.Provider) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, authProvider)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
