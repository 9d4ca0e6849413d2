package service

import (
	"github.com/walaka/walaka/internal/auth"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/domain/document"
	"github.com/walaka/walaka/internal/domain/sequence"
	"github.com/walaka/walaka/internal/domain/subscription"
	"github.com/walaka/walaka/internal/domain/user"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/rbac"
	"github.com/walaka/walaka/internal/repository"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	SequenceRepo sequence.Repository
	Counter      sequence.Counter
	UserRepo     user.Repository
	SubRepo      subscription.Repository
	DocumentRepo document.Repository
	Tx           repository.Transactor

	// Gate
	RBAC  *rbac.RBACService
	Rules *gate.Rules
	Auth  auth.Provider
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	stores *repository.Stores,
	rbacService *rbac.RBACService,
	rules *gate.Rules,
	authProvider auth.Provider,
) ServiceParams {
	tx := stores.Tx
	if tx == nil {
		tx = repository.NoopTransactor()
	}
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		SequenceRepo: stores.Sequences,
		Counter:      stores.Counter,
		UserRepo:     stores.Users,
		SubRepo:      stores.Subscriptions,
		DocumentRepo: stores.Documents,
		Tx:           tx,
		RBAC:         rbacService,
		Rules:        rules,
		Auth:         authProvider,
	}
}
