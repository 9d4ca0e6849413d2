package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/rbac"
	"github.com/walaka/walaka/internal/repository"
	"github.com/walaka/walaka/internal/types"
)

// Stores holds the in-memory repositories used by service tests
type Stores struct {
	DocumentRepo     *InMemoryDocumentStore
	UserRepo         *InMemoryUserStore
	SubscriptionRepo *InMemorySubscriptionStore
}

// Repositories exposes the in-memory stores the way the services consume them
func (s Stores) Repositories() *repository.Stores {
	return &repository.Stores{
		Sequences:     s.DocumentRepo,
		Counter:       s.DocumentRepo,
		Users:         s.UserRepo,
		Subscriptions: s.SubscriptionRepo,
		Documents:     s.DocumentRepo,
		Tx:            repository.NoopTransactor(),
	}
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	rbac   *rbac.RBACService
	rules  *gate.Rules
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.logger = logger.NewNoopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupConfig()
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupConfig() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Sequence.RetryInterval = time.Millisecond
	cfg.Gate.GracePeriod = 5 * time.Millisecond
	cfg.Gate.PollAttempts = 2
	cfg.Gate.PollInterval = 2 * time.Millisecond
	s.config = cfg

	authz, err := rbac.NewRBACService(cfg)
	if err != nil {
		s.T().Fatalf("failed to load roles: %v", err)
	}
	s.rbac = authz
	s.rules = gate.NewRules(cfg.Gate)
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		DocumentRepo:     NewInMemoryDocumentStore(),
		UserRepo:         NewInMemoryUserStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DocumentRepo.Clear()
	s.stores.UserRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetRBAC returns the role service loaded with the default roles
func (s *BaseServiceTestSuite) GetRBAC() *rbac.RBACService {
	return s.rbac
}

// GetRules returns the gate action table built from the test config
func (s *BaseServiceTestSuite) GetRules() *gate.Rules {
	return s.rules
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
