package service

import (
	"time"

	"github.com/walaka/walaka/internal/auth"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/domain/user"
	"github.com/walaka/walaka/internal/gate"
	"github.com/walaka/walaka/internal/testutil"
)

// newTestParams wires the suite's in-memory stores into service params
func newTestParams(s *testutil.BaseServiceTestSuite, cfg *config.Configuration) ServiceParams {
	return NewServiceParams(
		s.GetLogger(),
		cfg,
		s.GetStores().Repositories(),
		s.GetRBAC(),
		gate.NewRules(cfg.Gate),
		auth.NewProvider(cfg),
	)
}

// addUser stores a user whose account was created age ago
func addUser(s *testutil.BaseServiceTestSuite, id, role, createdBy string, age time.Duration) *user.User {
	u := &user.User{
		ID:            id,
		Email:         id + "@example.com",
		Role:          role,
		EnvironmentID: "env_" + id,
		CreatedBy:     createdBy,
		CreatedAt:     s.GetNow().Add(-age),
	}
	s.GetStores().UserRepo.Add(u)
	return u
}

func issueToken(cfg *config.Configuration, userID string) (string, error) {
	return auth.NewLocalAuth(cfg).GenerateToken(userID, userID+"@example.com", time.Hour)
}

// waitResolved blocks until the session gate leaves the Unknown state
func waitResolved(sess *Session, timeout time.Duration) bool {
	select {
	case <-sess.Gate.Done():
		return true
	case <-time.After(timeout):
		return false
	}
}
