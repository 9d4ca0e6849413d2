package testutil

import (
	"context"
	"sync"

	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
)

// InMemoryUserStore is an in-memory implementation of the user repository
type InMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
	err   error
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[string]*user.User),
	}
}

// Add stores u, replacing any user with the same id
func (s *InMemoryUserStore) Add(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// FailWith makes every lookup return err
func (s *InMemoryUserStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, ierr.NewError("user not found").
			WithHintf("User %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *InMemoryUserStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*user.User)
	s.err = nil
}
