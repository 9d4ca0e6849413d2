package testutil

import (
	"context"
	"sync"

	"github.com/walaka/walaka/internal/domain/subscription"
)

type InMemorySubscriptionStore struct {
	mu   sync.Mutex
	subs []*subscription.Subscription
	// err, when set, is returned by every lookup
	err error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{}
}

func (s *InMemorySubscriptionStore) Add(sub *subscription.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

// FailWith makes every following lookup return err
func (s *InMemorySubscriptionStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemorySubscriptionStore) GetLatest(ctx context.Context, environmentID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	var latest *subscription.Subscription
	for _, sub := range s.subs {
		if sub.EnvironmentID != environmentID {
			continue
		}
		if latest == nil || sub.EndDate.After(latest.EndDate) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = nil
	s.err = nil
}
