package subscription

import "context"

type Repository interface {
	// GetLatest returns the subscription with the latest end date for the environment,
	// or nil when the environment never subscribed.
	GetLatest(ctx context.Context, environmentID string) (*Subscription, error)
}
