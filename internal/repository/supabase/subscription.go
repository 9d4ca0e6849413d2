package supabase

import (
	"context"

	"github.com/nedpals/supabase-go"
	"github.com/samber/lo"
	"github.com/walaka/walaka/internal/domain/subscription"
	"github.com/walaka/walaka/internal/logger"
)

type subscriptionRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewSubscriptionRepository(client *supabase.Client, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{client: client, logger: logger}
}

func (r *subscriptionRepository) GetLatest(ctx context.Context, environmentID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From("subscriptions").
		Select("id", "environment_id", "plan", "status", "end_date").
		Eq("environment_id", environmentID).
		Execute(&rows)
	if err != nil {
		return nil, databaseError(err, "Failed to load the subscription")
	}

	if len(rows) == 0 {
		return nil, nil
	}
	latest := lo.MaxBy(rows, func(a, b subscription.Subscription) bool {
		return a.EndDate.After(b.EndDate)
	})
	return &latest, nil
}
