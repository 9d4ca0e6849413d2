package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/walaka/walaka/internal/domain/subscription"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) GetLatest(ctx context.Context, environmentID string) (*subscription.Subscription, error) {
	query := `SELECT id, environment_id, plan, status, end_date
		FROM subscriptions
		WHERE environment_id = $1
		ORDER BY end_date DESC
		LIMIT 1`

	var s subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, environmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load the subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}
