package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
)

type userRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, email, role, environment_id, created_by, created_at FROM users WHERE id = $1`

	var u user.User
	err := r.db.GetQuerier(ctx).GetContext(ctx, &u, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.WithError(err).
			WithHintf("User %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load the user profile").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}
