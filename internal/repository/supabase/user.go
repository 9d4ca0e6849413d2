package supabase

import (
	"context"

	"github.com/nedpals/supabase-go"
	"github.com/walaka/walaka/internal/domain/user"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
)

type userRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewUserRepository(client *supabase.Client, logger *logger.Logger) user.Repository {
	return &userRepository{client: client, logger: logger}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var rows []user.User
	err := r.client.DB.From("users").
		Select("id", "email", "role", "environment_id", "created_by", "created_at").
		Eq("id", id).
		Execute(&rows)
	if err != nil {
		return nil, databaseError(err, "Failed to load the user profile")
	}

	if len(rows) == 0 {
		return nil, ierr.NewError("user not found").
			WithHintf("User %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return &rows[0], nil
}
