package user

import (
	"context"
)

type Repository interface {
	// GetByID returns the user or an ierr.ErrNotFound marked error
	GetByID(ctx context.Context, id string) (*User, error)
}
