package user

import (
	"context"
	"time"

	ierr "github.com/walaka/walaka/internal/errors"
)

// Account is the resolved owner of a user's trial and data environment
type Account struct {
	User  *User
	Owner *User
	// EnvironmentID is the owner's environment, falling back to the user's own
	EnvironmentID string
}

// ResolveAccount loads the user and, for invited users, the inviting owner.
// A missing owner row falls back to the user itself.
func ResolveAccount(ctx context.Context, repo Repository, userID string) (*Account, error) {
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	account := &Account{User: u, Owner: u, EnvironmentID: u.EnvironmentID}
	if !u.HasParent() {
		return account, nil
	}

	parent, err := repo.GetByID(ctx, u.CreatedBy)
	if err != nil {
		if ierr.IsNotFound(err) {
			return account, nil
		}
		return nil, err
	}

	account.Owner = parent
	if parent.EnvironmentID != "" {
		account.EnvironmentID = parent.EnvironmentID
	}
	return account, nil
}

// DefaultAccount is the account of a user without a profile row. The user
// owns its trial, started at createdAt, and has no environment yet.
func DefaultAccount(userID, email string, createdAt time.Time) *Account {
	u := &User{ID: userID, Email: email, CreatedAt: createdAt}
	return &Account{User: u, Owner: u}
}
