package auth

import (
	"context"
	"time"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/types"
)

// Claims identify the signed-in user behind an access token
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
	// CreatedAt is when the user signed up, zero when the provider does not say
	CreatedAt time.Time
}

// Provider is the authentication collaborator
type Provider interface {
	GetProvider() types.AuthProvider

	// ValidateToken returns the current user of a session token, or an
	// ierr.ErrUnauthorized marked error when the session is not valid
	ValidateToken(ctx context.Context, token string) (*Claims, error)

	// SignOut invalidates the session on the provider side
	SignOut(ctx context.Context, token string) error
}

func NewProvider(cfg *config.Configuration) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg)
	default:
		return NewLocalAuth(cfg)
	}
}
