package auth

import (
	"context"

	"github.com/nedpals/supabase-go"
	"github.com/walaka/walaka/internal/config"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

type supabaseAuth struct {
	AuthConfig config.AuthConfig
	client     *supabase.Client
}

func NewSupabaseAuth(cfg *config.Configuration) Provider {
	return &supabaseAuth{
		AuthConfig: cfg.Auth,
		client:     supabase.CreateClient(cfg.Supabase.BaseURL, cfg.Supabase.ServiceKey),
	}
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

// ValidateToken asks supabase for the current user of the session. When a
// JWT secret is configured the token is checked locally first.
func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	var claims *Claims
	if s.AuthConfig.Secret != "" {
		parsed, err := parseToken(token, s.AuthConfig.Secret)
		if err != nil {
			return nil, err
		}
		claims = parsed
	}

	user, err := s.client.Auth.User(ctx, token)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Your session has expired, please sign in again").
			Mark(ierr.ErrUnauthorized)
	}

	if claims == nil {
		claims = &Claims{}
	}
	claims.UserID = user.ID
	claims.Email = user.Email
	claims.CreatedAt = user.CreatedAt
	return claims, nil
}

func (s *supabaseAuth) SignOut(ctx context.Context, token string) error {
	if err := s.client.Auth.SignOut(ctx, token); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to sign out").
			Mark(ierr.ErrSystem)
	}
	return nil
}
