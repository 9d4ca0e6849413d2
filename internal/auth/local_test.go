package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walaka/walaka/internal/config"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

func TestLocalAuthRoundTrip(t *testing.T) {
	provider := NewLocalAuth(config.GetDefaultConfig())
	assert.Equal(t, types.AuthProviderLocal, provider.GetProvider())

	token, err := provider.GenerateToken("usr_1", "ana@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := provider.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
	assert.True(t, claims.CreatedAt.IsZero())
}

func TestLocalAuthSignUpTime(t *testing.T) {
	cfg := config.GetDefaultConfig()
	signedUp := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        "usr_1",
		"exp":        time.Now().Add(time.Hour).Unix(),
		"created_at": signedUp.Unix(),
	}).SignedString([]byte(cfg.Auth.Secret))
	require.NoError(t, err)

	claims, err := NewLocalAuth(cfg).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, signedUp, claims.CreatedAt)
}

func TestLocalAuthRejects(t *testing.T) {
	provider := NewLocalAuth(config.GetDefaultConfig())

	t.Run("expired", func(t *testing.T) {
		token, err := provider.GenerateToken("usr_1", "", -time.Minute)
		require.NoError(t, err)

		_, err = provider.ValidateToken(context.Background(), token)
		assert.True(t, ierr.IsUnauthorized(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.Auth.Secret = "another-secret"
		token, err := NewLocalAuth(cfg).GenerateToken("usr_1", "", time.Hour)
		require.NoError(t, err)

		_, err = provider.ValidateToken(context.Background(), token)
		assert.True(t, ierr.IsUnauthorized(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := provider.ValidateToken(context.Background(), "not-a-token")
		assert.True(t, ierr.IsUnauthorized(err))
	})
}
