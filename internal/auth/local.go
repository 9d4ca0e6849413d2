package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/walaka/walaka/internal/config"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

// localAuth validates HS256 tokens signed with the configured secret
type localAuth struct {
	AuthConfig config.AuthConfig
}

func NewLocalAuth(cfg *config.Configuration) *localAuth {
	return &localAuth{
		AuthConfig: cfg.Auth,
	}
}

func (l *localAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderLocal
}

func (l *localAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	return parseToken(token, l.AuthConfig.Secret)
}

// SignOut is a no-op, local tokens expire on their own
func (l *localAuth) SignOut(ctx context.Context, token string) error {
	return nil
}

// GenerateToken signs a token for userID, used for local development and tests
func (l *localAuth) GenerateToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(l.AuthConfig.Secret))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}
	return signed, nil
}

func parseToken(token, secret string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Your session has expired, please sign in again").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Your session has expired, please sign in again").
			Mark(ierr.ErrUnauthorized)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Your session has expired, please sign in again").
			Mark(ierr.ErrUnauthorized)
	}

	result := &Claims{UserID: userID}
	result.Email, _ = claims["email"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if created, ok := claims["created_at"].(float64); ok {
		result.CreatedAt = time.Unix(int64(created), 0).UTC()
	}
	return result, nil
}
