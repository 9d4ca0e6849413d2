package supabase

import (
	"strings"

	"github.com/nedpals/supabase-go"
	"github.com/walaka/walaka/internal/config"
	ierr "github.com/walaka/walaka/internal/errors"
)

// uniqueViolation is the postgres code PostgREST forwards on a unique conflict
const uniqueViolation = "23505"

// NewClient builds the PostgREST client used by the repositories, authenticated
// with the service key.
func NewClient(cfg *config.Configuration) *supabase.Client {
	return supabase.CreateClient(cfg.Supabase.BaseURL, cfg.Supabase.ServiceKey)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), uniqueViolation)
}

func databaseError(err error, hint string) error {
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
