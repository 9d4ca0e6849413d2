package dto

import (
	"time"

	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
	"github.com/walaka/walaka/internal/validator"
)

// NextSequenceRequest asks for the next free number of a scope
type NextSequenceRequest struct {
	ScopeKind types.ScopeKind `json:"scope_kind" validate:"required"`
	// ScopeKey is the client id for per-client numbering
	ScopeKey string `json:"scope_key,omitempty"`
	// Date picks the numbering year, defaults to now
	Date *time.Time `json:"date,omitempty"`
}

type NextSequenceResponse struct {
	Number    string          `json:"number"`
	ScopeKind types.ScopeKind `json:"scope_kind"`
	Prefix    string          `json:"prefix"`
}

func (r *NextSequenceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ScopeKind.Validate()
}

// ToScope resolves the numbering scope, using now when no date was given
func (r *NextSequenceRequest) ToScope(now time.Time) (sequence.Scope, error) {
	date := now
	if r.Date != nil {
		if r.Date.IsZero() {
			return sequence.Scope{}, ierr.NewError("date is zero").
				WithHint("Please provide a valid issue date").
				Mark(ierr.ErrValidation)
		}
		date = *r.Date
	}
	return sequence.NewScope(r.ScopeKind, r.ScopeKey, date)
}
