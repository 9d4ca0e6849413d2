package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	ierr "github.com/walaka/walaka/internal/errors"
)

type sample struct {
	Name string `validate:"required"`
	Kind string `validate:"oneof=a b"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Name: "x", Kind: "a"}))

	err := ValidateRequest(sample{Kind: "c"})
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	details := ierr.SafeDetails(err)
	assert.Contains(t, details, "Name")
	assert.Contains(t, details, "Kind")
}

type nextRequest struct {
	ScopeKind string `json:"scope_kind" validate:"required"`
	ClientID  string `json:"-" validate:"required"`
}

func TestValidateRequestUsesJSONNames(t *testing.T) {
	err := ValidateRequest(nextRequest{})
	assert.True(t, ierr.IsValidation(err))

	details := ierr.SafeDetails(err)
	assert.Contains(t, details, "scope_kind")
	assert.Contains(t, details, "ClientID")
}
