package dto

import (
	"github.com/walaka/walaka/internal/domain/document"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
	"github.com/walaka/walaka/internal/validator"
)

// CreateDocumentRequest is the submit of the invoice, receipt and credit note forms
type CreateDocumentRequest struct {
	Kind     types.ScopeKind `json:"kind" validate:"required"`
	ClientID string          `json:"client_id,omitempty"`
}

type DocumentResponse struct {
	*document.Document
}

func (r *CreateDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}

	def, _ := types.GetScopeDefinition(r.Kind)
	if def.RequiresKey && r.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHintf("A client is required for %s documents", r.Kind).
			Mark(ierr.ErrValidation)
	}
	return nil
}
