package document

import (
	"context"

	"github.com/walaka/walaka/internal/types"
)

type Repository interface {
	// Create inserts the document. A number already taken in the document's table
	// fails with an ierr.ErrAlreadyExists marked error.
	Create(ctx context.Context, doc *Document) error

	// CountByUser counts the documents of kind created by userID
	CountByUser(ctx context.Context, kind types.ScopeKind, userID string) (int, error)
}
