package supabase

import (
	"context"
	"time"

	"github.com/nedpals/supabase-go"
	"github.com/walaka/walaka/internal/domain/document"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/types"
)

type documentRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewDocumentRepository(client *supabase.Client, logger *logger.Logger) document.Repository {
	return &documentRepository{client: client, logger: logger}
}

func (r *documentRepository) Create(ctx context.Context, doc *document.Document) error {
	def, ok := types.GetScopeDefinition(doc.Kind)
	if !ok {
		return doc.Kind.Validate()
	}

	row := map[string]any{
		"id":             doc.ID,
		def.NumberColumn: doc.Number,
		"client_id":      doc.ClientID,
		"environment_id": doc.EnvironmentID,
		"user_id":        doc.UserID,
		"created_at":     doc.CreatedAt.Format(time.RFC3339Nano),
	}

	var inserted []map[string]any
	if err := r.client.DB.From(def.Table).Insert(row).Execute(&inserted); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Number %s is already taken", doc.Number).
				WithReportableDetails(map[string]any{
					"number": doc.Number,
					"kind":   doc.Kind,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return databaseError(err, "Failed to save the document")
	}

	r.logger.Debugw("created document",
		"id", doc.ID,
		"kind", doc.Kind,
		"number", doc.Number)
	return nil
}

func (r *documentRepository) CountByUser(ctx context.Context, kind types.ScopeKind, userID string) (int, error) {
	def, ok := types.GetScopeDefinition(kind)
	if !ok {
		return 0, kind.Validate()
	}

	var rows []map[string]any
	err := r.client.DB.From(def.Table).
		Select("id").
		Eq("user_id", userID).
		Execute(&rows)
	if err != nil {
		return 0, databaseError(err, "Failed to count documents")
	}
	return len(rows), nil
}
