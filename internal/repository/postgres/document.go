package postgres

import (
	"context"
	"fmt"

	"github.com/walaka/walaka/internal/domain/document"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
	"github.com/walaka/walaka/internal/types"
)

type documentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDocumentRepository(db *postgres.DB, logger *logger.Logger) document.Repository {
	return &documentRepository{db: db, logger: logger}
}

func (r *documentRepository) Create(ctx context.Context, doc *document.Document) error {
	def, ok := types.GetScopeDefinition(doc.Kind)
	if !ok {
		return doc.Kind.Validate()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, %s, client_id, environment_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, def.Table, def.NumberColumn)

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		doc.ID, doc.Number, doc.ClientID, doc.EnvironmentID, doc.UserID, doc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Number %s is already taken", doc.Number).
				WithReportableDetails(map[string]any{
					"number": doc.Number,
					"kind":   doc.Kind,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to save the document").
			Mark(ierr.ErrDatabase)
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

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, def.Table)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, userID); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count documents").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
