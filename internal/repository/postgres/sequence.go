package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/postgres"
)

type sequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{db: db, logger: logger}
}

func NewSequenceCounter(db *postgres.DB, logger *logger.Logger) sequence.Counter {
	return &sequenceRepository{db: db, logger: logger}
}

// FindHighest orders by length before value so that 10000 sorts above 9999.
// Table and column names come from the scope definition, never from input.
func (r *sequenceRepository) FindHighest(ctx context.Context, scope sequence.Scope) (string, bool, error) {
	def := scope.Definition
	query := fmt.Sprintf(`SELECT %[2]s FROM %[1]s
		WHERE %[2]s LIKE $1 ESCAPE '\' AND %[2]s ~ $2`, def.Table, def.NumberColumn)
	args := []interface{}{
		likePrefix(scope.Prefix()),
		"^" + regexp.QuoteMeta(scope.Prefix()) + "[0-9]+$",
	}
	if def.OwnerColumn != "" {
		query += fmt.Sprintf(" AND %s = $3", def.OwnerColumn)
		args = append(args, scope.Key)
	}
	query += fmt.Sprintf(" ORDER BY length(%[1]s) DESC, %[1]s DESC LIMIT 1", def.NumberColumn)

	var number string
	err := r.db.GetQuerier(ctx).GetContext(ctx, &number, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ierr.WithError(err).
			WithHint("could not generate a unique number, please retry").
			WithReportableDetails(map[string]any{
				"scope": scope.CounterKey(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return number, true, nil
}

func (r *sequenceRepository) Exists(ctx context.Context, scope sequence.Scope, number string) (bool, error) {
	def := scope.Definition
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, def.Table, def.NumberColumn)

	var exists bool
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &exists, query, number); err != nil {
		return false, ierr.WithError(err).
			WithHint("could not generate a unique number, please retry").
			WithReportableDetails(map[string]any{
				"number": number,
			}).
			Mark(ierr.ErrDatabase)
	}
	return exists, nil
}

// Increment is a single upsert, so concurrent callers never share a value
func (r *sequenceRepository) Increment(ctx context.Context, scope sequence.Scope, floor int64) (int64, error) {
	query := `
		INSERT INTO sequence_counters (scope_key, last_value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (scope_key) DO UPDATE
		SET last_value = GREATEST(sequence_counters.last_value + 1, EXCLUDED.last_value),
			updated_at = CURRENT_TIMESTAMP
		RETURNING last_value`

	floor = max(floor, 1)

	var lastValue int64
	if err := r.db.GetQuerier(ctx).QueryRowxContext(ctx, query, scope.CounterKey(), floor).Scan(&lastValue); err != nil {
		return 0, ierr.WithError(err).
			WithHint("could not generate a unique number, please retry").
			WithReportableDetails(map[string]any{
				"scope": scope.CounterKey(),
			}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("advanced sequence counter",
		"scope", scope.CounterKey(),
		"sequence", lastValue)

	return lastValue, nil
}

func (r *sequenceRepository) Current(ctx context.Context, scope sequence.Scope) (int64, error) {
	query := `SELECT last_value FROM sequence_counters WHERE scope_key = $1`

	var lastValue int64
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &lastValue, query, scope.CounterKey()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, ierr.WithError(err).
			WithHint("could not read the document number counter").
			WithReportableDetails(map[string]any{
				"scope": scope.CounterKey(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return lastValue, nil
}
