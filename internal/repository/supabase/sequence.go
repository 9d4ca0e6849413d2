package supabase

import (
	"context"

	"github.com/nedpals/supabase-go"
	"github.com/walaka/walaka/internal/domain/sequence"
	"github.com/walaka/walaka/internal/logger"
)

const sequenceHint = "could not generate a unique number, please retry"

type sequenceRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewSequenceRepository(client *supabase.Client, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{client: client, logger: logger}
}

// FindHighest fetches every number of the scope and compares them numerically.
// PostgREST ordering is lexical, which would rank 9999 above 10000.
func (r *sequenceRepository) FindHighest(ctx context.Context, scope sequence.Scope) (string, bool, error) {
	def := scope.Definition

	var rows []map[string]string
	query := r.client.DB.From(def.Table).
		Select(def.NumberColumn).
		Like(def.NumberColumn, scope.Prefix()+"*")
	if def.OwnerColumn != "" {
		query = query.Eq(def.OwnerColumn, scope.Key)
	}
	if err := query.Execute(&rows); err != nil {
		return "", false, databaseError(err, sequenceHint)
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		if n := row[def.NumberColumn]; scope.Owns(n) {
			numbers = append(numbers, n)
		}
	}

	number, found := sequence.Highest(numbers)
	r.logger.Debugw("looked up highest number",
		"scope", scope.CounterKey(),
		"candidates", len(numbers),
		"highest", number)
	return number, found, nil
}

func (r *sequenceRepository) Exists(ctx context.Context, scope sequence.Scope, number string) (bool, error) {
	def := scope.Definition

	var rows []map[string]string
	err := r.client.DB.From(def.Table).
		Select(def.NumberColumn).
		Eq(def.NumberColumn, number).
		Execute(&rows)
	if err != nil {
		return false, databaseError(err, sequenceHint)
	}
	return len(rows) > 0, nil
}
