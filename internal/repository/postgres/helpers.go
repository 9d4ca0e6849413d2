package postgres

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a unique constraint failure
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix builds a LIKE pattern matching values that start with prefix
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
