package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Scope is the (kind, key, year) triple within which a sequence number is unique
type Scope struct {
	Definition types.ScopeDefinition
	Key        string
	Year       int
}

// NewScope resolves the scope for a kind, an optional key and the issue date.
// Only the year of the date is used.
func NewScope(kind types.ScopeKind, key string, date time.Time) (Scope, error) {
	if err := kind.Validate(); err != nil {
		return Scope{}, err
	}

	def, _ := types.GetScopeDefinition(kind)
	key = strings.TrimSpace(key)
	if def.RequiresKey && key == "" {
		return Scope{}, ierr.NewError("scope key is required").
			WithHintf("A client is required to generate a %s number", def.Prefix).
			WithReportableDetails(map[string]any{
				"scope_kind": kind,
			}).
			Mark(ierr.ErrValidation)
	}
	if !def.RequiresKey {
		key = ""
	}

	return Scope{
		Definition: def,
		Key:        key,
		Year:       date.Year(),
	}, nil
}

func (s Scope) Kind() types.ScopeKind {
	return s.Definition.Kind
}

// Prefix is the fixed part shared by every number of the scope, ex CLI-42-2024-
func (s Scope) Prefix() string {
	if s.Key != "" {
		return fmt.Sprintf("%s-%s-%d-", s.Definition.Prefix, s.Key, s.Year)
	}
	return fmt.Sprintf("%s-%d-", s.Definition.Prefix, s.Year)
}

// CounterKey identifies the scope in the backend counter table
func (s Scope) CounterKey() string {
	return strings.TrimSuffix(s.Prefix(), "-")
}

// Format builds the identifier for a running number.
// Values wider than the padding are kept whole.
func (s Scope) Format(seq int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix(), types.SequencePadding, seq)
}

// Owns reports whether number was issued within this scope
func (s Scope) Owns(number string) bool {
	rest, ok := strings.CutPrefix(number, s.Prefix())
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseSequence extracts the trailing running number of an identifier
func ParseSequence(number string) (int64, bool) {
	m := trailingDigits.FindString(number)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Highest returns the number with the largest running number among numbers.
// Comparison is numeric so CLI-1-2024-10000 ranks above CLI-1-2024-9999.
func Highest(numbers []string) (string, bool) {
	var (
		best    string
		bestSeq int64 = -1
	)
	for _, n := range numbers {
		seq, ok := ParseSequence(n)
		if !ok {
			continue
		}
		if seq > bestSeq {
			best, bestSeq = n, seq
		}
	}
	return best, bestSeq >= 0
}
