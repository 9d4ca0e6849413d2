package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/types"
)

var issueDate = time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)

func TestNewScope(t *testing.T) {
	t.Run("per client scope requires a key", func(t *testing.T) {
		_, err := NewScope(types.ScopeKindInvoicePerClient, "  ", issueDate)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewScope("purchase-order", "", issueDate)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("global scope drops the key", func(t *testing.T) {
		scope, err := NewScope(types.ScopeKindReceiptGlobal, "42", issueDate)
		require.NoError(t, err)
		assert.Equal(t, "", scope.Key)
		assert.Equal(t, "REC-2024-", scope.Prefix())
	})

	t.Run("per client prefix", func(t *testing.T) {
		scope, err := NewScope(types.ScopeKindInvoicePerClient, "42", issueDate)
		require.NoError(t, err)
		assert.Equal(t, "CLI-42-2024-", scope.Prefix())
		assert.Equal(t, "CLI-42-2024", scope.CounterKey())
		assert.Equal(t, 2024, scope.Year)
	})
}

func TestFormat(t *testing.T) {
	scope, err := NewScope(types.ScopeKindInvoicePerClient, "42", issueDate)
	require.NoError(t, err)

	assert.Equal(t, "CLI-42-2024-0001", scope.Format(1))
	assert.Equal(t, "CLI-42-2024-0008", scope.Format(8))
	assert.Equal(t, "CLI-42-2024-9999", scope.Format(9999))
	assert.Equal(t, "CLI-42-2024-10000", scope.Format(10000))
}

func TestOwns(t *testing.T) {
	scope, err := NewScope(types.ScopeKindInvoicePerClient, "4", issueDate)
	require.NoError(t, err)

	assert.True(t, scope.Owns("CLI-4-2024-0003"))
	assert.False(t, scope.Owns("CLI-42-2024-0003"))
	assert.False(t, scope.Owns("CLI-4-2023-0003"))
	assert.False(t, scope.Owns("CLI-4-2024-"))
}

func TestParseSequence(t *testing.T) {
	n, ok := ParseSequence("CLI-42-2024-0007")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = ParseSequence("CLI-42-2024-draft")
	assert.False(t, ok)
}

func TestHighest(t *testing.T) {
	best, ok := Highest([]string{"REC-2025-9999", "REC-2025-10000", "REC-2025-0042"})
	assert.True(t, ok)
	assert.Equal(t, "REC-2025-10000", best)

	_, ok = Highest(nil)
	assert.False(t, ok)
}
