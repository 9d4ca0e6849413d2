package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/domain/sequence"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/types"
)

// newTestConfig points the client at a fake PostgREST that serves rows per table
func newTestConfig(t *testing.T, rows map[string]any) *config.Configuration {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body, ok := rows[table]
		if !ok {
			body = []any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	cfg := config.GetDefaultConfig()
	cfg.Storage.Backend = types.StorageBackendSupabase
	cfg.Supabase.BaseURL = srv.URL
	cfg.Supabase.ServiceKey = "service-key"
	return cfg
}

func TestFindHighestIsNumeric(t *testing.T) {
	cfg := newTestConfig(t, map[string]any{
		"invoices": []map[string]string{
			{"invoice_number": "CLI-42-2024-9999"},
			{"invoice_number": "CLI-42-2024-10000"},
			{"invoice_number": "CLI-42-2024-draft"},
		},
	})
	repo := NewSequenceRepository(NewClient(cfg), logger.NewNoopLogger())

	scope, err := sequence.NewScope(types.ScopeKindInvoicePerClient, "42", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	number, found, err := repo.FindHighest(context.Background(), scope)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "CLI-42-2024-10000", number)
}

func TestGetUserNotFound(t *testing.T) {
	cfg := newTestConfig(t, nil)
	repo := NewUserRepository(NewClient(cfg), logger.NewNoopLogger())

	_, err := repo.GetByID(context.Background(), "usr_404")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestLatestSubscriptionPicksLatestEndDate(t *testing.T) {
	cfg := newTestConfig(t, map[string]any{
		"subscriptions": []map[string]string{
			{"id": "sub_old", "environment_id": "env_1", "plan": "basic", "status": "active", "end_date": "2023-01-01T00:00:00Z"},
			{"id": "sub_new", "environment_id": "env_1", "plan": "pro", "status": "active", "end_date": "2031-01-01T00:00:00Z"},
		},
	})
	repo := NewSubscriptionRepository(NewClient(cfg), logger.NewNoopLogger())

	sub, err := repo.GetLatest(context.Background(), "env_1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "sub_new", sub.ID)
	assert.True(t, sub.IsValid(time.Now()))
}

func TestCountByUser(t *testing.T) {
	cfg := newTestConfig(t, map[string]any{
		"invoices": []map[string]string{{"id": "inv_1"}, {"id": "inv_2"}},
	})
	repo := NewDocumentRepository(NewClient(cfg), logger.NewNoopLogger())

	count, err := repo.CountByUser(context.Background(), types.ScopeKindInvoiceGlobal, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
