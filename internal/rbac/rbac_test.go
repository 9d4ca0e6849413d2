package rbac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/types"
)

func newDefaultService(t *testing.T) *RBACService {
	t.Helper()
	svc, err := NewRBACService(config.GetDefaultConfig())
	require.NoError(t, err)
	return svc
}

func TestDefaultRoles(t *testing.T) {
	svc := newDefaultService(t)

	tests := []struct {
		role   types.UserRole
		entity string
		action string
		want   bool
	}{
		{types.UserRoleAdmin, "user", "create", true},
		{types.UserRoleAdmin, "settings", "update", true},
		{types.UserRoleEditor, "invoice", "create", true},
		{types.UserRoleEditor, "receipt", "create", true},
		{types.UserRoleEditor, "client", "create", false},
		{types.UserRoleEditor, "product", "update", false},
		{types.UserRoleEditor, "user", "create", false},
		{types.UserRoleViewer, "invoice", "create", false},
		{types.UserRoleViewer, "invoice", "view", true},
		{types.UserRole("auditor"), "invoice", "view", true},
		{types.UserRole("auditor"), "invoice", "create", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.entity+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.HasPermission(tt.role, tt.entity, tt.action))
		})
	}
}

func TestListRoles(t *testing.T) {
	svc := newDefaultService(t)

	roles := svc.ListRoles()
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].ID)
	assert.Equal(t, "editor", roles[1].ID)
	assert.Equal(t, "viewer", roles[2].ID)

	role, ok := svc.GetRole("editor")
	require.True(t, ok)
	assert.Equal(t, "Editor", role.Name)
	assert.True(t, svc.ValidateRole("viewer"))
	assert.False(t, svc.ValidateRole("owner"))
}

func TestRolesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"viewer": {"name": "Viewer", "permissions": {"invoice": ["view"]}},
		"editor": {"name": "Editor", "permissions": {"client": ["*"]}}
	}`), 0o600))

	cfg := config.GetDefaultConfig()
	cfg.RBAC.RolesConfigPath = path

	svc, err := NewRBACService(cfg)
	require.NoError(t, err)
	assert.True(t, svc.HasPermission(types.UserRoleEditor, "client", "delete"))
	assert.False(t, svc.HasPermission(types.UserRoleEditor, "invoice", "create"))
}

func TestRolesRequireViewer(t *testing.T) {
	_, err := NewRBACServiceFromJSON([]byte(`{"admin": {"permissions": {"*": ["*"]}}}`))
	assert.Error(t, err)
}

func TestMissingRolesFile(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.RBAC.RolesConfigPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewRBACService(cfg)
	assert.Error(t, err)
}
