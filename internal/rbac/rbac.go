package rbac

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/types"
)

// Wildcard grants every entity or every action of an entity
const Wildcard = "*"

//go:embed roles.json
var defaultRoles []byte

// RBACService handles permission checks with set-based lookups
type RBACService struct {
	// role -> entity -> action
	permissions map[string]map[string]map[string]bool

	// Full role definitions with metadata (for API responses)
	roles map[string]*Role
}

// Role represents a role with metadata
type Role struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

// NewRBACService loads the role definitions named in config, or the embedded defaults
func NewRBACService(cfg *config.Configuration) (*RBACService, error) {
	data := defaultRoles
	if path := cfg.RBAC.RolesConfigPath; path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		data = raw
	}
	return NewRBACServiceFromJSON(data)
}

// NewRBACServiceFromJSON parses role definitions keyed by role id
func NewRBACServiceFromJSON(data []byte) (*RBACService, error) {
	var rawConfig map[string]*Role
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	permissions := make(map[string]map[string]map[string]bool, len(rawConfig))
	for roleID, role := range rawConfig {
		if role == nil {
			return nil, fmt.Errorf("role %q has no definition", roleID)
		}
		role.ID = roleID
		permissions[roleID] = make(map[string]map[string]bool, len(role.Permissions))

		for entity, actions := range role.Permissions {
			permissions[roleID][entity] = make(map[string]bool, len(actions))
			for _, action := range actions {
				permissions[roleID][entity][action] = true
			}
		}
	}

	if _, ok := permissions[types.UserRoleViewer.String()]; !ok {
		return nil, fmt.Errorf("role definitions must include %q", types.UserRoleViewer)
	}

	return &RBACService{
		permissions: permissions,
		roles:       rawConfig,
	}, nil
}

// HasPermission checks whether role may perform action on entity.
// Roles without a definition are checked as viewer.
func (s *RBACService) HasPermission(role types.UserRole, entity string, action string) bool {
	entities, ok := s.permissions[role.String()]
	if !ok {
		entities = s.permissions[types.UserRoleViewer.String()]
	}

	for _, e := range []string{entity, Wildcard} {
		actions := entities[e]
		if actions == nil {
			continue
		}
		if actions[action] || actions[Wildcard] {
			return true
		}
	}
	return false
}

// ValidateRole checks if role exists in definitions
func (s *RBACService) ValidateRole(roleName string) bool {
	_, exists := s.permissions[roleName]
	return exists
}

// ListRoles returns all roles with metadata, ordered by id
func (s *RBACService) ListRoles() []*Role {
	result := make([]*Role, 0, len(s.roles))
	for _, role := range s.roles {
		result = append(result, role)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetRole returns a specific role with metadata
func (s *RBACService) GetRole(roleID string) (*Role, bool) {
	role, exists := s.roles[roleID]
	return role, exists
}
