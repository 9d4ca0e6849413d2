package dto

import "github.com/walaka/walaka/internal/rbac"

type ListRolesResponse struct {
	Items []*rbac.Role `json:"items"`
}
