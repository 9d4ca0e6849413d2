package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/walaka/walaka/internal/api/dto"
	ierr "github.com/walaka/walaka/internal/errors"
	"github.com/walaka/walaka/internal/logger"
	"github.com/walaka/walaka/internal/rbac"
)

type RBACHandler struct {
	rbacService *rbac.RBACService
	logger      *logger.Logger
}

func NewRBACHandler(rbacService *rbac.RBACService, logger *logger.Logger) *RBACHandler {
	return &RBACHandler{
		rbacService: rbacService,
		logger:      logger,
	}
}

// ListRoles returns all available roles with their metadata
// @Summary List all RBAC roles
// @Description Returns all available roles with their permissions, names, and descriptions
// @Tags RBAC
// @Produce json
// @Success 200 {object} dto.ListRolesResponse
// @Router /rbac/roles [get]
// @Security BearerAuth
func (h *RBACHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ListRolesResponse{
		Items: h.rbacService.ListRoles(),
	})
}

// GetRole returns a specific role by ID
// @Summary Get a specific RBAC role
// @Tags RBAC
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} rbac.Role
// @Failure 404 {object} ierr.ErrorResponse
// @Router /rbac/roles/{id} [get]
// @Security BearerAuth
func (h *RBACHandler) GetRole(c *gin.Context) {
	roleID := c.Param("id")

	role, exists := h.rbacService.GetRole(roleID)
	if !exists {
		c.Error(ierr.NewError("role not found").
			WithHintf("Role %s does not exist", roleID).
			Mark(ierr.ErrNotFound))
		return
	}

	c.JSON(http.StatusOK, role)
}
