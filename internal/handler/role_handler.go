package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/hierarchy"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
)

// RoleHandler exposes the static role table.
type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// ListRoles gets all roles with their permission codes.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	response.Success(c, http.StatusOK, hierarchy.Roles())
}

// GetRole gets one role and its permission codes.
func (h *RoleHandler) GetRole(c *gin.Context) {
	role := model.RoleTag(c.Param("role"))
	if !role.Valid() {
		response.Fail(c, http.StatusNotFound, response.ErrUnknownRole)
		return
	}

	response.Success(c, http.StatusOK, model.RoleWithPermissions{
		Role:        role,
		Permissions: hierarchy.Codes(role),
	})
}
