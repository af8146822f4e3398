package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
	"github.com/medocupa/access-backend/internal/validator"
	"github.com/rs/zerolog"
)

// GrantHandler manages identities and their permission overrides.
type GrantHandler struct {
	grants *service.GrantService
	users  *service.UserService
	log    zerolog.Logger
}

// NewGrantHandler creates a new GrantHandler.
func NewGrantHandler(grants *service.GrantService, users *service.UserService, log zerolog.Logger) *GrantHandler {
	return &GrantHandler{
		grants: grants,
		users:  users,
		log:    log.With().Str("component", "grant_handler").Logger(),
	}
}

// ListUsers godoc
// GET /api/v1/admin/users
func (h *GrantHandler) ListUsers(c *gin.Context) {
	actor := middleware.GetIdentity(c)
	if actor == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	users, err := h.users.List(c.Request.Context(), actor)
	if err != nil {
		response.RequestLogger(c, h.log).Error().Err(err).Msg("List users failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// ListGrants godoc
// GET /api/v1/admin/users/:id/grants
func (h *GrantHandler) ListGrants(c *gin.Context) {
	actor := middleware.GetIdentity(c)
	if actor == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	grants, err := h.grants.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}

// CreateGrant godoc
// POST /api/v1/admin/users/:id/grants
func (h *GrantHandler) CreateGrant(c *gin.Context) {
	actor := middleware.GetIdentity(c)
	if actor == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateGrantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grant, err := h.grants.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, grant)
}

// RevokeGrant godoc
// DELETE /api/v1/admin/users/:id/grants/:grant_id
func (h *GrantHandler) RevokeGrant(c *gin.Context) {
	actor := middleware.GetIdentity(c)
	if actor == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.grants.Revoke(c.Request.Context(), actor, c.Param("id"), c.Param("grant_id")); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *GrantHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIdentityNotFound), errors.Is(err, service.ErrGrantNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrCrossTenant):
		response.Fail(c, http.StatusForbidden, response.ErrCrossTenant)
	case errors.Is(err, service.ErrGrantEscalation):
		response.Fail(c, http.StatusForbidden, response.ErrGrantEscalation)
	case errors.Is(err, service.ErrUnknownResource):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownResource)
	default:
		response.RequestLogger(c, h.log).Error().Err(err).Str("user_id", c.Param("id")).Msg("Grant operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
