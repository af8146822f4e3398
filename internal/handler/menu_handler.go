package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
)

// MenuHandler serves navigation and access checks.
type MenuHandler struct {
	authorizer *service.Authorizer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(authorizer *service.Authorizer) *MenuHandler {
	return &MenuHandler{authorizer: authorizer}
}

// Menu godoc
// GET /api/v1/menu
// Returns the catalog items the current identity may see.
func (h *MenuHandler) Menu(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, h.authorizer.VisibleMenu(c.Request.Context(), identity))
}

// Catalog godoc
// GET /api/v1/menu/catalog
// Returns the full static catalog.
func (h *MenuHandler) Catalog(c *gin.Context) {
	response.Success(c, http.StatusOK, model.MenuCatalog)
}

// accessResult is the body of an access check.
type accessResult struct {
	Resource string `json:"resource"`
	Level    string `json:"level"`
	Allowed  bool   `json:"allowed"`
}

// CheckAccess godoc
// GET /api/v1/access/:resource?level=read
// Answers whether the current identity holds resource at level. Unknown
// resources are answered, not rejected.
func (h *MenuHandler) CheckAccess(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	raw := strings.ToLower(c.DefaultQuery("level", "read"))
	if raw != "none" && raw != "read" && raw != "full" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"level": "level debe ser none, read o full",
		})
		return
	}
	level := model.ParseLevel(raw)
	resource := c.Param("resource")

	response.Success(c, http.StatusOK, accessResult{
		Resource: resource,
		Level:    level.String(),
		Allowed:  h.authorizer.HasAccess(c.Request.Context(), identity, resource, level),
	})
}
