package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
)

// RequireAccess checks that the signed-in identity holds resource at level or
// above. Denials are queued for the audit log.
func RequireAccess(authorizer *service.Authorizer, notifier *service.Notifier, resource string, level model.Level) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if authorizer.HasAccess(c.Request.Context(), identity, resource, level) {
			c.Next()
			return
		}

		notifier.Audit(c.Request.Context(), model.AuditEvent{
			UserID:   identity.ID,
			TenantID: identity.TenantID,
			Kind:     model.AuditAccessDenied,
			Subject:  c.FullPath(),
			Resource: resource,
			Level:    level.String(),
		})
		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireAnyAccess passes when the identity holds at least one of the listed
// resources at the given level.
func RequireAnyAccess(authorizer *service.Authorizer, level model.Level, resources ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, resource := range resources {
			if authorizer.HasAccess(c.Request.Context(), identity, resource, level) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}
