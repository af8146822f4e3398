package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
	"github.com/rs/zerolog"
)

// RequireIdentity restores the signed-in identity from the bearer token and
// stores it on the context. The token may also come from ?token=... for
// WebSocket upgrades, which cannot send headers.
func RequireIdentity(sessions *service.SessionService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		identity, err := sessions.CurrentIdentity(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNoSession) {
				log.Error().Err(err).Msg("Failed to restore session")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrNoSession)
			return
		}

		SetIdentity(c, identity)
		SetToken(c, token)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	return c.Query("token")
}
