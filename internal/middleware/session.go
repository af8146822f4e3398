package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/model"
)

const (
	// ContextKeyIdentity is the Gin context key for the signed-in identity.
	ContextKeyIdentity = "identity"
	// ContextKeyToken is the Gin context key for the token that proved it.
	ContextKeyToken = "session_token"
)

// SetIdentity stores identity on the request context.
func SetIdentity(c *gin.Context, identity *model.Identity) {
	c.Set(ContextKeyIdentity, identity)
}

// GetIdentity retrieves the signed-in identity from the Gin context.
func GetIdentity(c *gin.Context) *model.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	identity, ok := val.(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}

// SetToken stores the session token of the request.
func SetToken(c *gin.Context, token string) {
	c.Set(ContextKeyToken, token)
}

// GetToken returns the session token the identity was loaded from.
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}
