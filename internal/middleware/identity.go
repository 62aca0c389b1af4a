package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"inventory/api/internal/auth"
	"inventory/api/internal/config"
	"inventory/api/internal/models"
)

const sessionKey = "session"

// Identity parses an optional bearer token from the external auth
// provider and stashes the transient session on the request context.
// It never rejects: an absent or invalid token simply means visitor.
// Capability gating happens inside the services at call time, because a
// profile change can land between request start and mutation.
func Identity(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if session, err := auth.ParseSession(tokenStr, cfg.Auth.JWTSecret); err == nil {
				c.Set(sessionKey, session)
			}
		}
		c.Next()
	}
}

// SessionFrom returns the caller's session, or nil for visitors.
func SessionFrom(c *gin.Context) *models.Session {
	val, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	session, ok := val.(models.Session)
	if !ok {
		return nil
	}
	return &session
}
