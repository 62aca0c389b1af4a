package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory/api/internal/auth"
	"inventory/api/internal/middleware"
)

type identityResponse struct {
	IsLogged  bool   `json:"isLogged"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CanWrite  bool   `json:"canWrite"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Me resolves the caller's current capability pair. Clients re-fetch
// this on every profiles feed event so a role or activation change
// applies without re-login.
func (h HandlerSet) Me(c *gin.Context) {
	identity := h.resolver.Resolve(c.Request.Context(), middleware.SessionFrom(c))

	c.JSON(http.StatusOK, identityResponse{
		IsLogged:  identity.IsLogged,
		Email:     identity.Email,
		AvatarURL: identity.AvatarURL,
		Role:      string(identity.Role),
		Active:    identity.Active,
		CanWrite:  auth.CanWrite(identity),
		IsAdmin:   auth.IsAdmin(identity),
	})
}
