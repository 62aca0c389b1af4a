package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inventory/api/internal/middleware"
	"inventory/api/internal/models"
)

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) ListProfiles(c *gin.Context) {
	profiles, err := h.directory.ListProfiles(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse{
			ID:        p.ID,
			Email:     p.Email,
			Role:      string(p.Role),
			Active:    p.Active,
			AvatarURL: p.AvatarURL,
			CreatedAt: p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

type updateProfileRequest struct {
	Active *bool   `json:"active"`
	Role   *string `json:"role"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Active == nil && req.Role == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	session := middleware.SessionFrom(c)
	profileID := c.Param("id")

	if req.Active != nil {
		if err := h.directory.SetActive(c.Request.Context(), session, profileID, *req.Active); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.Role != nil {
		if err := h.directory.SetRole(c.Request.Context(), session, profileID, models.Role(*req.Role)); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveProfile(c *gin.Context) {
	confirm := c.Query("confirm") == "true"
	if err := h.directory.RemoveProfile(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), confirm); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (h HandlerSet) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.directory.Invite(c.Request.Context(), middleware.SessionFrom(c), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := result.Message
	if message == "" {
		message = "user promoted to member"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
