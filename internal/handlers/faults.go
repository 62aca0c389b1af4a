package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory/api/internal/fault"
	"inventory/api/internal/provision"
)

// respondError maps the error taxonomy onto HTTP statuses. Every error
// surfaces as exactly one user-visible notice; nothing escapes as an
// unhandled failure.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var fe *fault.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case fault.KindAuthorization:
			c.JSON(http.StatusForbidden, gin.H{"error": fe.Message})
		case fault.KindValidation:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fe.Message})
		case fault.KindConflict:
			c.JSON(http.StatusConflict, gin.H{
				"error":                 fe.Message,
				"confirmation_required": true,
				"existing":              fe.Details,
			})
		case fault.KindDecode:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fe.Message})
		case fault.KindRemoteIO:
			h.log.Error().Err(err).Msg("remote call failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": fe.Message})
		default:
			h.log.Error().Err(err).Msg("unclassified fault")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	var pe *provision.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case provision.KindTransport:
			h.log.Error().Err(err).Msg("invite function unreachable")
			c.JSON(http.StatusBadGateway, gin.H{"error": pe.Message})
		case provision.KindNeverAuthenticated:
			c.JSON(http.StatusNotFound, gin.H{"error": pe.Message})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": pe.Message})
		}
		return
	}

	h.log.Error().Err(err).Msg("unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
