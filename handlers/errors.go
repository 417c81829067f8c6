package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

// respondError maps service and store errors to a response. notFound is the
// route's 404 message, failure the message sent with a 500.
func respondError(c *gin.Context, err error, notFound, failure string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, services.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
	case errors.Is(err, services.ErrPlaidNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Plaid is not configured"})
	default:
		utils.SafeError("%s %s: %s: %v", c.Request.Method, c.FullPath(), failure, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}
