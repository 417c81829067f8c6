package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type DashboardHandler struct {
	Service *services.InsightsService
	Now     func() time.Time
}

// GetDashboard returns the overview for ?month=YYYY-MM, the current month
// by default.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		month = now().Format("2006-01")
	}
	if !services.ValidMonth(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be in YYYY-MM format"})
		return
	}

	dashboard, err := h.Service.Dashboard(c.Request.Context(), middleware.GetUserID(c), month)
	if err != nil {
		respondError(c, err, "", "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
