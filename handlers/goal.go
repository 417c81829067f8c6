package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type GoalHandler struct {
	Service *services.GoalService
}

func (h *GoalHandler) GetGoals(c *gin.Context) {
	goals, err := h.Service.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to fetch goals")
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, targetAmount, and targetDate are required"})
		return
	}

	goal, err := h.Service.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "", "Failed to create goal")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// UpdateProgress adds a contribution; the goal never exceeds its target.
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	var req models.GoalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid amount is required"})
		return
	}

	goal, err := h.Service.AddProgress(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err, "Goal not found", "Failed to update goal progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Goal not found", "Failed to delete goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}
