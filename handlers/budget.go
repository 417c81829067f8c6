package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type BudgetHandler struct {
	Service *services.BudgetService
}

func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	month := c.Query("month")
	if month != "" && !services.ValidMonth(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be in YYYY-MM format"})
		return
	}

	budgets, err := h.Service.List(c.Request.Context(), middleware.GetUserID(c), month)
	if err != nil {
		respondError(c, err, "", "Failed to fetch budgets")
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category, amount, and month are required"})
		return
	}

	budget, err := h.Service.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if errors.Is(err, services.ErrInvalidMonth) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be in YYYY-MM format"})
		return
	}
	if err != nil {
		respondError(c, err, "", "Failed to create budget")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req models.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive number"})
		return
	}

	budget, err := h.Service.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Budget not found", "Failed to update budget")
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Budget not found", "Failed to delete budget")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetVsActual compares each budget of the month with actual spend.
func (h *BudgetHandler) GetBudgetVsActual(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month parameter is required"})
		return
	}
	if !services.ValidMonth(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be in YYYY-MM format"})
		return
	}

	rows, err := h.Service.VsActual(c.Request.Context(), middleware.GetUserID(c), month)
	if err != nil {
		respondError(c, err, "", "Failed to fetch budget vs actual")
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgetVsActual": rows})
}
