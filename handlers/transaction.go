package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type TransactionHandler struct {
	Service *services.TransactionService
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// GetTransactions lists transactions newest first with optional filters.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	limit, okLimit := queryInt(c, "limit", services.DefaultTransactionLimit)
	offset, okOffset := queryInt(c, "offset", 0)
	if !okLimit || !okOffset || limit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit and offset must be non-negative integers"})
		return
	}
	if limit > services.MaxTransactionLimit {
		limit = services.MaxTransactionLimit
	}

	filter := models.TransactionFilter{
		Category:  c.Query("category"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	page, err := h.Service.List(c.Request.Context(), middleware.GetUserID(c), filter, limit, offset)
	if err != nil {
		respondError(c, err, "", "Failed to fetch transactions")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	tx, err := h.Service.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Transaction not found", "Failed to fetch transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction changes category, notes and tags. Omitted fields keep
// their value.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req models.TransactionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tx, err := h.Service.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Transaction not found", "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateCategory is the category-only form of UpdateTransaction used by
// older clients.
func (h *TransactionHandler) UpdateCategory(c *gin.Context) {
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category is required"})
		return
	}

	update := models.TransactionUpdate{Category: &req.Category}
	tx, err := h.Service.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Transaction not found", "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

func (h *TransactionHandler) GetCategorySummary(c *gin.Context) {
	summary, err := h.Service.CategorySummary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to fetch category summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": summary})
}

func (h *TransactionHandler) GetTrends(c *gin.Context) {
	period := c.DefaultQuery("period", services.PeriodMonth)

	trends, err := h.Service.Trends(c.Request.Context(), middleware.GetUserID(c), period)
	if err != nil {
		respondError(c, err, "", "Failed to fetch trends")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}
