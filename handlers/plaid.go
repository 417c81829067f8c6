package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
)

type PlaidHandler struct {
	Service *services.BankingService
}

func (h *PlaidHandler) CreateLinkToken(c *gin.Context) {
	linkToken, err := h.Service.CreateLinkToken(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to create link token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"link_token": linkToken})
}

// ExchangePublicToken links the institution the user picked in Plaid Link.
func (h *PlaidHandler) ExchangePublicToken(c *gin.Context) {
	var req models.ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	item, err := h.Service.LinkItem(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "", "Failed to link account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account linked successfully",
		"item":    item,
	})
}

func (h *PlaidHandler) GetItems(c *gin.Context) {
	items, err := h.Service.ListItems(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to fetch linked items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeleteItem unlinks an institution. Synced transactions are kept.
func (h *PlaidHandler) DeleteItem(c *gin.Context) {
	err := h.Service.UnlinkItem(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Item not found", "Failed to unlink item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item unlinked successfully"})
}

func (h *PlaidHandler) GetAccounts(c *gin.Context) {
	accounts, err := h.Service.GetAccounts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to fetch accounts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *PlaidHandler) SyncTransactions(c *gin.Context) {
	result, err := h.Service.SyncUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "", "Failed to sync transactions")
		return
	}

	if result.Items == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No linked accounts found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           fmt.Sprintf("Synced %d new transactions", result.Inserted),
		"totalTransactions": result.Inserted,
	})
}
