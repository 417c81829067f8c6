package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

type UserHandler struct {
	Store store.Store
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.Store.FindUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "User not found", "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ============================================================================
// 2FA
// ============================================================================

// SetupTOTP generates a new secret. 2FA stays disabled until a code from
// the authenticator app is verified.
func (h *UserHandler) SetupTOTP(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	user, err := h.Store.FindUserByID(ctx, userID)
	if err != nil {
		respondError(c, err, "User not found", "Failed to get user")
		return
	}
	if user.TOTPEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA is already enabled"})
		return
	}

	secret, url, err := utils.GenerateTOTPSecret(user.Email)
	if err != nil {
		respondError(c, err, "", "Failed to generate TOTP")
		return
	}

	if err := h.Store.UpdateUserTOTP(ctx, userID, secret, false); err != nil {
		respondError(c, err, "User not found", "Failed to store TOTP secret")
		return
	}

	c.JSON(http.StatusOK, models.TOTPSetupResponse{Secret: secret, URL: url})
}

func (h *UserHandler) VerifyTOTP(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req models.VerifyTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 6 digit code is required"})
		return
	}

	user, err := h.Store.FindUserByID(ctx, userID)
	if err != nil {
		respondError(c, err, "User not found", "Failed to get user")
		return
	}
	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP not set up"})
		return
	}

	if !utils.VerifyTOTP(user.TOTPSecret, req.Code) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid TOTP code"})
		return
	}

	if err := h.Store.UpdateUserTOTP(ctx, userID, user.TOTPSecret, true); err != nil {
		respondError(c, err, "User not found", "Failed to enable 2FA")
		return
	}

	utils.LogAuthAction("2FA enabled", user.Email, true)
	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled successfully"})
}

func (h *UserHandler) DisableTOTP(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req models.DisableTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	user, err := h.Store.FindUserByID(ctx, userID)
	if err != nil {
		respondError(c, err, "User not found", "Failed to verify credentials")
		return
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	if err := h.Store.UpdateUserTOTP(ctx, userID, "", false); err != nil {
		respondError(c, err, "User not found", "Failed to disable 2FA")
		return
	}

	utils.LogAuthAction("2FA disabled", user.Email, true)
	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled successfully"})
}
