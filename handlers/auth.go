package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

type AuthHandler struct {
	Store  store.Store
	Tokens *utils.TokenManager
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	email := strings.TrimSpace(req.Email)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "", "Internal server error")
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), email, passwordHash)
	if errors.Is(err, store.ErrConflict) {
		utils.LogAuthAction("Register", email, false)
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	if err != nil {
		respondError(c, err, "", "Internal server error")
		return
	}

	token, err := h.Tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err, "", "Internal server error")
		return
	}

	utils.LogAuthAction("Register", user.Email, true)
	c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    models.UserSummary{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		utils.LogAuthAction("Login", req.Email, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err, "", "Internal server error")
		return
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		utils.LogAuthAction("Login", req.Email, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires2fa": true})
			return
		}
		if !utils.VerifyTOTP(user.TOTPSecret, req.TOTPCode) {
			utils.LogAuthAction("Login 2FA", req.Email, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
			return
		}
	}

	token, err := h.Tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err, "", "Internal server error")
		return
	}

	utils.LogAuthAction("Login", user.Email, true)
	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    models.UserSummary{ID: user.ID, Email: user.Email},
	})
}
