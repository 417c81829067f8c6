package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/utils"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// AuthMiddleware accepts a Bearer token, or a token query parameter for
// websocket upgrades where browsers cannot set headers.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && c.IsWebsocket() {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.ID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID returns the authenticated user id, empty outside AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
