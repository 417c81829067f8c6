package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *utils.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "email": GetEmail(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	r := newAuthRouter(tokens)

	tests := []struct {
		name   string
		path   string
		header string
		status  int
		errMsg  string
		upgrade bool
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, "Access token required", false},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, "Access token required", false},
		{"garbage token", "/me", "Bearer nope", http.StatusForbidden, "Invalid or expired token", false},
		{"valid header", "/me", "Bearer " + token, http.StatusOK, "", false},
		{"query token on plain request", "/me?token=" + token, "", http.StatusUnauthorized, "Access token required", false},
		{"query token on websocket upgrade", "/me?token=" + token, "", http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["error"])
			} else {
				assert.Equal(t, "user-1", body["id"])
				assert.Equal(t, "a@example.com", body["email"])
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := utils.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.GenerateAccessToken("user-1", "a@example.com")
	require.NoError(t, err)

	r := newAuthRouter(utils.NewTokenManager("test-secret", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.handle)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	}

	w := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.Equal(t, 20.0, body["retry_after"])

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)

	// one token is back after 20s at 3/min
	now = now.Add(20 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := newRateLimiter(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.reserve("a")
	rl.reserve("b")
	assert.Len(t, rl.clients, 2)

	now = now.Add(idleTTL + 2*time.Minute)
	rl.reserve("c")
	assert.Len(t, rl.clients, 1)
}
