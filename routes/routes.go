package routes

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/handlers"
	"github.com/pocketpilot/pocketpilot-api/middleware"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Store        store.Store
	Tokens       *utils.TokenManager
	Banking      *services.BankingService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Goals        *services.GoalService
	Insights     *services.InsightsService
	WS           *handlers.WSHandler

	FrontendURL        string // comma separated list of allowed origins
	RateLimitPerMinute int
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	allowedOrigins := []string{}
	for _, origin := range strings.Split(d.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimiter(d.RateLimitPerMinute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		SetupAuthRoutes(api, d)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(d.Tokens))
		{
			SetupUserRoutes(protected, d)
			SetupPlaidRoutes(protected, d)
			SetupTransactionRoutes(protected, d)
			SetupBudgetRoutes(protected, d)
			SetupGoalRoutes(protected, d)
			protected.GET("/dashboard", (&handlers.DashboardHandler{Service: d.Insights}).GetDashboard)
			if d.WS != nil {
				protected.GET("/ws", d.WS.HandleWS)
			}
		}
	}

	return router
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, d Deps) {
	authHandler := &handlers.AuthHandler{Store: d.Store, Tokens: d.Tokens}

	rg.POST("/auth/register", authHandler.Register)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupUserRoutes sets up protected profile and 2FA routes.
func SetupUserRoutes(rg *gin.RouterGroup, d Deps) {
	userHandler := &handlers.UserHandler{Store: d.Store}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}

func SetupPlaidRoutes(rg *gin.RouterGroup, d Deps) {
	h := &handlers.PlaidHandler{Service: d.Banking}

	rg.POST("/plaid/create_link_token", h.CreateLinkToken)
	rg.POST("/plaid/exchange_public_token", h.ExchangePublicToken)
	rg.GET("/plaid/items", h.GetItems)
	rg.DELETE("/plaid/items/:id", h.DeleteItem)
	rg.GET("/plaid/accounts", h.GetAccounts)
	rg.POST("/plaid/sync_transactions", h.SyncTransactions)
}

func SetupTransactionRoutes(rg *gin.RouterGroup, d Deps) {
	h := &handlers.TransactionHandler{Service: d.Transactions}

	rg.GET("/transactions", h.GetTransactions)
	rg.GET("/transactions/categories/summary", h.GetCategorySummary)
	rg.GET("/transactions/trends", h.GetTrends)
	rg.GET("/transactions/:id", h.GetTransaction)
	rg.PUT("/transactions/:id", h.UpdateTransaction)
	rg.PUT("/transactions/:id/category", h.UpdateCategory)
}

func SetupBudgetRoutes(rg *gin.RouterGroup, d Deps) {
	h := &handlers.BudgetHandler{Service: d.Budgets}

	rg.GET("/budgets", h.GetBudgets)
	rg.POST("/budgets", h.CreateBudget)
	rg.GET("/budgets/vs-actual", h.GetBudgetVsActual)
	rg.PUT("/budgets/:id", h.UpdateBudget)
	rg.DELETE("/budgets/:id", h.DeleteBudget)
}

func SetupGoalRoutes(rg *gin.RouterGroup, d Deps) {
	h := &handlers.GoalHandler{Service: d.Goals}

	rg.GET("/goals", h.GetGoals)
	rg.POST("/goals", h.CreateGoal)
	rg.PUT("/goals/:id/progress", h.UpdateProgress)
	rg.DELETE("/goals/:id", h.DeleteGoal)
}
