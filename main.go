package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/handlers"
	"github.com/pocketpilot/pocketpilot-api/routes"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer db.Close()
	log.Printf("✅ Store ready (%s)", cfg.Database.Driver)

	var cipher *utils.Cipher
	if cfg.Encryption.Key != "" {
		cipher, err = utils.NewCipher(cfg.Encryption.Key)
		if err != nil {
			log.Fatal("Invalid DATA_ENCRYPTION_KEY:", err)
		}
	} else {
		log.Println("⚠️ DATA_ENCRYPTION_KEY not set, Plaid access tokens are stored unencrypted")
	}

	if !cfg.Plaid.Configured() {
		log.Println("⚠️ PLAID_CLIENT_ID / PLAID_SECRET not set, Plaid routes will answer 503")
	}

	wsHandler := handlers.NewWSHandler()

	plaidService := services.NewPlaidService(cfg.Plaid, cfg.Server.FrontendURL)
	banking := services.NewBankingService(db, plaidService, services.NewCategorizerService(), services.BankingOptions{
		Cipher:    cipher,
		Notifier:  wsHandler,
		StartDate: cfg.Plaid.SyncStartDate,
		PageSize:  cfg.Plaid.PageSize,
	})
	budgets := services.NewBudgetService(db)
	budgets.SetNotifier(wsHandler)
	goals := services.NewGoalService(db)
	goals.SetNotifier(wsHandler)

	router := routes.NewRouter(routes.Deps{
		Store:              db,
		Tokens:             utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Banking:            banking,
		Transactions:       services.NewTransactionService(db),
		Budgets:            budgets,
		Goals:              goals,
		Insights:           services.NewInsightsService(db),
		WS:                 wsHandler,
		FrontendURL:        cfg.Server.FrontendURL,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
	})

	var scheduler *services.SyncScheduler
	if cfg.Sync.Schedule != "" {
		if !cfg.Plaid.Configured() {
			log.Println("⚠️ SYNC_SCHEDULE ignored: Plaid is not configured")
		} else {
			scheduler, err = services.NewSyncScheduler(cfg.Sync.Schedule, banking)
			if err != nil {
				log.Fatal(err)
			}
			scheduler.Start()
			log.Printf("⏰ Scheduled sync: %s", cfg.Sync.Schedule)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogStartup(utils.AppName+" API", version, cfg.Server.Port, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := wsHandler.Close(); err != nil {
		log.Printf("⚠️ Closing websockets: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Forced shutdown: %v", err)
	}
	log.Println("👋 Server stopped")
}
