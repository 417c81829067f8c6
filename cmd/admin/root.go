package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "PocketPilot maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Overridden in tests.
var (
	loadConfig = config.Load
	openStore  = store.Open
	newPlaid   = func(cfg *config.Config) services.PlaidClient {
		return services.NewPlaidService(cfg.Plaid, cfg.Server.FrontendURL)
	}
)

// newBanking wires a BankingService the same way the server does, without a
// realtime notifier.
func newBanking(cfg *config.Config, s store.Store) (*services.BankingService, error) {
	var cipher *utils.Cipher
	if cfg.Encryption.Key != "" {
		c, err := utils.NewCipher(cfg.Encryption.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid DATA_ENCRYPTION_KEY: %w", err)
		}
		cipher = c
	}

	return services.NewBankingService(s, newPlaid(cfg), services.NewCategorizerService(), services.BankingOptions{
		Cipher:    cipher,
		StartDate: cfg.Plaid.SyncStartDate,
		PageSize:  cfg.Plaid.PageSize,
	}), nil
}
