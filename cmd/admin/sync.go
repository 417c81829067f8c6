package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketpilot/pocketpilot-api/services"
)

var syncCmd = &cobra.Command{
	Use:   "sync [email]",
	Short: "Pull transactions from Plaid",
	Long: `Fetches new transactions from Plaid.
If an email is provided, only that user is synchronised.
Otherwise, every user with a linked institution is synchronised.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	banking, err := newBanking(cfg, s)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	var result *services.SyncResult
	if len(args) > 0 {
		user, err := s.FindUserByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("user %s: %w", args[0], err)
		}
		fmt.Fprintf(out, "Synchronising %s...\n", user.Email)
		result, err = banking.SyncUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	} else {
		fmt.Fprintln(out, "Synchronising all users...")
		result, err = banking.SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	fmt.Fprintf(out, "Items: %d, fetched: %d, new: %d\n", result.Items, result.Fetched, result.Inserted)
	return nil
}
