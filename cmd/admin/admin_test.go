package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
)

type stubPlaid struct {
	txs []services.PlaidTransaction
}

func (p stubPlaid) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	return "link", nil
}

func (p stubPlaid) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	return "access", "item", nil
}

func (p stubPlaid) GetAccounts(ctx context.Context, accessToken string) ([]models.BankAccount, error) {
	return nil, nil
}

func (p stubPlaid) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, offset, count int) ([]services.PlaidTransaction, int, error) {
	if offset >= len(p.txs) {
		return nil, len(p.txs), nil
	}
	return p.txs[offset:], len(p.txs), nil
}

// useMemory points the commands at a shared in-memory store.
func useMemory(t *testing.T, plaid services.PlaidClient) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore()

	origLoad, origOpen, origPlaid := loadConfig, openStore, newPlaid
	loadConfig = func() (*config.Config, error) {
		return &config.Config{Database: config.DatabaseConfig{Driver: "memory"}}, nil
	}
	openStore = func(config.DatabaseConfig) (store.Store, error) { return mem, nil }
	newPlaid = func(*config.Config) services.PlaidClient { return plaid }
	t.Cleanup(func() { loadConfig, openStore, newPlaid = origLoad, origOpen, origPlaid })

	return mem
}

// execute runs the root command and returns what it wrote to stdout. Usage
// and error output go to a separate buffer so reports never mix with them.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestUsersCmd(t *testing.T) {
	mem := useMemory(t, stubPlaid{})
	_, err := mem.CreateUser(context.Background(), "alice@example.com", "hash")
	require.NoError(t, err)

	out, err := execute(t, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "1 user(s)")
}

func TestSyncCmd(t *testing.T) {
	plaid := stubPlaid{txs: []services.PlaidTransaction{
		{TransactionID: "t1", AccountID: "a", Amount: 3, Date: "2024-03-01", Name: "Coffee"},
		{TransactionID: "t2", AccountID: "a", Amount: 4, Date: "2024-03-02", Name: "Lunch"},
	}}
	mem := useMemory(t, plaid)
	ctx := context.Background()

	user, err := mem.CreateUser(ctx, "alice@example.com", "hash")
	require.NoError(t, err)
	_, err = mem.UpsertPlaidItem(ctx, models.PlaidItem{UserID: user.ID, AccessToken: "access", ItemID: "item", InstitutionID: "ins_1"})
	require.NoError(t, err)

	out, err := execute(t, "sync", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronising alice@example.com...")
	assert.Contains(t, out, "Items: 1, fetched: 2, new: 2")

	out, err = execute(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronising all users...")
	assert.Contains(t, out, "new: 0")

	_, err = execute(t, "sync", "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMigrateCmd_RequiresDatabaseURL(t *testing.T) {
	useMemory(t, stubPlaid{})

	_, err := execute(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
