// Package store persists users, Plaid items, transactions, budgets and goals.
// Every read and write is scoped to a user id; a record owned by another user
// is reported as ErrNotFound.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserTOTP(ctx context.Context, userID, secret string, enabled bool) error
	ListUsers(ctx context.Context) ([]models.User, error)

	// InsertTransactions stores the transactions whose Plaid id is not yet
	// known for their user and returns how many were inserted.
	InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, update models.TransactionUpdate) (*models.Transaction, error)

	// UpsertPlaidItem creates an item or, when the user already linked the
	// same institution, replaces its access token and item id.
	UpsertPlaidItem(ctx context.Context, item models.PlaidItem) (*models.PlaidItem, error)
	ListPlaidItems(ctx context.Context, userID string) ([]models.PlaidItem, error)
	DeletePlaidItem(ctx context.Context, userID, id string) error

	CreateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error

	CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	GetGoal(ctx context.Context, userID, id string) (*models.Goal, error)
	// ModifyGoal applies mutate to the stored goal atomically.
	ModifyGoal(ctx context.Context, userID, id string, mutate func(*models.Goal) error) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, id string) error

	Close() error
}

// Open builds the store selected by cfg.Driver. The Postgres store runs
// migrations before returning.
func Open(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		db, err := config.InitDB(cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := config.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
