package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
)

var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

type BudgetService struct {
	store    store.Store
	notifier Notifier
}

func NewBudgetService(s store.Store) *BudgetService {
	return &BudgetService{store: s}
}

func (s *BudgetService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ValidMonth reports whether month is a YYYY-MM string.
func ValidMonth(month string) bool {
	_, err := time.Parse("2006-01", month)
	return err == nil && len(month) == 7
}

// List returns the user's budgets, restricted to month when it is not empty.
func (s *BudgetService) List(ctx context.Context, userID, month string) ([]models.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if month == "" {
		return budgets, nil
	}

	filtered := []models.Budget{}
	for _, b := range budgets {
		if b.Month == month {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *BudgetService) Create(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.Budget, error) {
	if !ValidMonth(req.Month) {
		return nil, ErrInvalidMonth
	}

	budget, err := s.store.CreateBudget(ctx, models.Budget{
		UserID:   userID,
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
		Month:    req.Month,
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, "created", budget.ID)
	return budget, nil
}

// Update changes the amount and/or category of a budget.
func (s *BudgetService) Update(ctx context.Context, userID, id string, req models.UpdateBudgetRequest) (*models.Budget, error) {
	budget, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		budget.Category = strings.TrimSpace(*req.Category)
	}
	if req.Amount != nil {
		budget.Amount = *req.Amount
	}

	updated, err := s.store.UpdateBudget(ctx, *budget)
	if err != nil {
		return nil, err
	}

	s.notify(userID, "updated", updated.ID)
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.notify(userID, "deleted", id)
	return nil
}

func (s *BudgetService) VsActual(ctx context.Context, userID, month string) ([]models.BudgetVsActual, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BudgetVsActual(budgets, txs, month), nil
}

func (s *BudgetService) notify(userID, action, budgetID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, "budget_changed", map[string]interface{}{
		"action":   action,
		"budgetId": budgetID,
	})
}
