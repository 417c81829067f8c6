package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
)

const dashboardTopCategories = 5

type InsightsService struct {
	store store.Store
}

func NewInsightsService(s store.Store) *InsightsService {
	return &InsightsService{store: s}
}

// Dashboard gathers the month overview: spend, top categories, budgets and
// goal progress.
func (s *InsightsService) Dashboard(ctx context.Context, userID, month string) (*models.Dashboard, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthTxs := []models.Transaction{}
	spent := decimal.Zero
	for _, t := range txs {
		if strings.HasPrefix(t.Date, month) {
			monthTxs = append(monthTxs, t)
			spent = spent.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	progress := make([]models.GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, models.GoalProgress{
			ID:       g.ID,
			Name:     g.Name,
			Progress: ProgressPercent(g),
		})
	}

	return &models.Dashboard{
		Month:            month,
		TotalSpent:       spent.InexactFloat64(),
		TransactionCount: len(monthTxs),
		TopCategories:    TopCategories(SummarizeByCategory(monthTxs), dashboardTopCategories),
		BudgetVsActual:   BudgetVsActual(budgets, txs, month),
		Goals:            progress,
	}, nil
}
