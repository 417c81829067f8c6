package services

import (
	"context"
	"sort"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
)

const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 500
)

type TransactionService struct {
	store store.Store
}

func NewTransactionService(s store.Store) *TransactionService {
	return &TransactionService{store: s}
}

// List filters the user's transactions, sorts them newest first and returns
// the requested page. Total counts the filtered set.
func (s *TransactionService) List(ctx context.Context, userID string, filter models.TransactionFilter, limit, offset int) (*models.TransactionPage, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := txs[:0]
	for _, t := range txs {
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.StartDate != "" && t.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && t.Date > filter.EndDate {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date > filtered[j].Date })

	page := &models.TransactionPage{
		Transactions: []models.Transaction{},
		Total:        len(filtered),
		Limit:        limit,
		Offset:       offset,
	}
	if offset < len(filtered) {
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page.Transactions = filtered[offset:end]
	}
	return page, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, update models.TransactionUpdate) (*models.Transaction, error) {
	return s.store.UpdateTransaction(ctx, userID, id, update)
}

func (s *TransactionService) CategorySummary(ctx context.Context, userID string) (map[string]models.Totals, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return SummarizeByCategory(txs), nil
}

func (s *TransactionService) Trends(ctx context.Context, userID, period string) (map[string]models.Totals, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return SpendingTrends(txs, period), nil
}
