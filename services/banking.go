package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

var ErrSyncInProgress = errors.New("sync already in progress")

// encPrefix marks access tokens sealed with the data encryption key. Tokens
// without it were stored before encryption was enabled.
const encPrefix = "enc:"

// Notifier pushes events to a user's connected clients.
type Notifier interface {
	NotifyUser(userID string, eventType string, data map[string]interface{})
}

type SyncResult struct {
	Items    int `json:"items"`
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
}

type BankingService struct {
	store       store.Store
	plaid       PlaidClient
	cipher      *utils.Cipher
	categorizer *CategorizerService
	notifier    Notifier

	startDate string
	pageSize  int
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

type BankingOptions struct {
	Cipher    *utils.Cipher // nil stores tokens in plain text
	Notifier  Notifier
	StartDate string
	PageSize  int
}

func NewBankingService(s store.Store, plaid PlaidClient, categorizer *CategorizerService, opts BankingOptions) *BankingService {
	if opts.StartDate == "" {
		opts.StartDate = "2024-01-01"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	return &BankingService{
		store:       s,
		plaid:       plaid,
		cipher:      opts.Cipher,
		categorizer: categorizer,
		notifier:    opts.Notifier,
		startDate:   opts.StartDate,
		pageSize:    opts.PageSize,
		now:         time.Now,
		inflight:    make(map[string]bool),
	}
}

// SetNotifier wires the realtime hub after construction.
func (s *BankingService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *BankingService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	return s.plaid.CreateLinkToken(ctx, userID)
}

// LinkItem exchanges the public token and saves the item. Linking an
// institution the user already has replaces its token.
func (s *BankingService) LinkItem(ctx context.Context, userID string, req models.ExchangeTokenRequest) (*models.PlaidItem, error) {
	accessToken, itemID, err := s.plaid.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	item, err := s.store.UpsertPlaidItem(ctx, models.PlaidItem{
		UserID:          userID,
		AccessToken:     sealed,
		ItemID:          itemID,
		InstitutionID:   req.InstitutionID,
		InstitutionName: req.InstitutionName,
	})
	if err != nil {
		return nil, err
	}

	utils.LogBankingAction("Item linked", item.ItemID, userID)
	return item, nil
}

func (s *BankingService) ListItems(ctx context.Context, userID string) ([]models.PlaidItem, error) {
	return s.store.ListPlaidItems(ctx, userID)
}

func (s *BankingService) UnlinkItem(ctx context.Context, userID, id string) error {
	if err := s.store.DeletePlaidItem(ctx, userID, id); err != nil {
		return err
	}
	utils.LogBankingAction("Item unlinked", id, userID)
	return nil
}

// GetAccounts returns every account of every linked item.
func (s *BankingService) GetAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	items, err := s.store.ListPlaidItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := []models.BankAccount{}
	for _, item := range items {
		accessToken, err := s.openToken(item.AccessToken)
		if err != nil {
			return nil, err
		}

		accounts, err := s.plaid.GetAccounts(ctx, accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch accounts for item %s: %w", item.ItemID, err)
		}
		for _, acc := range accounts {
			acc.InstitutionName = item.InstitutionName
			acc.ItemID = item.ItemID
			all = append(all, acc)
		}
	}
	return all, nil
}

// SyncUser pulls transactions for all items of a user and stores the ones
// not seen before. Only one sync per user runs at a time.
func (s *BankingService) SyncUser(ctx context.Context, userID string) (*SyncResult, error) {
	if !s.acquire(userID) {
		return nil, ErrSyncInProgress
	}
	defer s.release(userID)

	items, err := s.store.ListPlaidItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Items: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	// A failing item does not stop the others; rows already stored are
	// announced even when the sync as a whole reports an error.
	var firstErr error
	endDate := s.now().Format("2006-01-02")
	for _, item := range items {
		fetched, inserted, err := s.syncItem(ctx, userID, item, endDate)
		result.Fetched += fetched
		result.Inserted += inserted
		if err != nil {
			utils.SafeWarn("Sync of item %s failed: %v", utils.MaskID(item.ItemID), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	utils.LogSyncResult(userID, result.Items, result.Fetched, result.Inserted)
	if result.Inserted > 0 && s.notifier != nil {
		s.notifier.NotifyUser(userID, "transactions_synced", map[string]interface{}{
			"count": result.Inserted,
		})
	}
	return result, firstErr
}

func (s *BankingService) syncItem(ctx context.Context, userID string, item models.PlaidItem, endDate string) (int, int, error) {
	accessToken, err := s.openToken(item.AccessToken)
	if err != nil {
		return 0, 0, err
	}

	fetched, inserted := 0, 0
	for {
		page, total, err := s.plaid.GetTransactions(ctx, accessToken, s.startDate, endDate, fetched, s.pageSize)
		if err != nil {
			return fetched, inserted, fmt.Errorf("failed to fetch transactions for item %s: %w", item.ItemID, err)
		}

		batch := make([]models.Transaction, 0, len(page))
		for _, t := range page {
			batch = append(batch, models.Transaction{
				UserID:             userID,
				PlaidTransactionID: t.TransactionID,
				AccountID:          t.AccountID,
				Amount:             t.Amount,
				Date:               t.Date,
				Name:               t.Name,
				Category:           s.categorizer.GetCategory(t.Categories, t.MerchantName, t.Name),
				MerchantName:       t.MerchantName,
				Pending:            t.Pending,
				Tags:               []string{},
			})
		}

		n, err := s.store.InsertTransactions(ctx, batch)
		if err != nil {
			return fetched, inserted, err
		}
		fetched += len(page)
		inserted += n

		if len(page) == 0 || fetched >= total {
			return fetched, inserted, nil
		}
	}
}

// SyncAll syncs every user with at least one linked item. A failing user is
// logged and skipped.
func (s *BankingService) SyncAll(ctx context.Context) (*SyncResult, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	total := &SyncResult{}
	for _, user := range users {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		res, err := s.SyncUser(ctx, user.ID)
		if res != nil {
			total.Items += res.Items
			total.Fetched += res.Fetched
			total.Inserted += res.Inserted
		}
		if err != nil {
			utils.SafeWarn("Scheduled sync failed for user %s: %v", user.ID, err)
		}
	}
	return total, nil
}

func (s *BankingService) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[userID] {
		return false
	}
	s.inflight[userID] = true
	return true
}

func (s *BankingService) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, userID)
}

func (s *BankingService) sealToken(token string) (string, error) {
	if s.cipher == nil {
		return token, nil
	}
	sealed, err := s.cipher.Encrypt([]byte(token))
	if err != nil {
		return "", err
	}
	return encPrefix + sealed, nil
}

func (s *BankingService) openToken(stored string) (string, error) {
	if !strings.HasPrefix(stored, encPrefix) {
		return stored, nil
	}
	if s.cipher == nil {
		return "", errors.New("access token is encrypted but DATA_ENCRYPTION_KEY is not set")
	}
	plain, err := s.cipher.Decrypt(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return string(plain), nil
}
