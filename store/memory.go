package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// MemoryStore keeps everything in process memory. It is the default backend
// for local development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[string]*models.User
	usersByEmail map[string]string // lower-cased email -> user id
	transactions map[string]*models.Transaction
	plaidTxIndex map[string]string // userID|plaidTransactionID -> transaction id
	plaidItems   map[string]*models.PlaidItem
	budgets      map[string]*models.Budget
	goals        map[string]*models.Goal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]string),
		transactions: make(map[string]*models.Transaction),
		plaidTxIndex: make(map[string]string),
		plaidItems:   make(map[string]*models.PlaidItem),
		budgets:      make(map[string]*models.Budget),
		goals:        make(map[string]*models.Goal),
	}
}

func (s *MemoryStore) Close() error { return nil }

// ============================================================================
// USERS
// ============================================================================

func (s *MemoryStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.usersByEmail[key]; exists {
		return nil, ErrConflict
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.usersByEmail[key] = user.ID

	u := *user
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryStore) UpdateUserTOTP(ctx context.Context, userID, secret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.TOTPSecret = secret
	user.TOTPEnabled = enabled
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// ============================================================================
// TRANSACTIONS
// ============================================================================

func plaidKey(userID, plaidTransactionID string) string {
	return userID + "|" + plaidTransactionID
}

func copyTransaction(t *models.Transaction) models.Transaction {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	return c
}

func (s *MemoryStore) InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, t := range txs {
		key := plaidKey(t.UserID, t.PlaidTransactionID)
		if _, exists := s.plaidTxIndex[key]; exists {
			continue
		}

		stored := copyTransaction(&t)
		stored.ID = uuid.New().String()
		if stored.Tags == nil {
			stored.Tags = []string{}
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now()
		}
		s.transactions[stored.ID] = &stored
		s.plaidTxIndex[key] = stored.ID
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := []models.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			txs = append(txs, copyTransaction(t))
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.Before(txs[j].CreatedAt) })
	return txs, nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	c := copyTransaction(t)
	return &c, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, userID, id string, update models.TransactionUpdate) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	if update.Category != nil {
		t.Category = *update.Category
	}
	if update.Notes != nil {
		t.Notes = *update.Notes
	}
	if update.Tags != nil {
		t.Tags = append([]string{}, (*update.Tags)...)
	}
	c := copyTransaction(t)
	return &c, nil
}

// ============================================================================
// PLAID ITEMS
// ============================================================================

func (s *MemoryStore) UpsertPlaidItem(ctx context.Context, item models.PlaidItem) (*models.PlaidItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.plaidItems {
		if existing.UserID == item.UserID && existing.InstitutionID == item.InstitutionID {
			existing.AccessToken = item.AccessToken
			existing.ItemID = item.ItemID
			existing.InstitutionName = item.InstitutionName
			c := *existing
			return &c, nil
		}
	}

	item.ID = uuid.New().String()
	item.CreatedAt = time.Now()
	stored := item
	s.plaidItems[item.ID] = &stored
	return &item, nil
}

func (s *MemoryStore) ListPlaidItems(ctx context.Context, userID string) ([]models.PlaidItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.PlaidItem{}
	for _, item := range s.plaidItems {
		if item.UserID == userID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *MemoryStore) DeletePlaidItem(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.plaidItems[id]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(s.plaidItems, id)
	return nil
}

// ============================================================================
// BUDGETS
// ============================================================================

func (s *MemoryStore) CreateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget.ID = uuid.New().String()
	budget.CreatedAt = time.Now()
	stored := budget
	s.budgets[budget.ID] = &stored
	return &budget, nil
}

func (s *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budgets := []models.Budget{}
	for _, b := range s.budgets {
		if b.UserID == userID {
			budgets = append(budgets, *b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CreatedAt.Before(budgets[j].CreatedAt) })
	return budgets, nil
}

func (s *MemoryStore) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return nil, ErrNotFound
	}
	c := *b
	return &c, nil
}

func (s *MemoryStore) UpdateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[budget.ID]
	if !ok || b.UserID != budget.UserID {
		return nil, ErrNotFound
	}
	b.Category = budget.Category
	b.Amount = budget.Amount
	b.Month = budget.Month
	c := *b
	return &c, nil
}

func (s *MemoryStore) DeleteBudget(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

// ============================================================================
// GOALS
// ============================================================================

func (s *MemoryStore) CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal.ID = uuid.New().String()
	goal.CreatedAt = time.Now()
	stored := goal
	s.goals[goal.ID] = &stored
	return &goal, nil
}

func (s *MemoryStore) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goals := []models.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (s *MemoryStore) GetGoal(ctx context.Context, userID, id string) (*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, ErrNotFound
	}
	c := *g
	return &c, nil
}

func (s *MemoryStore) ModifyGoal(ctx context.Context, userID, id string, mutate func(*models.Goal) error) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, ErrNotFound
	}

	working := *g
	if err := mutate(&working); err != nil {
		return nil, err
	}
	// id, owner and creation time are not editable
	working.ID, working.UserID, working.CreatedAt = g.ID, g.UserID, g.CreatedAt
	*g = working

	c := working
	return &c, nil
}

func (s *MemoryStore) DeleteGoal(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	delete(s.goals, id)
	return nil
}
