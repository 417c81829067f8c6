package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// USERS
// ============================================================================

const userColumns = `id, email, password_hash, COALESCE(totp_secret, ''), totp_enabled, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	u, err := scanUser(row)
	return u, notFound(err)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, notFound(err)
}

func (s *PostgresStore) UpdateUserTOTP(ctx context.Context, userID, secret string, enabled bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET totp_secret = NULLIF($1, ''), totp_enabled = $2 WHERE id = $3
	`, secret, enabled, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ============================================================================
// TRANSACTIONS
// ============================================================================

const transactionColumns = `id, user_id, plaid_transaction_id, account_id, amount, date, name, category,
	COALESCE(merchant_name, ''), pending, COALESCE(notes, ''), tags, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var tags pq.StringArray
	err := row.Scan(&t.ID, &t.UserID, &t.PlaidTransactionID, &t.AccountID, &t.Amount, &t.Date, &t.Name,
		&t.Category, &t.MerchantName, &t.Pending, &t.Notes, &tags, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Tags = []string(tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func (s *PostgresStore) InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	inserted := 0
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (id, user_id, plaid_transaction_id, account_id, amount, date, name,
				category, merchant_name, pending, notes, tags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''), $12, $13)
			ON CONFLICT (user_id, plaid_transaction_id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range txs {
			tags := t.Tags
			if tags == nil {
				tags = []string{}
			}
			result, err := stmt.ExecContext(ctx, uuid.New().String(), t.UserID, t.PlaidTransactionID, t.AccountID,
				t.Amount, t.Date, t.Name, t.Category, t.MerchantName, t.Pending, t.Notes, pq.Array(tags), time.Now())
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", t.PlaidTransactionID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (s *PostgresStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2
	`, id, userID)
	t, err := scanTransaction(row)
	return t, notFound(err)
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, userID, id string, update models.TransactionUpdate) (*models.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var tags interface{}
	if update.Tags != nil {
		tags = pq.Array(*update.Tags)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET category = COALESCE($1, category),
		    notes = COALESCE($2, notes),
		    tags = COALESCE($3, tags)
		WHERE id = $4 AND user_id = $5
		RETURNING `+transactionColumns, update.Category, update.Notes, tags, id, userID)
	t, err := scanTransaction(row)
	return t, notFound(err)
}

// ============================================================================
// PLAID ITEMS
// ============================================================================

func (s *PostgresStore) UpsertPlaidItem(ctx context.Context, item models.PlaidItem) (*models.PlaidItem, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO plaid_items (id, user_id, access_token, item_id, institution_id, institution_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, institution_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			item_id = EXCLUDED.item_id,
			institution_name = EXCLUDED.institution_name
		RETURNING id, created_at
	`, uuid.New().String(), item.UserID, item.AccessToken, item.ItemID, item.InstitutionID, item.InstitutionName,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save plaid item: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ListPlaidItems(ctx context.Context, userID string) ([]models.PlaidItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, access_token, item_id, institution_id, institution_name, created_at
		FROM plaid_items
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.PlaidItem{}
	for rows.Next() {
		var item models.PlaidItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.AccessToken, &item.ItemID,
			&item.InstitutionID, &item.InstitutionName, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) DeletePlaidItem(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM plaid_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ============================================================================
// BUDGETS
// ============================================================================

const budgetColumns = `id, user_id, category, amount, month, created_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Month, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) CreateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error) {
	budget.ID = uuid.New().String()
	budget.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category, amount, month, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, budget.ID, budget.UserID, budget.Category, budget.Amount, budget.Month, budget.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return &budget, nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *PostgresStore) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	b, err := scanBudget(row)
	return b, notFound(err)
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, budget models.Budget) (*models.Budget, error) {
	if _, err := uuid.Parse(budget.ID); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE budgets SET category = $1, amount = $2, month = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+budgetColumns, budget.Category, budget.Amount, budget.Month, budget.ID, budget.UserID)
	b, err := scanBudget(row)
	return b, notFound(err)
}

func (s *PostgresStore) DeleteBudget(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ============================================================================
// GOALS
// ============================================================================

const goalColumns = `id, user_id, name, target_amount, current_amount, target_date, created_at`

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	var g models.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *PostgresStore) CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error) {
	goal.ID = uuid.New().String()
	goal.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, target_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return &goal, nil
}

func (s *PostgresStore) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *PostgresStore) GetGoal(ctx context.Context, userID, id string) (*models.Goal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	g, err := scanGoal(row)
	return g, notFound(err)
}

func (s *PostgresStore) ModifyGoal(ctx context.Context, userID, id string, mutate func(*models.Goal) error) (*models.Goal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var updated *models.Goal
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2 FOR UPDATE
		`, id, userID)
		g, err := scanGoal(row)
		if err != nil {
			return notFound(err)
		}

		if err := mutate(g); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE goals SET name = $1, target_amount = $2, current_amount = $3, target_date = $4
			WHERE id = $5
		`, g.Name, g.TargetAmount, g.CurrentAmount, g.TargetDate, id)
		if err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) DeleteGoal(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
