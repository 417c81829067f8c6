package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/handlers"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/routes"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/store"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePlaid serves canned accounts and transactions per access token.
type fakePlaid struct {
	mu           sync.Mutex
	transactions map[string][]services.PlaidTransaction
	accounts     map[string][]models.BankAccount
}

func (f *fakePlaid) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	return "link-sandbox-test", nil
}

func (f *fakePlaid) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	return "access-" + publicToken, "item-" + publicToken, nil
}

func (f *fakePlaid) GetAccounts(ctx context.Context, accessToken string) ([]models.BankAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accessToken], nil
}

func (f *fakePlaid) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, offset, count int) ([]services.PlaidTransaction, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.transactions[accessToken]
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + count
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

type testApp struct {
	router *gin.Engine
	store  *store.MemoryStore
	plaid  *fakePlaid
	ws     *handlers.WSHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	plaid := &fakePlaid{
		transactions: map[string][]services.PlaidTransaction{},
		accounts:     map[string][]models.BankAccount{},
	}
	return newTestAppWithPlaid(t, plaid)
}

func newTestAppWithPlaid(t *testing.T, plaid services.PlaidClient) *testApp {
	t.Helper()
	s := store.NewMemoryStore()
	ws := handlers.NewWSHandler()
	t.Cleanup(func() { ws.Close() })

	banking := services.NewBankingService(s, plaid, services.NewCategorizerService(), services.BankingOptions{Notifier: ws})
	budgets := services.NewBudgetService(s)
	budgets.SetNotifier(ws)
	goals := services.NewGoalService(s)
	goals.SetNotifier(ws)

	router := routes.NewRouter(routes.Deps{
		Store:              s,
		Tokens:             utils.NewTokenManager("test-secret", time.Hour),
		Banking:            banking,
		Transactions:       services.NewTransactionService(s),
		Budgets:            budgets,
		Goals:              goals,
		Insights:           services.NewInsightsService(s),
		WS:                 ws,
		FrontendURL:        "http://localhost:3000",
		RateLimitPerMinute: 10000,
	})

	app := &testApp{router: router, store: s, ws: ws}
	if fp, ok := plaid.(*fakePlaid); ok {
		app.plaid = fp
	}
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// register creates a user and returns its token and id.
func (a *testApp) register(t *testing.T, email string) (string, string) {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusCreated, code, body)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func (a *testApp) seedTransactions(t *testing.T, userID string, txs ...models.Transaction) {
	t.Helper()
	for i := range txs {
		txs[i].UserID = userID
		if txs[i].PlaidTransactionID == "" {
			txs[i].PlaidTransactionID = fmt.Sprintf("seed-%d", i)
		}
	}
	_, err := a.store.InsertTransactions(context.Background(), txs)
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	code, body := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

// ============================================================================
// AUTH
// ============================================================================

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email and password are required", body["error"])

	token, id := app.register(t, "a@example.com")
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, id)

	code, body = app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "A@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", body["error"])

	code, body = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	code, body = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	code, body = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, id, body["user"].(map[string]interface{})["id"])

	code, body = app.do(t, http.MethodGet, "/api/user/profile", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	profile := body["user"].(map[string]interface{})
	assert.Equal(t, "a@example.com", profile["email"])
	assert.NotContains(t, profile, "passwordHash")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", body["error"])

	code, body = app.do(t, http.MethodGet, "/api/goals", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid or expired token", body["error"])

	// query tokens are only honoured for websocket upgrades
	token, _ := app.register(t, "query@example.com")
	code, body = app.do(t, http.MethodGet, "/api/goals?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", body["error"])
}

func TestTwoFactorFlow(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "totp@example.com")

	code, body := app.do(t, http.MethodPost, "/api/user/2fa/setup", token, nil)
	require.Equal(t, http.StatusOK, code)
	secret := body["secret"].(string)
	assert.Contains(t, body["url"], "otpauth://")

	code, _ = app.do(t, http.MethodPost, "/api/user/2fa/verify", token, gin.H{"code": "000000x"})
	assert.Equal(t, http.StatusBadRequest, code)

	validCode, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	code, _ = app.do(t, http.MethodPost, "/api/user/2fa/verify", token, gin.H{"code": validCode})
	require.Equal(t, http.StatusOK, code)

	code, body = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "totp@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, true, body["requires2fa"])

	code, _ = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "totp@example.com", "password": "hunter22", "totpCode": "abcdef"})
	assert.Equal(t, http.StatusUnauthorized, code)

	validCode, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	code, _ = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "totp@example.com", "password": "hunter22", "totpCode": validCode})
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPost, "/api/user/2fa/disable", token, gin.H{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = app.do(t, http.MethodPost, "/api/user/2fa/disable", token, gin.H{"password": "hunter22"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "totp@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, code)
}

// ============================================================================
// PLAID
// ============================================================================

func TestPlaidLinkAndSync(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "plaid@example.com")

	code, body := app.do(t, http.MethodPost, "/api/plaid/sync_transactions", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No linked accounts found", body["message"])

	code, body = app.do(t, http.MethodGet, "/api/plaid/accounts", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{}, body["accounts"])

	code, body = app.do(t, http.MethodPost, "/api/plaid/create_link_token", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "link-sandbox-test", body["link_token"])

	code, body = app.do(t, http.MethodPost, "/api/plaid/exchange_public_token", token, gin.H{"public_token": "pub"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", body["error"])

	code, body = app.do(t, http.MethodPost, "/api/plaid/exchange_public_token", token, gin.H{
		"public_token": "pub", "institution_id": "ins_1", "institution_name": "First Bank",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Account linked successfully", body["message"])
	item := body["item"].(map[string]interface{})
	assert.Equal(t, "item-pub", item["itemId"])
	assert.NotContains(t, item, "accessToken")

	current := 1200.5
	app.plaid.accounts["access-pub"] = []models.BankAccount{{AccountID: "acc-1", Name: "Checking", Type: "depository", Balances: models.AccountBalances{Current: &current}}}
	app.plaid.transactions["access-pub"] = []services.PlaidTransaction{
		{TransactionID: "t1", AccountID: "acc-1", Amount: 4.5, Date: "2024-03-01", Name: "Starbucks"},
		{TransactionID: "t2", AccountID: "acc-1", Amount: 60, Date: "2024-03-02", Name: "Shell", Categories: []string{"Travel", "Gas Stations"}},
	}

	code, body = app.do(t, http.MethodGet, "/api/plaid/accounts", token, nil)
	require.Equal(t, http.StatusOK, code)
	accounts := body["accounts"].([]interface{})
	require.Len(t, accounts, 1)
	acc := accounts[0].(map[string]interface{})
	assert.Equal(t, "First Bank", acc["institutionName"])
	assert.Equal(t, "item-pub", acc["itemId"])

	code, body = app.do(t, http.MethodPost, "/api/plaid/sync_transactions", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Synced 2 new transactions", body["message"])
	assert.Equal(t, 2.0, body["totalTransactions"])

	code, body = app.do(t, http.MethodPost, "/api/plaid/sync_transactions", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Synced 0 new transactions", body["message"])

	code, body = app.do(t, http.MethodGet, "/api/plaid/items", token, nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	itemID := items[0].(map[string]interface{})["id"].(string)

	code, _ = app.do(t, http.MethodDelete, "/api/plaid/items/"+itemID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = app.do(t, http.MethodDelete, "/api/plaid/items/"+itemID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Item not found", body["error"])

	// history survives unlinking
	code, body = app.do(t, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["total"])
}

func TestPlaidNotConfigured(t *testing.T) {
	plaid := services.NewPlaidService(config.PlaidConfig{Env: "sandbox"}, "http://localhost:3000")
	app := newTestAppWithPlaid(t, plaid)
	token, _ := app.register(t, "noplaid@example.com")

	code, body := app.do(t, http.MethodPost, "/api/plaid/create_link_token", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Plaid is not configured", body["error"])
}

// ============================================================================
// TRANSACTIONS
// ============================================================================

func TestTransactions(t *testing.T) {
	app := newTestApp(t)
	token, userID := app.register(t, "tx@example.com")
	otherToken, _ := app.register(t, "other@example.com")

	app.seedTransactions(t, userID,
		models.Transaction{Amount: 10, Date: "2024-03-03", Name: "Lunch", Category: "Food and Drink"},
		models.Transaction{Amount: 20, Date: "2024-03-05", Name: "Dinner", Category: "Food and Drink"},
		models.Transaction{Amount: 300, Date: "2024-04-01", Name: "Flight", Category: "Travel"},
		models.Transaction{Amount: 7, Date: "2024-04-02", Name: "Mystery", Category: ""},
	)

	code, body := app.do(t, http.MethodGet, "/api/transactions?limit=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, body["total"])
	assert.Equal(t, 2.0, body["limit"])
	assert.Equal(t, 0.0, body["offset"])
	txs := body["transactions"].([]interface{})
	require.Len(t, txs, 2)
	assert.Equal(t, "2024-04-02", txs[0].(map[string]interface{})["date"])

	code, body = app.do(t, http.MethodGet, "/api/transactions?category=Food%20and%20Drink&startDate=2024-03-04", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["total"])

	code, _ = app.do(t, http.MethodGet, "/api/transactions?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = app.do(t, http.MethodGet, "/api/transactions?category=Travel", token, nil)
	require.Equal(t, http.StatusOK, code)
	txID := body["transactions"].([]interface{})[0].(map[string]interface{})["id"].(string)

	code, body = app.do(t, http.MethodGet, "/api/transactions/"+txID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Transaction not found", body["error"])

	code, body = app.do(t, http.MethodPut, "/api/transactions/"+txID, token, gin.H{"notes": "work trip", "tags": []string{"work"}})
	require.Equal(t, http.StatusOK, code)
	tx := body["transaction"].(map[string]interface{})
	assert.Equal(t, "work trip", tx["notes"])
	assert.Equal(t, "Travel", tx["category"])
	assert.Equal(t, []interface{}{"work"}, tx["tags"])

	code, body = app.do(t, http.MethodPut, "/api/transactions/"+txID+"/category", token, gin.H{"category": "Business"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Business", body["transaction"].(map[string]interface{})["category"])

	code, _ = app.do(t, http.MethodPut, "/api/transactions/"+txID, otherToken, gin.H{"notes": "mine now"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = app.do(t, http.MethodGet, "/api/transactions/categories/summary", token, nil)
	require.Equal(t, http.StatusOK, code)
	categories := body["categories"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"total": 30.0, "count": 2.0}, categories["Food and Drink"])
	assert.Equal(t, map[string]interface{}{"total": 7.0, "count": 1.0}, categories["Other"])

	code, body = app.do(t, http.MethodGet, "/api/transactions/trends", token, nil)
	require.Equal(t, http.StatusOK, code)
	trends := body["trends"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"total": 30.0, "count": 2.0}, trends["2024-03"])
	assert.Equal(t, map[string]interface{}{"total": 307.0, "count": 2.0}, trends["2024-04"])

	code, body = app.do(t, http.MethodGet, "/api/transactions/trends?period=week", token, nil)
	require.Equal(t, http.StatusOK, code)
	trends = body["trends"].(map[string]interface{})
	assert.Contains(t, trends, "2024-03-03")
	assert.Contains(t, trends, "2024-03-31")
}

// ============================================================================
// BUDGETS & GOALS
// ============================================================================

func TestBudgets(t *testing.T) {
	app := newTestApp(t)
	token, userID := app.register(t, "budget@example.com")

	code, body := app.do(t, http.MethodPost, "/api/budgets", token, gin.H{"category": "Food and Drink", "amount": 200})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Category, amount, and month are required", body["error"])

	code, _ = app.do(t, http.MethodPost, "/api/budgets", token, gin.H{"category": "Food and Drink", "amount": 200, "month": "03/2024"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = app.do(t, http.MethodPost, "/api/budgets", token, gin.H{"category": "Food and Drink", "amount": 200, "month": "2024-03"})
	require.Equal(t, http.StatusCreated, code)
	budgetID := body["budget"].(map[string]interface{})["id"].(string)

	app.seedTransactions(t, userID,
		models.Transaction{Amount: 50, Date: "2024-03-03", Category: "Food and Drink"},
		models.Transaction{Amount: 100, Date: "2024-04-03", Category: "Food and Drink"},
	)

	code, body = app.do(t, http.MethodGet, "/api/budgets/vs-actual", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Month parameter is required", body["error"])

	code, body = app.do(t, http.MethodGet, "/api/budgets/vs-actual?month=2024-03", token, nil)
	require.Equal(t, http.StatusOK, code)
	rows := body["budgetVsActual"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, 200.0, row["budgeted"])
	assert.Equal(t, 50.0, row["spent"])
	assert.Equal(t, 150.0, row["remaining"])
	assert.Equal(t, 25.0, row["percentage"])

	code, body = app.do(t, http.MethodPut, "/api/budgets/"+budgetID, token, gin.H{"amount": 100})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100.0, body["budget"].(map[string]interface{})["amount"])

	code, body = app.do(t, http.MethodGet, "/api/budgets?month=2024-04", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["budgets"])

	code, _ = app.do(t, http.MethodDelete, "/api/budgets/"+budgetID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = app.do(t, http.MethodDelete, "/api/budgets/"+budgetID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Budget not found", body["error"])
}

func TestGoals(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "goal@example.com")
	otherToken, _ := app.register(t, "goal-other@example.com")

	code, body := app.do(t, http.MethodPost, "/api/goals", token, gin.H{"name": "Trip"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Name, targetAmount, and targetDate are required", body["error"])

	code, body = app.do(t, http.MethodPost, "/api/goals", token, gin.H{"name": "Trip", "targetAmount": 500, "targetDate": "2025-08-01"})
	require.Equal(t, http.StatusCreated, code)
	goal := body["goal"].(map[string]interface{})
	assert.Equal(t, 0.0, goal["currentAmount"])
	goalID := goal["id"].(string)

	code, body = app.do(t, http.MethodPut, "/api/goals/"+goalID+"/progress", token, gin.H{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Valid amount is required", body["error"])

	code, body = app.do(t, http.MethodPut, "/api/goals/"+goalID+"/progress", token, gin.H{"amount": 200})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 200.0, body["goal"].(map[string]interface{})["currentAmount"])

	code, body = app.do(t, http.MethodPut, "/api/goals/"+goalID+"/progress", token, gin.H{"amount": 1000})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 500.0, body["goal"].(map[string]interface{})["currentAmount"])

	code, body = app.do(t, http.MethodPut, "/api/goals/"+goalID+"/progress", otherToken, gin.H{"amount": 1})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Goal not found", body["error"])

	code, body = app.do(t, http.MethodGet, "/api/goals", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["goals"], 1)

	code, _ = app.do(t, http.MethodDelete, "/api/goals/"+goalID, token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	token, userID := app.register(t, "dash@example.com")

	app.seedTransactions(t, userID,
		models.Transaction{Amount: 40, Date: "2024-03-03", Category: "Food and Drink"},
		models.Transaction{Amount: 60, Date: "2024-03-09", Category: "Travel"},
		models.Transaction{Amount: 999, Date: "2024-02-09", Category: "Travel"},
	)
	code, _ := app.do(t, http.MethodPost, "/api/goals", token, gin.H{"name": "Car", "targetAmount": 1000, "targetDate": "2026-01-01"})
	require.Equal(t, http.StatusCreated, code)

	code, body := app.do(t, http.MethodGet, "/api/dashboard?month=2024-03", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-03", body["month"])
	assert.Equal(t, 100.0, body["totalSpent"])
	assert.Equal(t, 2.0, body["transactionCount"])
	top := body["topCategories"].([]interface{})
	require.Len(t, top, 2)
	assert.Equal(t, "Travel", top[0].(map[string]interface{})["category"])
	assert.Len(t, body["goals"], 1)

	code, _ = app.do(t, http.MethodGet, "/api/dashboard?month=March", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// ============================================================================
// REALTIME
// ============================================================================

func TestWebSocketReceivesOwnEvents(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "ws@example.com")
	otherToken, _ := app.register(t, "ws-other@example.com")

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// wait until the session is registered before emitting events
	require.Eventually(t, func() bool { return app.ws.M.Len() == 1 }, time.Second, 10*time.Millisecond)

	code, _ := app.do(t, http.MethodPost, "/api/goals", otherToken, gin.H{"name": "Other", "targetAmount": 10, "targetDate": "2025-01-01"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = app.do(t, http.MethodPost, "/api/goals", token, gin.H{"name": "Mine", "targetAmount": 10, "targetDate": "2025-01-01"})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "goal_changed", event["type"])
	assert.Equal(t, "created", event["action"])
}

func TestWebSocketRequiresToken(t *testing.T) {
	app := newTestApp(t)
	code, _ := app.do(t, http.MethodGet, "/api/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
