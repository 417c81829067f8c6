package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/pocketpilot/pocketpilot-api/config"
	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/utils"
)

var ErrPlaidNotConfigured = errors.New("plaid is not configured")

// PlaidTransaction is the subset of a Plaid transaction the sync stores.
type PlaidTransaction struct {
	TransactionID string
	AccountID     string
	Amount        float64
	Date          string
	Name          string
	MerchantName  string
	Categories    []string
	Pending       bool
}

// PlaidClient is the part of the Plaid API used by BankingService.
type PlaidClient interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken string, itemID string, err error)
	GetAccounts(ctx context.Context, accessToken string) ([]models.BankAccount, error)
	// GetTransactions returns one page and the total number of transactions
	// in the date range.
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string, offset, count int) ([]PlaidTransaction, int, error)
}

type PlaidService struct {
	Client      *plaid.APIClient
	redirectURI string
	configured  bool
}

func NewPlaidService(cfg config.PlaidConfig, frontendURL string) *PlaidService {
	var env plaid.Environment
	switch cfg.Env {
	case "production":
		env = plaid.Production
	case "development":
		env = plaid.Development
	default:
		env = plaid.Sandbox
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.UseEnvironment(env)

	// Plaid compares redirect URIs literally, always send the trailing slash
	redirectURI := frontendURL
	if redirectURI != "" && !strings.HasSuffix(redirectURI, "/") {
		redirectURI += "/"
	}

	return &PlaidService{
		Client:      plaid.NewAPIClient(configuration),
		redirectURI: redirectURI,
		configured:  cfg.Configured(),
	}
}

func (s *PlaidService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if !s.configured {
		return "", ErrPlaidNotConfigured
	}

	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: userID,
	}

	request := plaid.NewLinkTokenCreateRequest(
		"PocketPilot",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	if strings.HasPrefix(s.redirectURI, "https://") {
		request.SetRedirectUri(s.redirectURI)
	}

	resp, _, err := s.Client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		utils.SafeError("Plaid CreateLinkToken failed: %v", formatPlaidError(err))
		return "", formatPlaidError(err)
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades the Link public token for a long lived access token.
func (s *PlaidService) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	if !s.configured {
		return "", "", ErrPlaidNotConfigured
	}

	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, _, err := s.Client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", formatPlaidError(err)
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (s *PlaidService) GetAccounts(ctx context.Context, accessToken string) ([]models.BankAccount, error) {
	if !s.configured {
		return nil, ErrPlaidNotConfigured
	}

	request := plaid.NewAccountsGetRequest(accessToken)

	resp, _, err := s.Client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, formatPlaidError(err)
	}

	accounts := make([]models.BankAccount, 0, len(resp.GetAccounts()))
	for _, acc := range resp.GetAccounts() {
		balances := acc.GetBalances()
		account := models.BankAccount{
			AccountID:    acc.GetAccountId(),
			Name:         acc.GetName(),
			OfficialName: acc.GetOfficialName(),
			Mask:         acc.GetMask(),
			Type:         string(acc.GetType()),
			Subtype:      string(acc.GetSubtype()),
			Balances: models.AccountBalances{
				IsoCurrencyCode: balances.GetIsoCurrencyCode(),
			},
		}
		if v, ok := balances.GetAvailableOk(); ok && v != nil {
			available := *v
			account.Balances.Available = &available
		}
		if v, ok := balances.GetCurrentOk(); ok && v != nil {
			current := *v
			account.Balances.Current = &current
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *PlaidService) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, offset, count int) ([]PlaidTransaction, int, error) {
	if !s.configured {
		return nil, 0, ErrPlaidNotConfigured
	}

	options := plaid.NewTransactionsGetRequestOptions()
	options.SetCount(int32(count))
	options.SetOffset(int32(offset))

	request := plaid.NewTransactionsGetRequest(accessToken, startDate, endDate)
	request.SetOptions(*options)

	resp, _, err := s.Client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, 0, formatPlaidError(err)
	}

	txs := make([]PlaidTransaction, 0, len(resp.GetTransactions()))
	for _, t := range resp.GetTransactions() {
		txs = append(txs, PlaidTransaction{
			TransactionID: t.GetTransactionId(),
			AccountID:     t.GetAccountId(),
			Amount:        t.GetAmount(),
			Date:          t.GetDate(),
			Name:          t.GetName(),
			MerchantName:  t.GetMerchantName(),
			Categories:    t.GetCategory(),
			Pending:       t.GetPending(),
		})
	}
	return txs, int(resp.GetTotalTransactions()), nil
}

func formatPlaidError(err error) error {
	var plaidErr plaid.GenericOpenAPIError
	if errors.As(err, &plaidErr) {
		return fmt.Errorf("plaid error: %s", string(plaidErr.Body()))
	}
	return err
}
