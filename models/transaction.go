package models

import "time"

type Transaction struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	PlaidTransactionID string    `json:"plaidTransactionId"`
	AccountID          string    `json:"accountId"`
	Amount             float64   `json:"amount"`
	Date               string    `json:"date"` // YYYY-MM-DD
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	MerchantName       string    `json:"merchantName,omitempty"`
	Pending            bool      `json:"pending"`
	Notes              string    `json:"notes,omitempty"`
	Tags               []string  `json:"tags"`
	CreatedAt          time.Time `json:"createdAt"`
}

// TransactionUpdate carries the user-editable fields; nil means unchanged.
type TransactionUpdate struct {
	Category *string   `json:"category"`
	Notes    *string   `json:"notes"`
	Tags     *[]string `json:"tags"`
}

type TransactionFilter struct {
	Category  string
	StartDate string
	EndDate   string
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// Totals is the {total, count} pair used by category summaries and trends.
type Totals struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}
