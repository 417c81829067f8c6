package models

import "time"

// PlaidItem is one linked bank connection.
type PlaidItem struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	AccessToken     string    `json:"-"` // Internal use only
	ItemID          string    `json:"itemId"`
	InstitutionID   string    `json:"institutionId"`
	InstitutionName string    `json:"institutionName"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ExchangeTokenRequest struct {
	PublicToken     string `json:"public_token" binding:"required"`
	InstitutionID   string `json:"institution_id" binding:"required"`
	InstitutionName string `json:"institution_name" binding:"required"`
}

// BankAccount mirrors the Plaid account object, annotated with the item it
// came from.
type BankAccount struct {
	AccountID       string          `json:"account_id"`
	Name            string          `json:"name"`
	OfficialName    string          `json:"official_name,omitempty"`
	Mask            string          `json:"mask,omitempty"`
	Type            string          `json:"type"`
	Subtype         string          `json:"subtype,omitempty"`
	Balances        AccountBalances `json:"balances"`
	InstitutionName string          `json:"institutionName"`
	ItemID          string          `json:"itemId"`
}

type AccountBalances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	IsoCurrencyCode string   `json:"iso_currency_code,omitempty"`
}
