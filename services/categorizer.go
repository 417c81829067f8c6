package services

import (
	"sort"
	"strings"
)

const DefaultCategory = "Other"

type CategorizerService struct {
	keys []string // longest first, so "uber eats" wins over "uber"
}

func NewCategorizerService() *CategorizerService {
	keys := make([]string, 0, len(staticRules))
	for k := range staticRules {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &CategorizerService{keys: keys}
}

// --- STATIC DICTIONARY ---
// Names follow the top level Plaid categories so rule hits and Plaid
// categories group together in summaries.
var staticRules = map[string]string{
	// FOOD
	"starbucks": "Food and Drink", "mcdonald": "Food and Drink", "chipotle": "Food and Drink",
	"doordash": "Food and Drink", "uber eats": "Food and Drink", "grubhub": "Food and Drink",
	"whole foods": "Food and Drink", "trader joe": "Food and Drink", "safeway": "Food and Drink",
	"kroger": "Food and Drink", "dunkin": "Food and Drink",

	// TRAVEL
	"uber": "Travel", "lyft": "Travel", "united airlines": "Travel", "delta": "Travel",
	"american airlines": "Travel", "airbnb": "Travel", "marriott": "Travel", "shell": "Travel",
	"chevron": "Travel", "exxon": "Travel",

	// SHOPS
	"amazon": "Shops", "target": "Shops", "walmart": "Shops", "costco": "Shops",
	"best buy": "Shops", "apple store": "Shops", "home depot": "Shops",

	// RECREATION
	"netflix": "Recreation", "spotify": "Recreation", "hulu": "Recreation", "disney+": "Recreation",
	"planet fitness": "Recreation", "steam": "Recreation",

	// SERVICE
	"comcast": "Service", "verizon": "Service", "at&t": "Service", "t-mobile": "Service",
	"geico": "Service", "state farm": "Service", "pg&e": "Service",

	// TRANSFER
	"venmo": "Transfer", "zelle": "Transfer", "paypal": "Transfer",

	// PAYMENT
	"credit card": "Payment", "autopay": "Payment",
}

// GetCategory picks a category for a transaction: the first Plaid category
// when present, else a merchant keyword rule, else DefaultCategory.
func (s *CategorizerService) GetCategory(plaidCategories []string, merchantName, name string) string {
	if len(plaidCategories) > 0 && strings.TrimSpace(plaidCategories[0]) != "" {
		return plaidCategories[0]
	}

	for _, label := range []string{merchantName, name} {
		normalized := strings.ToLower(strings.TrimSpace(label))
		if normalized == "" {
			continue
		}
		if category, exists := staticRules[normalized]; exists {
			return category
		}
		for _, key := range s.keys {
			if strings.Contains(normalized, key) {
				return staticRules[key]
			}
		}
	}

	return DefaultCategory
}
