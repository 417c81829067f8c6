package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-api/models"
)

// Amounts are summed as decimals so totals like 0.1 + 0.2 come out exact.

type accumulator struct {
	total decimal.Decimal
	count int
}

func (a *accumulator) add(amount float64) {
	a.total = a.total.Add(decimal.NewFromFloat(amount))
	a.count++
}

func (a accumulator) totals() models.Totals {
	return models.Totals{Total: a.total.InexactFloat64(), Count: a.count}
}

func groupTotals(txs []models.Transaction, key func(models.Transaction) (string, bool)) map[string]models.Totals {
	acc := map[string]*accumulator{}
	for _, t := range txs {
		k, ok := key(t)
		if !ok {
			continue
		}
		a, exists := acc[k]
		if !exists {
			a = &accumulator{total: decimal.Zero}
			acc[k] = a
		}
		a.add(t.Amount)
	}

	out := make(map[string]models.Totals, len(acc))
	for k, a := range acc {
		out[k] = a.totals()
	}
	return out
}

// SummarizeByCategory groups spend per category. Uncategorised
// transactions count as DefaultCategory.
func SummarizeByCategory(txs []models.Transaction) map[string]models.Totals {
	return groupTotals(txs, func(t models.Transaction) (string, bool) {
		if t.Category == "" {
			return DefaultCategory, true
		}
		return t.Category, true
	})
}

const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// TrendKey returns the bucket a YYYY-MM-DD date falls in. Weeks start on
// Sunday. Unknown periods bucket by month.
func TrendKey(date, period string) (string, bool) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", false
	}
	switch period {
	case PeriodDay:
		return d.Format("2006-01-02"), true
	case PeriodWeek:
		return d.AddDate(0, 0, -int(d.Weekday())).Format("2006-01-02"), true
	default:
		return d.Format("2006-01"), true
	}
}

// SpendingTrends groups spend per day, week or month. Transactions with an
// unparseable date are skipped.
func SpendingTrends(txs []models.Transaction, period string) map[string]models.Totals {
	return groupTotals(txs, func(t models.Transaction) (string, bool) {
		return TrendKey(t.Date, period)
	})
}

// BudgetVsActual compares each budget of the month with what was spent in
// its category during that month.
func BudgetVsActual(budgets []models.Budget, txs []models.Transaction, month string) []models.BudgetVsActual {
	spentBy := map[string]decimal.Decimal{}
	for _, t := range txs {
		if !strings.HasPrefix(t.Date, month) {
			continue
		}
		spentBy[t.Category] = spentBy[t.Category].Add(decimal.NewFromFloat(t.Amount))
	}

	hundred := decimal.NewFromInt(100)
	result := []models.BudgetVsActual{}
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		budgeted := decimal.NewFromFloat(b.Amount)
		spent := spentBy[b.Category]

		percentage := decimal.Zero
		if budgeted.IsPositive() {
			percentage = spent.Div(budgeted).Mul(hundred).Round(2)
		}

		result = append(result, models.BudgetVsActual{
			BudgetID:   b.ID,
			Category:   b.Category,
			Budgeted:   budgeted.InexactFloat64(),
			Spent:      spent.InexactFloat64(),
			Remaining:  budgeted.Sub(spent).InexactFloat64(),
			Percentage: percentage.InexactFloat64(),
		})
	}
	return result
}

// TopCategories returns the n categories with the highest spend, ties
// broken by name.
func TopCategories(summary map[string]models.Totals, n int) []models.CategorySpend {
	out := make([]models.CategorySpend, 0, len(summary))
	for cat, totals := range summary {
		out = append(out, models.CategorySpend{Category: cat, Total: totals.Total, Count: totals.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
