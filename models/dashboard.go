package models

type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

type GoalProgress struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"` // percent of target reached
}

type Dashboard struct {
	Month            string           `json:"month"`
	TotalSpent       float64          `json:"totalSpent"`
	TransactionCount int              `json:"transactionCount"`
	TopCategories    []CategorySpend  `json:"topCategories"`
	BudgetVsActual   []BudgetVsActual `json:"budgetVsActual"`
	Goals            []GoalProgress   `json:"goals"`
}
