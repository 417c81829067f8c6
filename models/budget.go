package models

import "time"

type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Month     string    `json:"month"` // YYYY-MM
	CreatedAt time.Time `json:"createdAt"`
}

type CreateBudgetRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Month    string  `json:"month" binding:"required"`
}

type UpdateBudgetRequest struct {
	Category *string  `json:"category"`
	Amount   *float64 `json:"amount" binding:"omitempty,gt=0"`
}

type BudgetVsActual struct {
	BudgetID   string  `json:"id"`
	Category   string  `json:"category"`
	Budgeted   float64 `json:"budgeted"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}
