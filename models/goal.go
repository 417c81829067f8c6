package models

import "time"

type Goal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetDate    string    `json:"targetDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateGoalRequest struct {
	Name         string  `json:"name" binding:"required"`
	TargetAmount float64 `json:"targetAmount" binding:"required,gt=0"`
	TargetDate   string  `json:"targetDate" binding:"required"`
}

type GoalProgressRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
