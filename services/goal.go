package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/pocketpilot-api/models"
	"github.com/pocketpilot/pocketpilot-api/store"
)

type GoalService struct {
	store    store.Store
	notifier Notifier
}

func NewGoalService(s store.Store) *GoalService {
	return &GoalService{store: s}
}

func (s *GoalService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *GoalService) List(ctx context.Context, userID string) ([]models.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

func (s *GoalService) Create(ctx context.Context, userID string, req models.CreateGoalRequest) (*models.Goal, error) {
	goal, err := s.store.CreateGoal(ctx, models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: 0,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, "created", goal)
	return goal, nil
}

// AddProgress adds amount to the goal, never going past its target.
func (s *GoalService) AddProgress(ctx context.Context, userID, id string, amount float64) (*models.Goal, error) {
	goal, err := s.store.ModifyGoal(ctx, userID, id, func(g *models.Goal) error {
		g.CurrentAmount = ClampProgress(g.CurrentAmount, amount, g.TargetAmount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, "progress", goal)
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyUser(userID, "goal_changed", map[string]interface{}{
			"action": "deleted",
			"goalId": id,
		})
	}
	return nil
}

// ClampProgress returns min(current+amount, target).
func ClampProgress(current, amount, target float64) float64 {
	next := decimal.NewFromFloat(current).Add(decimal.NewFromFloat(amount))
	limit := decimal.NewFromFloat(target)
	return decimal.Min(next, limit).InexactFloat64()
}

// ProgressPercent is how much of the target has been reached, 0 to 100.
func ProgressPercent(g models.Goal) float64 {
	target := decimal.NewFromFloat(g.TargetAmount)
	if !target.IsPositive() {
		return 0
	}
	pct := decimal.NewFromFloat(g.CurrentAmount).Div(target).Mul(decimal.NewFromInt(100)).Round(2)
	return decimal.Min(pct, decimal.NewFromInt(100)).InexactFloat64()
}

func (s *GoalService) notify(userID, action string, goal *models.Goal) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, "goal_changed", map[string]interface{}{
		"action":        action,
		"goalId":        goal.ID,
		"currentAmount": goal.CurrentAmount,
	})
}
