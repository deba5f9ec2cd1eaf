// Package goals is the savings-goal domain: CRUD plus plan arithmetic telling
// the user what a goal demands per month.
package goals

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// Service holds the goals business logic.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// NewService wires the goals service.
func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Create(ctx context.Context, goal storage.Goal) (storage.Goal, error) {
	goal.TargetAmount = goal.TargetAmount.Abs()
	goal.CurrentAmount = goal.CurrentAmount.Abs()
	return s.store.CreateGoal(ctx, goal)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (storage.Goal, error) {
	return s.store.GetGoal(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID int64) ([]storage.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

func (s *Service) Update(ctx context.Context, goal storage.Goal) (storage.Goal, error) {
	goal.TargetAmount = goal.TargetAmount.Abs()
	goal.CurrentAmount = goal.CurrentAmount.Abs()
	return s.store.UpdateGoal(ctx, goal)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.store.DeleteGoal(ctx, userID, id)
}

// Contribute moves a goal's saved amount by delta, clamped at zero.
func (s *Service) Contribute(ctx context.Context, userID, id int64, delta decimal.Decimal) (storage.Goal, error) {
	goal, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return storage.Goal{}, err
	}
	next := goal.CurrentAmount.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	goal.CurrentAmount = next
	return s.store.UpdateGoal(ctx, goal)
}

// SavingsPlan describes what reaching a goal by its deadline requires.
type SavingsPlan struct {
	GoalID          int64           `json:"goalId"`
	Remaining       decimal.Decimal `json:"remaining"`
	MonthsRemaining int             `json:"monthsRemaining"`
	MonthlySaving   decimal.Decimal `json:"monthlySaving"`
	Achieved        bool            `json:"achieved"`
	// Feasible is set when a monthly income was supplied and the required
	// saving fits within half of it.
	Feasible *bool `json:"feasible,omitempty"`
}

// Plan computes the savings plan for a goal. A zero monthlyIncome skips the
// feasibility verdict. A deadline in the past demands the full remainder now.
func (s *Service) Plan(ctx context.Context, userID, id int64, monthlyIncome decimal.Decimal, now time.Time) (SavingsPlan, error) {
	goal, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return SavingsPlan{}, err
	}

	plan := SavingsPlan{GoalID: goal.ID}
	plan.Remaining = goal.TargetAmount.Sub(goal.CurrentAmount)
	if !plan.Remaining.IsPositive() {
		plan.Remaining = decimal.Zero
		plan.Achieved = true
		plan.MonthlySaving = decimal.Zero
		return plan, nil
	}

	plan.MonthsRemaining = monthsBetween(now, goal.Deadline)
	if plan.MonthsRemaining < 1 {
		plan.MonthsRemaining = 1
	}
	plan.MonthlySaving = plan.Remaining.DivRound(decimal.NewFromInt(int64(plan.MonthsRemaining)), 2)

	if monthlyIncome.IsPositive() {
		feasible := plan.MonthlySaving.LessThanOrEqual(monthlyIncome.Div(decimal.NewFromInt(2)))
		plan.Feasible = &feasible
	}
	return plan, nil
}

// monthsBetween counts whole months from now until deadline, rounding up so a
// partial month still gets a saving slot.
func monthsBetween(now, deadline time.Time) int {
	if !deadline.After(now) {
		return 0
	}
	months := (deadline.Year()-now.Year())*12 + int(deadline.Month()) - int(now.Month())
	if deadline.Day() > now.Day() {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}
