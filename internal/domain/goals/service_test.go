package goals

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/internal/storage/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.New(), slog.New(slog.DiscardHandler))
}

func createGoal(t *testing.T, svc *Service, target, current int64, deadline time.Time) storage.Goal {
	t.Helper()
	goal, err := svc.Create(context.Background(), storage.Goal{
		UserID:        1,
		Name:          "Test goal",
		TargetAmount:  decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Deadline:      deadline,
	})
	require.NoError(t, err)
	return goal
}

func TestContribute(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	goal := createGoal(t, svc, 10000, 1000, time.Now().AddDate(1, 0, 0))

	updated, err := svc.Contribute(ctx, 1, goal.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(1500)))

	updated, err = svc.Contribute(ctx, 1, goal.ID, decimal.NewFromInt(-9000))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.IsZero(), "withdrawal clamps at zero")
}

func TestPlan(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ten months out", func(t *testing.T) {
		svc := newService(t)
		goal := createGoal(t, svc, 100000, 40000, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		plan, err := svc.Plan(context.Background(), 1, goal.ID, decimal.Zero, now)
		require.NoError(t, err)
		assert.Equal(t, 10, plan.MonthsRemaining)
		assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(60000)))
		assert.True(t, plan.MonthlySaving.Equal(decimal.NewFromInt(6000)))
		assert.False(t, plan.Achieved)
		assert.Nil(t, plan.Feasible)
	})

	t.Run("achieved goal", func(t *testing.T) {
		svc := newService(t)
		goal := createGoal(t, svc, 5000, 5000, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		plan, err := svc.Plan(context.Background(), 1, goal.ID, decimal.Zero, now)
		require.NoError(t, err)
		assert.True(t, plan.Achieved)
		assert.True(t, plan.MonthlySaving.IsZero())
	})

	t.Run("past deadline demands remainder at once", func(t *testing.T) {
		svc := newService(t)
		goal := createGoal(t, svc, 5000, 0, now.AddDate(0, -1, 0))

		plan, err := svc.Plan(context.Background(), 1, goal.ID, decimal.Zero, now)
		require.NoError(t, err)
		assert.Equal(t, 1, plan.MonthsRemaining)
		assert.True(t, plan.MonthlySaving.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("feasibility against income", func(t *testing.T) {
		svc := newService(t)
		goal := createGoal(t, svc, 100000, 40000, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		plan, err := svc.Plan(context.Background(), 1, goal.ID, decimal.NewFromInt(50000), now)
		require.NoError(t, err)
		require.NotNil(t, plan.Feasible)
		assert.True(t, *plan.Feasible, "6000/month fits within half of 50000")

		plan, err = svc.Plan(context.Background(), 1, goal.ID, decimal.NewFromInt(10000), now)
		require.NoError(t, err)
		require.NotNil(t, plan.Feasible)
		assert.False(t, *plan.Feasible, "6000/month exceeds half of 10000")
	})

	t.Run("missing goal", func(t *testing.T) {
		svc := newService(t)
		_, err := svc.Plan(context.Background(), 1, 99, decimal.Zero, now)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
