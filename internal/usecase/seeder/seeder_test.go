package seeder

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruifsilva/budgetflow-backend/internal/adapter/repository/memory"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

func TestSeed_CreatesStarterData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeder := NewSeeder(store.Categories(), store.Budgets())
	seeder.Now = func() time.Time { return time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, seeder.Seed(ctx))

	categories, err := store.Categories().List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, categories, 3)

	emergency, err := store.Categories().GetByID(ctx, SeedCategoryEmergency)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryTypeSavings, emergency.Type)
	assert.True(t, emergency.Spent.IsZero())

	budget, err := store.Budgets().GetByMonth(ctx, time.March, 2026)
	require.NoError(t, err)
	assert.True(t, budget.TotalBudget.IsZero())
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeder := NewSeeder(store.Categories(), store.Budgets())

	require.NoError(t, seeder.Seed(ctx))

	// Mutate a seeded category, then re-seed: the mutation must survive
	require.NoError(t, store.Categories().ApplyAggregateDeltas(ctx, SeedCategoryGroceries,
		decimal.NewFromInt(42), decimal.Zero))

	require.NoError(t, seeder.Seed(ctx))

	groceries, err := store.Categories().GetByID(ctx, SeedCategoryGroceries)
	require.NoError(t, err)
	assert.True(t, groceries.Spent.Equal(decimal.NewFromInt(42)))

	categories, err := store.Categories().List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}
