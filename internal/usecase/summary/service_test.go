package summary

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruifsilva/budgetflow-backend/internal/adapter/repository/memory"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

func TestGetOverview(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewService(store.Categories(), store.Accounts())

	require.NoError(t, store.Accounts().Create(ctx, &domain.BankAccount{
		ID: uuid.New(), Name: "Checking", Type: domain.AccountTypeChecking,
		Balance: decimal.NewFromInt(1000), Currency: "EUR", IsActive: true,
	}))
	require.NoError(t, store.Accounts().Create(ctx, &domain.BankAccount{
		ID: uuid.New(), Name: "Visa", Type: domain.AccountTypeCredit,
		Balance: decimal.NewFromInt(300), Currency: "EUR", IsActive: true,
	}))
	// Inactive accounts are excluded
	require.NoError(t, store.Accounts().Create(ctx, &domain.BankAccount{
		ID: uuid.New(), Name: "Old Account", Type: domain.AccountTypeChecking,
		Balance: decimal.NewFromInt(5000), Currency: "EUR", IsActive: false,
	}))

	require.NoError(t, store.Categories().Create(ctx, &domain.BudgetCategory{
		ID: uuid.New(), Name: "Groceries", Type: domain.CategoryTypeVariable,
		BudgetAmount: decimal.NewFromInt(400), Spent: decimal.NewFromInt(150), IsActive: true,
	}))
	require.NoError(t, store.Categories().Create(ctx, &domain.BudgetCategory{
		ID: uuid.New(), Name: "Rent", Type: domain.CategoryTypeFixed,
		BudgetAmount: decimal.NewFromInt(1200), Spent: decimal.NewFromInt(1200), IsActive: true,
	}))

	overview, err := service.GetOverview(ctx)
	require.NoError(t, err)

	// 1000 - 300 (credit subtracts)
	assert.True(t, overview.NetWorth.Equal(decimal.NewFromInt(700)), "got %s", overview.NetWorth)
	assert.True(t, overview.TotalBudgeted.Equal(decimal.NewFromInt(1600)))
	assert.True(t, overview.TotalSpent.Equal(decimal.NewFromInt(1350)))
	assert.True(t, overview.TotalRemaining.Equal(decimal.NewFromInt(250)))
	assert.Len(t, overview.Categories, 2)
}

func TestGetOverview_Empty(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store.Categories(), store.Accounts())

	overview, err := service.GetOverview(context.Background())
	require.NoError(t, err)

	assert.True(t, overview.NetWorth.IsZero())
	assert.Empty(t, overview.Categories)
}
