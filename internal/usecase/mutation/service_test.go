package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruifsilva/budgetflow-backend/internal/auth"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

type testMocks struct {
	transactions *MockTransactionRepository
	categories   *MockCategoryRepository
	accounts     *MockAccountRepository
	budgets      *MockBudgetRepository
	transfers    *MockTransferRepository
}

func newTestService() (*Service, *testMocks) {
	m := &testMocks{
		transactions: new(MockTransactionRepository),
		categories:   new(MockCategoryRepository),
		accounts:     new(MockAccountRepository),
		budgets:      new(MockBudgetRepository),
		transfers:    new(MockTransferRepository),
	}
	service := NewService(m.transactions, m.categories, m.accounts, m.budgets, m.transfers, zerolog.Nop())
	return service, m
}

func authedCtx() context.Context {
	return auth.WithUserID(context.Background(), uuid.New())
}

func activeCategory(categoryType domain.CategoryType) *domain.BudgetCategory {
	return &domain.BudgetCategory{
		ID:           uuid.New(),
		Name:         "Groceries",
		Type:         categoryType,
		BudgetAmount: decimal.NewFromInt(400),
		Spent:        decimal.Zero,
		IsActive:     true,
	}
}

func activeAccount() *domain.BankAccount {
	return &domain.BankAccount{
		ID:       uuid.New(),
		Name:     "Main Checking",
		Type:     domain.AccountTypeChecking,
		Balance:  decimal.NewFromInt(1000),
		Currency: "EUR",
		IsActive: true,
	}
}

func TestAddTransaction_Expense(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()

	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
	m.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, account.ID, decimalEq(decimal.NewFromInt(-50))).Return(nil)
	m.categories.On("ApplyAggregateDeltas", ctx, category.ID, decimalEq(decimal.NewFromInt(50)), decimalEq(decimal.Zero)).Return(nil)

	tx, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:      decimal.NewFromInt(50),
		Type:        domain.TransactionTypeExpense,
		CategoryID:  category.ID,
		AccountID:   &account.ID,
		Description: "Weekly groceries",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.False(t, tx.Date.IsZero())
	m.transactions.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.categories.AssertExpectations(t)
	// An expense never touches the monthly budget
	m.budgets.AssertNotCalled(t, "ApplyBudgetDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddTransaction_IncomeTopsUpBudget(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()
	date := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	budget := &domain.MonthlyBudget{ID: uuid.New(), Month: time.March, Year: 2026}

	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
	m.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, account.ID, decimalEq(decimal.NewFromInt(500))).Return(nil)
	m.categories.On("ApplyAggregateDeltas", ctx, category.ID, decimalEq(decimal.Zero), decimalEq(decimal.NewFromInt(500))).Return(nil)
	m.budgets.On("GetByMonth", ctx, time.March, 2026).Return(budget, nil)
	m.budgets.On("ApplyBudgetDelta", ctx, budget.ID, domain.CategoryTypeVariable, decimalEq(decimal.NewFromInt(500))).Return(nil)

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.NewFromInt(500),
		Type:       domain.TransactionTypeIncome,
		CategoryID: category.ID,
		AccountID:  &account.ID,
		Date:       date,
	})

	require.NoError(t, err)
	m.budgets.AssertExpectations(t)
}

func TestAddTransaction_NoBudgetForMonthSkipsTopUp(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeFixed)

	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	m.categories.On("ApplyAggregateDeltas", ctx, category.ID, decimalEq(decimal.Zero), decimalEq(decimal.NewFromInt(100))).Return(nil)
	m.budgets.On("GetByMonth", ctx, mock.Anything, mock.Anything).
		Return(nil, &domain.NotFoundError{Entity: "budget", ID: "2026-03"})

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.NewFromInt(100),
		Type:       domain.TransactionTypeIncome,
		CategoryID: category.ID,
	})

	require.NoError(t, err)
	m.budgets.AssertNotCalled(t, "ApplyBudgetDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddTransaction_RequiresAuthentication(t *testing.T) {
	service, m := newTestService()

	_, err := service.AddTransaction(context.Background(), AddTransactionInput{
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		CategoryID: uuid.New(),
	})

	assert.True(t, domain.IsAuth(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddTransaction_ValidatesBeforeAnyWrite(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.Zero,
		Type:       domain.TransactionTypeExpense,
		CategoryID: uuid.New(),
	})

	assert.True(t, domain.IsValidation(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.accounts.AssertNotCalled(t, "ApplyBalanceDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddTransaction_UnknownCategory(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	categoryID := uuid.New()
	m.categories.On("GetByID", ctx, categoryID).
		Return(nil, &domain.NotFoundError{Entity: "category", ID: categoryID.String()})

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		CategoryID: categoryID,
	})

	assert.True(t, domain.IsNotFound(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddTransaction_InactiveAccount(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()
	account.IsActive = false

	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		CategoryID: category.ID,
		AccountID:  &account.ID,
	})

	assert.True(t, domain.IsValidation(err))
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddTransaction_PartialMutationOnAccountWrite(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()

	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
	m.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, account.ID, mock.Anything).
		Return(errors.New("connection reset"))

	_, err := service.AddTransaction(ctx, AddTransactionInput{
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		CategoryID: category.ID,
		AccountID:  &account.ID,
	})

	require.Error(t, err)
	assert.True(t, domain.IsPartialMutation(err))

	var pme *domain.PartialMutationError
	require.ErrorAs(t, err, &pme)
	assert.Equal(t, "account", pme.Step)
	assert.Equal(t, "add_transaction", pme.Op)
}

func TestUpdateTransaction_AmountOnlyNetsIntoSingleWrite(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()
	old := &domain.Transaction{
		ID:         uuid.New(),
		CategoryID: category.ID,
		AccountID:  &account.ID,
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		Date:       time.Now(),
	}

	m.transactions.On("GetByID", ctx, old.ID).Return(old, nil)
	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
	m.transactions.On("Update", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	// Net effect of 50 -> 80: one -30 balance write, one +30 spent write
	m.accounts.On("ApplyBalanceDelta", ctx, account.ID, decimalEq(decimal.NewFromInt(-30))).Return(nil).Once()
	m.categories.On("ApplyAggregateDeltas", ctx, category.ID, decimalEq(decimal.NewFromInt(30)), decimalEq(decimal.Zero)).Return(nil).Once()

	newAmount := decimal.NewFromInt(80)
	updated, err := service.UpdateTransaction(ctx, old.ID, TransactionPatch{Amount: &newAmount})

	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(newAmount))
	m.accounts.AssertExpectations(t)
	m.categories.AssertExpectations(t)
}

func TestUpdateTransaction_CategoryChangeRevertsAndAppliesIndependently(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	oldCategory := activeCategory(domain.CategoryTypeVariable)
	newCategory := activeCategory(domain.CategoryTypeFixed)
	account := activeAccount()
	old := &domain.Transaction{
		ID:         uuid.New(),
		CategoryID: oldCategory.ID,
		AccountID:  &account.ID,
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		Date:       time.Now(),
	}

	m.transactions.On("GetByID", ctx, old.ID).Return(old, nil)
	m.categories.On("GetByID", ctx, oldCategory.ID).Return(oldCategory, nil)
	m.categories.On("GetByID", ctx, newCategory.ID).Return(newCategory, nil)
	m.accounts.On("GetByID", ctx, account.ID).Return(account, nil)
	m.transactions.On("Update", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
	// Account nets to zero so no balance write; each category gets its own update
	m.categories.On("ApplyAggregateDeltas", ctx, oldCategory.ID, decimalEq(decimal.NewFromInt(-50)), decimalEq(decimal.Zero)).Return(nil).Once()
	m.categories.On("ApplyAggregateDeltas", ctx, newCategory.ID, decimalEq(decimal.NewFromInt(50)), decimalEq(decimal.Zero)).Return(nil).Once()

	_, err := service.UpdateTransaction(ctx, old.ID, TransactionPatch{CategoryID: &newCategory.ID})

	require.NoError(t, err)
	m.categories.AssertExpectations(t)
	m.accounts.AssertNotCalled(t, "ApplyBalanceDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteTransaction_RevertsAllEffects(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	category := activeCategory(domain.CategoryTypeVariable)
	account := activeAccount()
	tx := &domain.Transaction{
		ID:         uuid.New(),
		CategoryID: category.ID,
		AccountID:  &account.ID,
		Amount:     decimal.NewFromInt(50),
		Type:       domain.TransactionTypeExpense,
		Date:       time.Now(),
	}

	m.transactions.On("GetByID", ctx, tx.ID).Return(tx, nil)
	m.categories.On("GetByID", ctx, category.ID).Return(category, nil)
	m.transactions.On("Delete", ctx, tx.ID).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, account.ID, decimalEq(decimal.NewFromInt(50))).Return(nil)
	m.categories.On("ApplyAggregateDeltas", ctx, category.ID, decimalEq(decimal.NewFromInt(-50)), decimalEq(decimal.Zero)).Return(nil)

	err := service.DeleteTransaction(ctx, tx.ID)

	require.NoError(t, err)
	m.transactions.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.categories.AssertExpectations(t)
}

func TestTransfer_AdjustsBothBalancesOnly(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	from := activeAccount()
	to := activeAccount()

	m.accounts.On("GetByID", ctx, from.ID).Return(from, nil)
	m.accounts.On("GetByID", ctx, to.ID).Return(to, nil)
	m.transfers.On("Create", ctx, mock.AnythingOfType("*domain.AccountTransfer")).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, from.ID, decimalEq(decimal.NewFromInt(-100))).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, to.ID, decimalEq(decimal.NewFromInt(100))).Return(nil)

	transfer, err := service.Transfer(ctx, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(100),
		Description:   "Monthly savings move",
	})

	require.NoError(t, err)
	assert.Equal(t, from.ID, transfer.FromAccountID)
	m.accounts.AssertExpectations(t)
	// Transfers never touch categories or budgets
	m.categories.AssertNotCalled(t, "ApplyAggregateDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.budgets.AssertNotCalled(t, "ApplyBudgetDelta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	accountID := uuid.New()
	_, err := service.Transfer(ctx, TransferInput{
		FromAccountID: accountID,
		ToAccountID:   accountID,
		Amount:        decimal.NewFromInt(100),
	})

	assert.True(t, domain.IsValidation(err))
	m.transfers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransfer_PartialMutationOnSecondLeg(t *testing.T) {
	ctx := authedCtx()
	service, m := newTestService()

	from := activeAccount()
	to := activeAccount()

	m.accounts.On("GetByID", ctx, from.ID).Return(from, nil)
	m.accounts.On("GetByID", ctx, to.ID).Return(to, nil)
	m.transfers.On("Create", ctx, mock.AnythingOfType("*domain.AccountTransfer")).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, from.ID, mock.Anything).Return(nil)
	m.accounts.On("ApplyBalanceDelta", ctx, to.ID, mock.Anything).Return(errors.New("timeout"))

	_, err := service.Transfer(ctx, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(100),
	})

	assert.True(t, domain.IsPartialMutation(err))
}
