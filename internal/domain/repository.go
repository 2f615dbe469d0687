package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	// Create persists a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// Update replaces all fields of an existing transaction
	Update(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction row
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByCategory retrieves every transaction referencing the category
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Transaction, error)

	// ListByAccount retrieves every transaction where the account is the
	// source or the receiving account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)
}

// CategoryRepository defines the interface for budget category persistence operations
type CategoryRepository interface {
	// Create persists a new category
	Create(ctx context.Context, category *BudgetCategory) error

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*BudgetCategory, error)

	// List retrieves all categories; when onlyActive is true, soft-deleted
	// categories are excluded
	List(ctx context.Context, onlyActive bool) ([]*BudgetCategory, error)

	// ListByType retrieves all active categories of the given type
	ListByType(ctx context.Context, categoryType CategoryType) ([]*BudgetCategory, error)

	// ApplyAggregateDeltas increments the cached spent and budget_amount
	// fields. Implementations must perform an atomic increment
	// (spent = spent + delta), never a read-modify-write.
	ApplyAggregateDeltas(ctx context.Context, id uuid.UUID, spentDelta, budgetDelta decimal.Decimal) error

	// SetSpent overwrites the cached spent value (reconciliation repair path)
	SetSpent(ctx context.Context, id uuid.UUID, spent decimal.Decimal) error

	// Deactivate soft-deletes a category
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// AccountRepository defines the interface for bank account persistence operations
type AccountRepository interface {
	// Create persists a new account
	Create(ctx context.Context, account *BankAccount) error

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// List retrieves all accounts; when onlyActive is true, soft-deleted
	// accounts are excluded
	List(ctx context.Context, onlyActive bool) ([]*BankAccount, error)

	// ApplyBalanceDelta increments the cached balance. Implementations must
	// perform an atomic increment (balance = balance + delta).
	ApplyBalanceDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error

	// SetBalance overwrites the cached balance (reconciliation repair path)
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// Deactivate soft-deletes an account
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// BudgetRepository defines the interface for monthly budget persistence operations
type BudgetRepository interface {
	// Create persists a new monthly budget
	Create(ctx context.Context, budget *MonthlyBudget) error

	// GetByID retrieves a budget by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*MonthlyBudget, error)

	// GetByMonth retrieves the budget row for a calendar month
	GetByMonth(ctx context.Context, month time.Month, year int) (*MonthlyBudget, error)

	// ApplyBudgetDelta atomically increments total_budget and the per-type
	// budget column matching categoryType
	ApplyBudgetDelta(ctx context.Context, id uuid.UUID, categoryType CategoryType, delta decimal.Decimal) error
}

// TransferRepository defines the interface for account transfer persistence operations
type TransferRepository interface {
	// Create persists a new transfer record
	Create(ctx context.Context, transfer *AccountTransfer) error

	// GetByID retrieves a transfer by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*AccountTransfer, error)

	// ListByAccount retrieves every transfer where the account is the
	// sender or the receiver
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*AccountTransfer, error)
}
