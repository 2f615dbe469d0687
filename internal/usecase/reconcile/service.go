// Package reconcile recomputes cached aggregates from the authoritative
// transaction history and repairs drift. It is the backstop for racing
// mutations and for partially applied ones.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/ledger"
)

// DriftEpsilon is the tolerance below which a cached aggregate is considered
// in sync with its history. Matches one cent.
var DriftEpsilon = decimal.RequireFromString("0.01")

// Service recomputes cached aggregates from transaction history.
// All recomputations are pure folds over the stored rows: running a
// reconciliation twice without intervening mutations yields the same value
// both times.
type Service struct {
	Transactions domain.TransactionRepository
	Categories   domain.CategoryRepository
	Accounts     domain.AccountRepository
	Budgets      domain.BudgetRepository
	Transfers    domain.TransferRepository
	Log          zerolog.Logger
}

// NewService creates a new reconciliation Service instance
func NewService(
	transactions domain.TransactionRepository,
	categories domain.CategoryRepository,
	accounts domain.AccountRepository,
	budgets domain.BudgetRepository,
	transfers domain.TransferRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		Transactions: transactions,
		Categories:   categories,
		Accounts:     accounts,
		Budgets:      budgets,
		Transfers:    transfers,
		Log:          log,
	}
}

// Result describes the outcome of a repair pass over one cached aggregate.
type Result struct {
	EntityID uuid.UUID
	Cached   decimal.Decimal
	Actual   decimal.Decimal
	Drift    decimal.Decimal
	Repaired bool
}

// ReconcileCategory recomputes a category's true spent total from every
// transaction referencing it, ignoring the cached value entirely.
func (s *Service) ReconcileCategory(ctx context.Context, categoryID uuid.UUID) (decimal.Decimal, error) {
	transactions, err := s.Transactions.ListByCategory(ctx, categoryID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list category transactions: %w", err)
	}

	actual := decimal.Zero
	for _, tx := range transactions {
		actual = actual.Add(ledger.CategorySpentChange(tx, true))
	}

	return actual, nil
}

// RepairCategory recomputes a category's spent total and overwrites the
// cached value when the drift exceeds DriftEpsilon.
func (s *Service) RepairCategory(ctx context.Context, categoryID uuid.UUID) (*Result, error) {
	category, err := s.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	actual, err := s.ReconcileCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		EntityID: categoryID,
		Cached:   category.Spent,
		Actual:   actual,
		Drift:    actual.Sub(category.Spent),
	}

	if result.Drift.Abs().GreaterThan(DriftEpsilon) {
		if err := s.Categories.SetSpent(ctx, categoryID, actual); err != nil {
			return nil, fmt.Errorf("failed to persist reconciled spent: %w", err)
		}
		result.Repaired = true
		s.Log.Info().
			Str("category_id", categoryID.String()).
			Str("cached", result.Cached.String()).
			Str("actual", actual.String()).
			Msg("repaired category spent drift")
	}

	return result, nil
}

// ReconcileAccountBalance replays every transaction and transfer involving
// the account, in timestamp order, starting from the account's initial
// balance. All deltas are additive, so the result is independent of replay
// order; sorting just keeps the walk deterministic.
func (s *Service) ReconcileAccountBalance(ctx context.Context, accountID uuid.UUID, initialBalance decimal.Decimal) (decimal.Decimal, error) {
	transactions, err := s.Transactions.ListByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list account transactions: %w", err)
	}

	transfers, err := s.Transfers.ListByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list account transfers: %w", err)
	}

	type event struct {
		date  time.Time
		delta decimal.Decimal
	}

	events := make([]event, 0, len(transactions)+len(transfers))
	for _, tx := range transactions {
		if tx.AccountID != nil && *tx.AccountID == accountID {
			events = append(events, event{tx.Date, ledger.AccountBalanceChange(tx, true)})
		}
		if tx.ReceivingAccountID != nil && *tx.ReceivingAccountID == accountID {
			events = append(events, event{tx.Date, ledger.AccountBalanceChange(tx, false)})
		}
	}
	for _, transfer := range transfers {
		events = append(events, event{transfer.Date, transfer.BalanceChange(accountID)})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].date.Before(events[j].date)
	})

	balance := initialBalance
	for _, e := range events {
		balance = balance.Add(e.delta)
	}

	return balance, nil
}

// RepairAccount recomputes an account's balance from history and overwrites
// the cached value when the drift exceeds DriftEpsilon.
func (s *Service) RepairAccount(ctx context.Context, accountID uuid.UUID, initialBalance decimal.Decimal) (*Result, error) {
	account, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	actual, err := s.ReconcileAccountBalance(ctx, accountID, initialBalance)
	if err != nil {
		return nil, err
	}

	result := &Result{
		EntityID: accountID,
		Cached:   account.Balance,
		Actual:   actual,
		Drift:    actual.Sub(account.Balance),
	}

	if result.Drift.Abs().GreaterThan(DriftEpsilon) {
		if err := s.Accounts.SetBalance(ctx, accountID, actual); err != nil {
			return nil, fmt.Errorf("failed to persist reconciled balance: %w", err)
		}
		result.Repaired = true
		s.Log.Info().
			Str("account_id", accountID.String()).
			Str("cached", result.Cached.String()).
			Str("actual", actual.String()).
			Msg("repaired account balance drift")
	}

	return result, nil
}

// ConsistencyReport is the non-mutating outcome of a budget check.
type ConsistencyReport struct {
	IsValid bool
	Errors  []string
}

// ValidateBudgetConsistency checks the monthly budget's soft invariants:
// the total should match the sum of the per-type budgets, and each per-type
// budget should match the sum of BudgetAmount over active categories of
// that type. Mismatches beyond DriftEpsilon are reported as human-readable
// strings; nothing is corrected.
func (s *Service) ValidateBudgetConsistency(ctx context.Context, budgetID uuid.UUID) (*ConsistencyReport, error) {
	budget, err := s.Budgets.GetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{IsValid: true}

	typeSum := decimal.Zero
	for _, categoryType := range []domain.CategoryType{
		domain.CategoryTypeFixed,
		domain.CategoryTypeVariable,
		domain.CategoryTypeSavings,
	} {
		budgeted := budget.BudgetForType(categoryType)
		typeSum = typeSum.Add(budgeted)

		categories, err := s.Categories.ListByType(ctx, categoryType)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s categories: %w", categoryType, err)
		}

		categorySum := decimal.Zero
		for _, category := range categories {
			categorySum = categorySum.Add(category.BudgetAmount)
		}

		if budgeted.Sub(categorySum).Abs().GreaterThan(DriftEpsilon) {
			report.IsValid = false
			report.Errors = append(report.Errors, fmt.Sprintf(
				"%s budget is %s but %s categories sum to %s",
				categoryType, budgeted, categoryType, categorySum))
		}
	}

	if budget.TotalBudget.Sub(typeSum).Abs().GreaterThan(DriftEpsilon) {
		report.IsValid = false
		report.Errors = append(report.Errors, fmt.Sprintf(
			"total budget is %s but per-type budgets sum to %s",
			budget.TotalBudget, typeSum))
	}

	return report, nil
}
