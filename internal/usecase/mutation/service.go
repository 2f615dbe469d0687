// Package mutation orchestrates financial mutations: it persists
// transaction and transfer rows and propagates their deltas into the cached
// aggregates (account balances, category spent totals, monthly budgets).
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/auth"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// Service applies mutations against the persistence layer in a fixed order:
// transaction row first, then account(s), then category, then monthly
// budget. The row is written first on purpose: if a later aggregate write
// fails, the transaction history still describes what the ledger should
// reflect and a reconciliation pass repairs the caches. Such failures are
// surfaced as *domain.PartialMutationError.
type Service struct {
	Transactions domain.TransactionRepository
	Categories   domain.CategoryRepository
	Accounts     domain.AccountRepository
	Budgets      domain.BudgetRepository
	Transfers    domain.TransferRepository
	Log          zerolog.Logger
}

// NewService creates a new mutation Service instance
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

// AddTransactionInput represents the input for recording a transaction
type AddTransactionInput struct {
	Amount             decimal.Decimal
	Type               domain.TransactionType
	CategoryID         uuid.UUID
	AccountID          *uuid.UUID
	ReceivingAccountID *uuid.UUID
	Description        string
	Date               time.Time // zero value means "now"
}

// TransactionPatch represents a partial update to a transaction.
// Nil fields are left unchanged. Patching Type to a non-SAVINGS type clears
// the receiving account, since it is only meaningful for savings.
type TransactionPatch struct {
	Amount             *decimal.Decimal
	Type               *domain.TransactionType
	CategoryID         *uuid.UUID
	AccountID          *uuid.UUID
	ReceivingAccountID *uuid.UUID
	Description        *string
	Date               *time.Time
}

// TransferInput represents the input for a transfer between two accounts
type TransferInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string
	Date          time.Time // zero value means "now"
}

// AddTransaction records a new transaction and applies its deltas.
// Logic:
//  1. Validate input and resolve references (category and accounts must
//     exist and be active); any failure here aborts before the first write
//  2. Persist the transaction row
//  3. Apply account balance delta(s)
//  4. Apply category spent/budget deltas
//  5. If the budget ceiling moved, top up the owning monthly budget
func (s *Service) AddTransaction(ctx context.Context, input AddTransactionInput) (*domain.Transaction, error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	tx := &domain.Transaction{
		ID:                 uuid.New(),
		UserID:             userID,
		CategoryID:         input.CategoryID,
		AccountID:          input.AccountID,
		ReceivingAccountID: input.ReceivingAccountID,
		Amount:             input.Amount,
		Type:               input.Type,
		Description:        input.Description,
		Date:               date,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, tx.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveAccounts(ctx, tx); err != nil {
		return nil, err
	}

	if err := s.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	plan := newEffectPlan()
	plan.addTransaction(tx, category, true)
	if err := s.execute(ctx, "add_transaction", plan); err != nil {
		return nil, err
	}

	return tx, nil
}

// UpdateTransaction applies a partial update to an existing transaction.
//
// The stored row is the source of truth: its old effects are reverted using
// the old field values and the merged (old+patch) effects are applied using
// the new ones. Effects targeting the same account or category are netted
// into a single write; when the category or account changes, the revert and
// the apply hit their targets independently.
func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, patch TransactionPatch) (*domain.Transaction, error) {
	if _, err := auth.CurrentUserID(ctx); err != nil {
		return nil, err
	}

	old, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := mergePatch(old, patch)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	oldCategory, err := s.Categories.GetByID(ctx, old.CategoryID)
	if err != nil {
		return nil, err
	}

	newCategory := oldCategory
	if merged.CategoryID != old.CategoryID {
		newCategory, err = s.resolveCategory(ctx, merged.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	if err := s.resolveAccounts(ctx, merged); err != nil {
		return nil, err
	}

	if err := s.Transactions.Update(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	plan := newEffectPlan()
	plan.addTransaction(old, oldCategory, false)
	plan.addTransaction(merged, newCategory, true)
	if err := s.execute(ctx, "update_transaction", plan); err != nil {
		return nil, err
	}

	return merged, nil
}

// DeleteTransaction removes a transaction and reverts all its effects using
// the stored field values. The row is deleted first so the remaining history
// stays authoritative if a later aggregate revert fails.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.CurrentUserID(ctx); err != nil {
		return err
	}

	tx, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// The owning category may already be gone; its aggregates died with it,
	// so only the account side is reverted then.
	category, err := s.Categories.GetByID(ctx, tx.CategoryID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return err
		}
		s.Log.Warn().
			Str("transaction_id", tx.ID.String()).
			Str("category_id", tx.CategoryID.String()).
			Msg("deleting transaction whose category no longer exists")
		category = nil
	}

	if err := s.Transactions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	plan := newEffectPlan()
	plan.addTransaction(tx, category, false)
	return s.execute(ctx, "delete_transaction", plan)
}

// Transfer moves money between two accounts. Transfers are balance-neutral:
// they persist an AccountTransfer row and adjust both balances, but never
// touch categories or budgets.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (*domain.AccountTransfer, error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transfer := &domain.AccountTransfer{
		ID:            uuid.New(),
		UserID:        userID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Description:   input.Description,
		Date:          date,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireActiveAccount(ctx, transfer.FromAccountID, "from_account_id"); err != nil {
		return nil, err
	}
	if err := s.requireActiveAccount(ctx, transfer.ToAccountID, "to_account_id"); err != nil {
		return nil, err
	}

	if err := s.Transfers.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to persist transfer: %w", err)
	}

	if err := s.Accounts.ApplyBalanceDelta(ctx, transfer.FromAccountID, transfer.Amount.Neg()); err != nil {
		return nil, s.partial("transfer", "account", err)
	}
	if err := s.Accounts.ApplyBalanceDelta(ctx, transfer.ToAccountID, transfer.Amount); err != nil {
		return nil, s.partial("transfer", "account", err)
	}

	return transfer, nil
}

// resolveCategory loads a category and checks it is active.
func (s *Service) resolveCategory(ctx context.Context, id uuid.UUID) (*domain.BudgetCategory, error) {
	category, err := s.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, &domain.ValidationError{Field: "category_id", Reason: "category is not active"}
	}
	return category, nil
}

// resolveAccounts checks that the transaction's account references exist and
// are active.
func (s *Service) resolveAccounts(ctx context.Context, tx *domain.Transaction) error {
	if tx.AccountID != nil {
		if err := s.requireActiveAccount(ctx, *tx.AccountID, "account_id"); err != nil {
			return err
		}
	}
	if tx.ReceivingAccountID != nil {
		if err := s.requireActiveAccount(ctx, *tx.ReceivingAccountID, "receiving_account_id"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) requireActiveAccount(ctx context.Context, id uuid.UUID, field string) error {
	account, err := s.Accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return &domain.ValidationError{Field: field, Reason: "account is not active"}
	}
	return nil
}

// execute applies a planned set of effects in the fixed write order:
// accounts, then categories, then monthly budgets. The first failing step
// turns into a PartialMutationError naming the step.
func (s *Service) execute(ctx context.Context, op string, plan *effectPlan) error {
	for _, effect := range plan.accounts {
		if effect.delta.IsZero() {
			continue
		}
		if err := s.Accounts.ApplyBalanceDelta(ctx, effect.id, effect.delta); err != nil {
			return s.partial(op, "account", err)
		}
	}

	for _, effect := range plan.categories {
		if effect.spent.IsZero() && effect.budget.IsZero() {
			continue
		}
		if err := s.Categories.ApplyAggregateDeltas(ctx, effect.id, effect.spent, effect.budget); err != nil {
			return s.partial(op, "category", err)
		}
	}

	for _, effect := range plan.budgets {
		if effect.delta.IsZero() {
			continue
		}
		budget, err := s.Budgets.GetByMonth(ctx, effect.month, effect.year)
		if err != nil {
			// No budget row for that month: the top-up is skipped rather
			// than invented. ValidateBudgetConsistency reports the gap.
			if domain.IsNotFound(err) {
				s.Log.Debug().
					Int("month", int(effect.month)).
					Int("year", effect.year).
					Msg("no monthly budget for transaction month, skipping top-up")
				continue
			}
			return s.partial(op, "budget", err)
		}
		if err := s.Budgets.ApplyBudgetDelta(ctx, budget.ID, effect.categoryType, effect.delta); err != nil {
			return s.partial(op, "budget", err)
		}
	}

	return nil
}

func (s *Service) partial(op, step string, err error) error {
	s.Log.Error().
		Err(err).
		Str("op", op).
		Str("step", step).
		Msg("mutation partially applied, reconciliation recommended")
	return &domain.PartialMutationError{Op: op, Step: step, Err: err}
}

// mergePatch returns a copy of old with the patch fields applied.
func mergePatch(old *domain.Transaction, patch TransactionPatch) *domain.Transaction {
	merged := *old

	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
		if merged.Type != domain.TransactionTypeSavings {
			merged.ReceivingAccountID = nil
		}
	}
	if patch.CategoryID != nil {
		merged.CategoryID = *patch.CategoryID
	}
	if patch.AccountID != nil {
		merged.AccountID = patch.AccountID
	}
	if patch.ReceivingAccountID != nil {
		merged.ReceivingAccountID = patch.ReceivingAccountID
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}

	return &merged
}
