// Package ledger contains the pure delta math of the engine: given a
// transaction, it computes the signed changes to apply to account balances,
// category spent totals, and budget ceilings. No I/O happens here.
//
// Reverting a mutation always reuses the same functions with the result
// negated (adding=false), never a separately coded reverse formula. That
// guarantees revert is the exact inverse of apply.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// AccountBalanceChange returns the signed delta a transaction contributes to
// an account balance when applied.
//
// Sign rules:
//   - INCOME:  +amount (the associated account receives the income)
//   - EXPENSE: -amount
//   - SAVINGS: -amount on the source account, +amount on the receiving one
func AccountBalanceChange(tx *domain.Transaction, isSourceAccount bool) decimal.Decimal {
	switch tx.Type {
	case domain.TransactionTypeIncome:
		return tx.Amount
	case domain.TransactionTypeExpense:
		return tx.Amount.Neg()
	case domain.TransactionTypeSavings:
		if isSourceAccount {
			return tx.Amount.Neg()
		}
		return tx.Amount
	}
	return decimal.Zero
}

// CategorySpentChange returns the signed delta a transaction contributes to
// its category's cached spent total.
//
// EXPENSE and SAVINGS both count as spending: a savings contribution is
// money committed away from the free budget. INCOME never affects spent.
func CategorySpentChange(tx *domain.Transaction, adding bool) decimal.Decimal {
	switch tx.Type {
	case domain.TransactionTypeExpense, domain.TransactionTypeSavings:
		if adding {
			return tx.Amount
		}
		return tx.Amount.Neg()
	}
	return decimal.Zero
}

// BudgetAmountChange returns the signed delta a transaction contributes to
// its category's budget ceiling.
//
// Recording INCOME raises the ceiling by the income amount ("a windfall
// increases your allowance"); the same delta also flows into the owning
// monthly budget's totals. This top-up policy is unusual compared to
// fixed-plan budgeting tools and is kept for compatibility with existing
// data. EXPENSE and SAVINGS never move the ceiling.
func BudgetAmountChange(tx *domain.Transaction, adding bool) decimal.Decimal {
	if tx.Type != domain.TransactionTypeIncome {
		return decimal.Zero
	}
	if adding {
		return tx.Amount
	}
	return tx.Amount.Neg()
}

// TransactionDeltas aggregates every signed change a single transaction
// produces. Account and ReceivingAccount are zero when the transaction has
// no account on that side.
type TransactionDeltas struct {
	Account          decimal.Decimal
	ReceivingAccount decimal.Decimal
	CategorySpent    decimal.Decimal
	CategoryBudget   decimal.Decimal
}

// ComputeDeltas computes all deltas for applying (adding=true) or reverting
// (adding=false) a transaction.
func ComputeDeltas(tx *domain.Transaction, adding bool) TransactionDeltas {
	deltas := TransactionDeltas{
		CategorySpent:  CategorySpentChange(tx, adding),
		CategoryBudget: BudgetAmountChange(tx, adding),
	}

	if tx.AccountID != nil {
		deltas.Account = AccountBalanceChange(tx, true)
		if !adding {
			deltas.Account = deltas.Account.Neg()
		}
	}

	if tx.ReceivingAccountID != nil {
		deltas.ReceivingAccount = AccountBalanceChange(tx, false)
		if !adding {
			deltas.ReceivingAccount = deltas.ReceivingAccount.Neg()
		}
	}

	return deltas
}
