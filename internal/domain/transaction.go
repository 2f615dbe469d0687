package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeSavings TransactionType = "SAVINGS"
)

// Transaction represents a single financial transaction in the domain layer.
//
// Amount is always the ABSOLUTE VALUE; the sign of its effect on an account
// balance is derived from Type (see usecase/ledger).
//
// AccountID is optional: a transaction may be recorded against a category
// only. ReceivingAccountID is the destination of a SAVINGS contribution and
// must be nil for any other type.
type Transaction struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	CategoryID         uuid.UUID
	AccountID          *uuid.UUID
	ReceivingAccountID *uuid.UUID
	Amount             decimal.Decimal
	Type               TransactionType
	Description        string
	Date               time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns a *ValidationError if validation fails
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if t.CategoryID == uuid.Nil {
		return &ValidationError{Field: "category_id", Reason: "is required"}
	}

	switch t.Type {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeSavings:
	default:
		return &ValidationError{Field: "type", Reason: "must be INCOME, EXPENSE, or SAVINGS"}
	}

	// A receiving account only makes sense for a SAVINGS contribution,
	// which moves money from a source account into a destination account.
	if t.ReceivingAccountID != nil && t.Type != TransactionTypeSavings {
		return &ValidationError{Field: "receiving_account_id", Reason: "only allowed for SAVINGS transactions"}
	}

	if t.Type == TransactionTypeSavings && t.ReceivingAccountID != nil && t.AccountID != nil {
		if *t.ReceivingAccountID == *t.AccountID {
			return &ValidationError{Field: "receiving_account_id", Reason: "must differ from source account"}
		}
	}

	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}

	return nil
}

// InvolvesAccount reports whether the given account is the source or the
// destination of this transaction.
func (t *Transaction) InvolvesAccount(accountID uuid.UUID) bool {
	if t.AccountID != nil && *t.AccountID == accountID {
		return true
	}
	if t.ReceivingAccountID != nil && *t.ReceivingAccountID == accountID {
		return true
	}
	return false
}
