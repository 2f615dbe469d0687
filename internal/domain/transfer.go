package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountTransfer represents a balance-neutral movement of funds between two
// accounts. Transfers never touch categories or budgets: at the net-worth
// level no money enters or leaves the system.
type AccountTransfer struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
}

// Validate ensures the transfer adheres to domain rules
// Returns a *ValidationError if validation fails
func (t *AccountTransfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if t.FromAccountID == uuid.Nil {
		return &ValidationError{Field: "from_account_id", Reason: "is required"}
	}

	if t.ToAccountID == uuid.Nil {
		return &ValidationError{Field: "to_account_id", Reason: "is required"}
	}

	if t.FromAccountID == t.ToAccountID {
		return &ValidationError{Field: "to_account_id", Reason: "must differ from source account"}
	}

	return nil
}

// BalanceChange returns the signed delta this transfer contributes to the
// given account, or zero when the account is not involved.
func (t *AccountTransfer) BalanceChange(accountID uuid.UUID) decimal.Decimal {
	switch accountID {
	case t.FromAccountID:
		return t.Amount.Neg()
	case t.ToAccountID:
		return t.Amount
	}
	return decimal.Zero
}
