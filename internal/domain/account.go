package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType represents the type of bank account
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeCash       AccountType = "CASH"
)

// BankAccount represents a money account in the domain layer.
//
// Balance is a CACHED AGGREGATE: it should equal the account's initial
// balance plus every signed delta contributed by transactions and transfers
// where this account appears as source or destination. Like
// BudgetCategory.Spent it is drift-prone and reconcilable.
type BankAccount struct {
	ID       uuid.UUID
	Name     string
	Type     AccountType
	Balance  decimal.Decimal
	Currency string
	IsActive bool
}

// Validate ensures the account adheres to domain rules
// Returns a *ValidationError if validation fails
func (a *BankAccount) Validate() error {
	if a.Name == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}

	switch a.Type {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit,
		AccountTypeInvestment, AccountTypeCash:
	default:
		return &ValidationError{Field: "account_type", Reason: "must be CHECKING, SAVINGS, CREDIT, INVESTMENT, or CASH"}
	}

	if a.Currency == "" {
		return &ValidationError{Field: "currency", Reason: "cannot be empty"}
	}

	return nil
}
