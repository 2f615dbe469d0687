package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyBudget represents the budget plan for one calendar month.
//
// The per-type fields are soft aggregates: TotalBudget should roughly equal
// FixedBudget + VariableBudget + SavingsBudget, and each per-type field
// should roughly equal the sum of BudgetAmount over categories of that type.
// These rules are checked by reconcile.ValidateBudgetConsistency, never
// enforced transactionally.
type MonthlyBudget struct {
	ID             uuid.UUID
	Month          time.Month
	Year           int
	TotalBudget    decimal.Decimal
	FixedBudget    decimal.Decimal
	VariableBudget decimal.Decimal
	SavingsBudget  decimal.Decimal
}

// Validate ensures the budget adheres to domain rules
// Returns a *ValidationError if validation fails
func (b *MonthlyBudget) Validate() error {
	if b.Month < time.January || b.Month > time.December {
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}

	if b.Year < 1970 {
		return &ValidationError{Field: "year", Reason: "must be 1970 or later"}
	}

	return nil
}

// BudgetForType returns the budget total for the given category type.
func (b *MonthlyBudget) BudgetForType(categoryType CategoryType) decimal.Decimal {
	switch categoryType {
	case CategoryTypeFixed:
		return b.FixedBudget
	case CategoryTypeVariable:
		return b.VariableBudget
	case CategoryTypeSavings:
		return b.SavingsBudget
	}
	return decimal.Zero
}
