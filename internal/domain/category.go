package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryType represents the budgeting type of a category
type CategoryType string

const (
	CategoryTypeFixed    CategoryType = "FIXED"
	CategoryTypeVariable CategoryType = "VARIABLE"
	CategoryTypeSavings  CategoryType = "SAVINGS"
)

// BudgetCategory represents a named spending bucket with a budget ceiling.
//
// Spent is a CACHED AGGREGATE: it should equal the sum of all EXPENSE and
// SAVINGS transaction amounts referencing this category. It is updated
// incrementally on every mutation and can drift; usecase/reconcile recomputes
// it from the transaction history.
type BudgetCategory struct {
	ID           uuid.UUID
	Name         string
	Type         CategoryType
	BudgetAmount decimal.Decimal
	Spent        decimal.Decimal
	Color        string
	IsActive     bool
}

// Validate ensures the category adheres to domain rules
// Returns a *ValidationError if validation fails
func (c *BudgetCategory) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}

	switch c.Type {
	case CategoryTypeFixed, CategoryTypeVariable, CategoryTypeSavings:
	default:
		return &ValidationError{Field: "type", Reason: "must be FIXED, VARIABLE, or SAVINGS"}
	}

	if c.BudgetAmount.IsNegative() {
		return &ValidationError{Field: "budget_amount", Reason: "cannot be negative"}
	}

	return nil
}

// Remaining returns the free budget of the category (ceiling minus spent).
// May be negative when the category is overspent.
func (c *BudgetCategory) Remaining() decimal.Decimal {
	return c.BudgetAmount.Sub(c.Spent)
}
