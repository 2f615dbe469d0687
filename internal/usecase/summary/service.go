package summary

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// Overview represents the aggregated financial picture shown on the
// dashboard: net worth across accounts and budget usage across categories.
type Overview struct {
	NetWorth       decimal.Decimal
	TotalBudgeted  decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalRemaining decimal.Decimal
	Categories     []CategorySummary
}

// CategorySummary is the per-category slice of the overview.
type CategorySummary struct {
	Category  *domain.BudgetCategory
	Remaining decimal.Decimal
}

// Service computes read-only aggregates over accounts and categories.
type Service struct {
	Categories domain.CategoryRepository
	Accounts   domain.AccountRepository
}

// NewService creates a new summary Service instance
func NewService(categories domain.CategoryRepository, accounts domain.AccountRepository) *Service {
	return &Service{
		Categories: categories,
		Accounts:   accounts,
	}
}

// GetOverview calculates the dashboard overview.
// Logic:
//   - Net worth: sum of all active account balances, with CREDIT accounts
//     subtracting (their balance is owed, not owned)
//   - Budget totals: sums of budgetAmount/spent over active categories
func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	accounts, err := s.Accounts.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	netWorth := decimal.Zero
	for _, account := range accounts {
		if account.Type == domain.AccountTypeCredit {
			netWorth = netWorth.Sub(account.Balance)
		} else {
			netWorth = netWorth.Add(account.Balance)
		}
	}

	categories, err := s.Categories.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	overview := &Overview{
		NetWorth:       netWorth,
		TotalBudgeted:  decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
		Categories:     make([]CategorySummary, 0, len(categories)),
	}

	for _, category := range categories {
		remaining := category.Remaining()
		overview.TotalBudgeted = overview.TotalBudgeted.Add(category.BudgetAmount)
		overview.TotalSpent = overview.TotalSpent.Add(category.Spent)
		overview.TotalRemaining = overview.TotalRemaining.Add(remaining)
		overview.Categories = append(overview.Categories, CategorySummary{
			Category:  category,
			Remaining: remaining,
		})
	}

	return overview, nil
}
