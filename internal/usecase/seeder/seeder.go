package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// Fixed UUIDs for the starter categories so seeding stays idempotent across
// restarts and environments.
var (
	SeedCategoryRent      = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	SeedCategoryGroceries = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	SeedCategoryEmergency = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// Seeder bootstraps the data a fresh installation needs: a starter set of
// categories and the budget row for the current month.
type Seeder struct {
	Categories domain.CategoryRepository
	Budgets    domain.BudgetRepository
	Now        func() time.Time
}

// NewSeeder creates a new Seeder instance
func NewSeeder(categories domain.CategoryRepository, budgets domain.BudgetRepository) *Seeder {
	return &Seeder{
		Categories: categories,
		Budgets:    budgets,
		Now:        time.Now,
	}
}

// Seed ensures the starter categories and the current month's budget row
// exist. Existing rows are left untouched, so running Seed on every startup
// is safe.
func (s *Seeder) Seed(ctx context.Context) error {
	starters := []*domain.BudgetCategory{
		{
			ID:       SeedCategoryRent,
			Name:     "Rent",
			Type:     domain.CategoryTypeFixed,
			Color:    "#e57373",
			IsActive: true,
		},
		{
			ID:       SeedCategoryGroceries,
			Name:     "Groceries",
			Type:     domain.CategoryTypeVariable,
			Color:    "#4caf50",
			IsActive: true,
		},
		{
			ID:       SeedCategoryEmergency,
			Name:     "Emergency Fund",
			Type:     domain.CategoryTypeSavings,
			Color:    "#64b5f6",
			IsActive: true,
		},
	}

	for _, category := range starters {
		_, err := s.Categories.GetByID(ctx, category.ID)
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			return err
		}

		category.BudgetAmount = decimal.Zero
		category.Spent = decimal.Zero
		if err := category.Validate(); err != nil {
			return err
		}
		if err := s.Categories.Create(ctx, category); err != nil {
			return err
		}
	}

	return s.ensureCurrentBudget(ctx)
}

func (s *Seeder) ensureCurrentBudget(ctx context.Context) error {
	now := s.Now()
	_, err := s.Budgets.GetByMonth(ctx, now.Month(), now.Year())
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	budget := &domain.MonthlyBudget{
		ID:             uuid.New(),
		Month:          now.Month(),
		Year:           now.Year(),
		TotalBudget:    decimal.Zero,
		FixedBudget:    decimal.Zero,
		VariableBudget: decimal.Zero,
		SavingsBudget:  decimal.Zero,
	}
	if err := budget.Validate(); err != nil {
		return err
	}
	return s.Budgets.Create(ctx, budget)
}
