package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// budgetRepository implements domain.BudgetRepository
type budgetRepository struct {
	db *DB
}

// NewBudgetRepository creates a new monthly budget repository
func NewBudgetRepository(db *DB) domain.BudgetRepository {
	return &budgetRepository{db: db}
}

const budgetColumns = `id, month, year, total_budget, fixed_budget, variable_budget, savings_budget`

// Create persists a new monthly budget
func (r *budgetRepository) Create(ctx context.Context, budget *domain.MonthlyBudget) error {
	query := `
		INSERT INTO monthly_budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		budget.ID,
		int(budget.Month),
		budget.Year,
		budget.TotalBudget.String(),
		budget.FixedBudget.String(),
		budget.VariableBudget.String(),
		budget.SavingsBudget.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create monthly budget: %w", err)
	}

	return nil
}

// GetByID retrieves a budget by its ID
func (r *budgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyBudget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM monthly_budgets
		WHERE id = $1
	`

	budget, err := scanBudget(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "budget", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get budget by ID: %w", err)
	}

	return budget, nil
}

// GetByMonth retrieves the budget row for a calendar month
func (r *budgetRepository) GetByMonth(ctx context.Context, month time.Month, year int) (*domain.MonthlyBudget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM monthly_budgets
		WHERE month = $1 AND year = $2
	`

	budget, err := scanBudget(r.db.QueryRowContext(ctx, query, int(month), year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "budget", ID: fmt.Sprintf("%s %d", month, year)}
		}
		return nil, fmt.Errorf("failed to get budget by month: %w", err)
	}

	return budget, nil
}

// ApplyBudgetDelta atomically increments total_budget and the per-type
// budget column matching categoryType.
func (r *budgetRepository) ApplyBudgetDelta(ctx context.Context, id uuid.UUID, categoryType domain.CategoryType, delta decimal.Decimal) error {
	var column string
	switch categoryType {
	case domain.CategoryTypeFixed:
		column = "fixed_budget"
	case domain.CategoryTypeVariable:
		column = "variable_budget"
	case domain.CategoryTypeSavings:
		column = "savings_budget"
	default:
		return &domain.ValidationError{Field: "category_type", Reason: "unknown category type"}
	}

	// column comes from the switch above, never from input
	query := fmt.Sprintf(`
		UPDATE monthly_budgets
		SET total_budget = total_budget + $2, %s = %s + $2
		WHERE id = $1
	`, column, column)

	result, err := r.db.ExecContext(ctx, query, id, delta.String())
	if err != nil {
		return fmt.Errorf("failed to apply budget delta: %w", err)
	}

	return requireRowAffected(result, "budget", id)
}

func scanBudget(row rowScanner) (*domain.MonthlyBudget, error) {
	var budget domain.MonthlyBudget
	var month int
	var totalStr, fixedStr, variableStr, savingsStr string

	err := row.Scan(
		&budget.ID,
		&month,
		&budget.Year,
		&totalStr,
		&fixedStr,
		&variableStr,
		&savingsStr,
	)
	if err != nil {
		return nil, err
	}

	budget.Month = time.Month(month)

	for _, field := range []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"total_budget", totalStr, &budget.TotalBudget},
		{"fixed_budget", fixedStr, &budget.FixedBudget},
		{"variable_budget", variableStr, &budget.VariableBudget},
		{"savings_budget", savingsStr, &budget.SavingsBudget},
	} {
		value, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", field.name, err)
		}
		*field.dst = value
	}

	return &budget, nil
}
