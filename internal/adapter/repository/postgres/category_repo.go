package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, type, budget_amount, spent, color, is_active`

// Create persists a new category
func (r *categoryRepository) Create(ctx context.Context, category *domain.BudgetCategory) error {
	query := `
		INSERT INTO budget_categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		string(category.Type),
		category.BudgetAmount.String(),
		category.Spent.String(),
		category.Color,
		category.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BudgetCategory, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM budget_categories
		WHERE id = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "category", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}

	return category, nil
}

// List retrieves all categories, optionally only active ones
func (r *categoryRepository) List(ctx context.Context, onlyActive bool) ([]*domain.BudgetCategory, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM budget_categories
		WHERE ($1 = false OR is_active = true)
		ORDER BY name ASC
	`

	return r.list(ctx, query, onlyActive)
}

// ListByType retrieves all active categories of the given type
func (r *categoryRepository) ListByType(ctx context.Context, categoryType domain.CategoryType) ([]*domain.BudgetCategory, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM budget_categories
		WHERE type = $1 AND is_active = true
		ORDER BY name ASC
	`

	return r.list(ctx, query, string(categoryType))
}

// ApplyAggregateDeltas atomically increments the cached spent and
// budget_amount fields. The increment happens inside the database so two
// racing mutations cannot lose each other's delta.
func (r *categoryRepository) ApplyAggregateDeltas(ctx context.Context, id uuid.UUID, spentDelta, budgetDelta decimal.Decimal) error {
	query := `
		UPDATE budget_categories
		SET spent = spent + $2, budget_amount = budget_amount + $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, spentDelta.String(), budgetDelta.String())
	if err != nil {
		return fmt.Errorf("failed to apply category deltas: %w", err)
	}

	return requireRowAffected(result, "category", id)
}

// SetSpent overwrites the cached spent value (reconciliation repair path)
func (r *categoryRepository) SetSpent(ctx context.Context, id uuid.UUID, spent decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE budget_categories SET spent = $2 WHERE id = $1`,
		id, spent.String())
	if err != nil {
		return fmt.Errorf("failed to set category spent: %w", err)
	}

	return requireRowAffected(result, "category", id)
}

// Deactivate soft-deletes a category
func (r *categoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE budget_categories SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}

	return requireRowAffected(result, "category", id)
}

func (r *categoryRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.BudgetCategory, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

func scanCategory(row rowScanner) (*domain.BudgetCategory, error) {
	var category domain.BudgetCategory
	var typeStr, budgetStr, spentStr string

	err := row.Scan(
		&category.ID,
		&category.Name,
		&typeStr,
		&budgetStr,
		&spentStr,
		&category.Color,
		&category.IsActive,
	)
	if err != nil {
		return nil, err
	}

	category.Type = domain.CategoryType(typeStr)

	budget, err := decimal.NewFromString(budgetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget_amount: %w", err)
	}
	category.BudgetAmount = budget

	spent, err := decimal.NewFromString(spentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spent: %w", err)
	}
	category.Spent = spent

	return &category, nil
}
