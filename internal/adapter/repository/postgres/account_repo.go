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

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, name, account_type, balance, currency, is_active`

// Create persists a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		string(account.Type),
		account.Balance.String(),
		account.Currency,
		account.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE id = $1
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "account", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return account, nil
}

// List retrieves all accounts, optionally only active ones
func (r *accountRepository) List(ctx context.Context, onlyActive bool) ([]*domain.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE ($1 = false OR is_active = true)
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.BankAccount, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// ApplyBalanceDelta atomically increments the cached balance inside the
// database, never read-modify-write.
func (r *accountRepository) ApplyBalanceDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = balance + $2 WHERE id = $1`,
		id, delta.String())
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	return requireRowAffected(result, "account", id)
}

// SetBalance overwrites the cached balance (reconciliation repair path)
func (r *accountRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = $2 WHERE id = $1`,
		id, balance.String())
	if err != nil {
		return fmt.Errorf("failed to set account balance: %w", err)
	}

	return requireRowAffected(result, "account", id)
}

// Deactivate soft-deletes an account
func (r *accountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	return requireRowAffected(result, "account", id)
}

func scanAccount(row rowScanner) (*domain.BankAccount, error) {
	var account domain.BankAccount
	var typeStr, balanceStr string

	err := row.Scan(
		&account.ID,
		&account.Name,
		&typeStr,
		&balanceStr,
		&account.Currency,
		&account.IsActive,
	)
	if err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(typeStr)

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	account.Balance = balance

	return &account, nil
}
