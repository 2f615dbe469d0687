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

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, category_id, account_id, receiving_account_id, amount, type, description, date`

// Create persists a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.CategoryID,
		nullableUUID(tx.AccountID),
		nullableUUID(tx.ReceivingAccountID),
		tx.Amount.String(),
		string(tx.Type),
		tx.Description,
		tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "transaction", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}

	return tx, nil
}

// Update replaces all fields of an existing transaction
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $2, account_id = $3, receiving_account_id = $4,
		    amount = $5, type = $6, description = $7, date = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.CategoryID,
		nullableUUID(tx.AccountID),
		nullableUUID(tx.ReceivingAccountID),
		tx.Amount.String(),
		string(tx.Type),
		tx.Description,
		tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireRowAffected(result, "transaction", tx.ID)
}

// Delete removes a transaction row
func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return requireRowAffected(result, "transaction", id)
}

// ListByCategory retrieves every transaction referencing the category
func (r *transactionRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE category_id = $1
		ORDER BY date ASC
	`

	return r.list(ctx, query, categoryID)
}

// ListByAccount retrieves every transaction where the account is the source
// or the receiving account
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 OR receiving_account_id = $1
		ORDER BY date ASC
	`

	return r.list(ctx, query, accountID)
}

func (r *transactionRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var accountID, receivingID sql.NullString
	var amountStr, typeStr string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.CategoryID,
		&accountID,
		&receivingID,
		&amountStr,
		&typeStr,
		&tx.Description,
		&tx.Date,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = domain.TransactionType(typeStr)

	if accountID.Valid {
		parsed, err := uuid.Parse(accountID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse account_id: %w", err)
		}
		tx.AccountID = &parsed
	}
	if receivingID.Valid {
		parsed, err := uuid.Parse(receivingID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse receiving_account_id: %w", err)
		}
		tx.ReceivingAccountID = &parsed
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	tx.Amount = amount

	return &tx, nil
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func requireRowAffected(result sql.Result, entity string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id.String()}
	}
	return nil
}
