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

// transferRepository implements domain.TransferRepository
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new account transfer repository
func NewTransferRepository(db *DB) domain.TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `id, user_id, from_account_id, to_account_id, amount, description, date`

// Create persists a new account transfer
func (r *transferRepository) Create(ctx context.Context, transfer *domain.AccountTransfer) error {
	query := `
		INSERT INTO account_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		transfer.ID,
		transfer.UserID,
		transfer.FromAccountID,
		transfer.ToAccountID,
		transfer.Amount.String(),
		transfer.Description,
		transfer.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer by its ID
func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccountTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM account_transfers
		WHERE id = $1
	`

	transfer, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "transfer", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get transfer by ID: %w", err)
	}

	return transfer, nil
}

// ListByAccount retrieves all transfers touching an account, oldest first
func (r *transferRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.AccountTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM account_transfers
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers by account: %w", err)
	}
	defer rows.Close()

	var transfers []*domain.AccountTransfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return transfers, nil
}

func scanTransfer(row rowScanner) (*domain.AccountTransfer, error) {
	var transfer domain.AccountTransfer
	var amountStr string

	err := row.Scan(
		&transfer.ID,
		&transfer.UserID,
		&transfer.FromAccountID,
		&transfer.ToAccountID,
		&amountStr,
		&transfer.Description,
		&transfer.Date,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	transfer.Amount = amount

	return &transfer, nil
}
