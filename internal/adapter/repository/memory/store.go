// Package memory provides an in-process implementation of the repository
// interfaces. It backs scenario tests and the server's demo mode; data is
// lost on restart.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

// Store holds every aggregate in mutex-guarded maps. All repositories
// returned by a Store share its data and its lock, and hand out copies so
// callers can never alias stored rows. Aggregate delta methods mutate under
// the lock, mirroring the atomic-increment contract of the SQL adapter.
type Store struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	categories   map[uuid.UUID]*domain.BudgetCategory
	accounts     map[uuid.UUID]*domain.BankAccount
	budgets      map[uuid.UUID]*domain.MonthlyBudget
	transfers    map[uuid.UUID]*domain.AccountTransfer
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		categories:   make(map[uuid.UUID]*domain.BudgetCategory),
		accounts:     make(map[uuid.UUID]*domain.BankAccount),
		budgets:      make(map[uuid.UUID]*domain.MonthlyBudget),
		transfers:    make(map[uuid.UUID]*domain.AccountTransfer),
	}
}

// Transactions returns the transaction repository view of the store.
func (s *Store) Transactions() domain.TransactionRepository { return &transactionRepo{s} }

// Categories returns the category repository view of the store.
func (s *Store) Categories() domain.CategoryRepository { return &categoryRepo{s} }

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() domain.AccountRepository { return &accountRepo{s} }

// Budgets returns the monthly budget repository view of the store.
func (s *Store) Budgets() domain.BudgetRepository { return &budgetRepo{s} }

// Transfers returns the transfer repository view of the store.
func (s *Store) Transfers() domain.TransferRepository { return &transferRepo{s} }

func notFound(entity string, id uuid.UUID) error {
	return &domain.NotFoundError{Entity: entity, ID: id.String()}
}

func copyTransaction(tx *domain.Transaction) *domain.Transaction {
	c := *tx
	if tx.AccountID != nil {
		accountID := *tx.AccountID
		c.AccountID = &accountID
	}
	if tx.ReceivingAccountID != nil {
		receivingID := *tx.ReceivingAccountID
		c.ReceivingAccountID = &receivingID
	}
	return &c
}
