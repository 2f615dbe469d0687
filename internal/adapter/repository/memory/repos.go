package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

type transactionRepo struct{ store *Store }

func (r *transactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.transactions[tx.ID] = copyTransaction(tx)
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil, notFound("transaction", id)
	}
	return copyTransaction(tx), nil
}

func (r *transactionRepo) Update(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transactions[tx.ID]; !ok {
		return notFound("transaction", tx.ID)
	}
	r.store.transactions[tx.ID] = copyTransaction(tx)
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	delete(r.store.transactions, id)
	return nil
}

func (r *transactionRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, tx := range r.store.transactions {
		if tx.CategoryID == categoryID {
			out = append(out, copyTransaction(tx))
		}
	}
	sortTransactions(out)
	return out, nil
}

func (r *transactionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, tx := range r.store.transactions {
		if tx.InvolvesAccount(accountID) {
			out = append(out, copyTransaction(tx))
		}
	}
	sortTransactions(out)
	return out, nil
}

func sortTransactions(transactions []*domain.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})
}

type categoryRepo struct{ store *Store }

func (r *categoryRepo) Create(ctx context.Context, category *domain.BudgetCategory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *category
	r.store.categories[category.ID] = &c
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BudgetCategory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	category, ok := r.store.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	c := *category
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, onlyActive bool) ([]*domain.BudgetCategory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.BudgetCategory, 0)
	for _, category := range r.store.categories {
		if onlyActive && !category.IsActive {
			continue
		}
		c := *category
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) ListByType(ctx context.Context, categoryType domain.CategoryType) ([]*domain.BudgetCategory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.BudgetCategory, 0)
	for _, category := range r.store.categories {
		if category.IsActive && category.Type == categoryType {
			c := *category
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) ApplyAggregateDeltas(ctx context.Context, id uuid.UUID, spentDelta, budgetDelta decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	category, ok := r.store.categories[id]
	if !ok {
		return notFound("category", id)
	}
	category.Spent = category.Spent.Add(spentDelta)
	category.BudgetAmount = category.BudgetAmount.Add(budgetDelta)
	return nil
}

func (r *categoryRepo) SetSpent(ctx context.Context, id uuid.UUID, spent decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	category, ok := r.store.categories[id]
	if !ok {
		return notFound("category", id)
	}
	category.Spent = spent
	return nil
}

func (r *categoryRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	category, ok := r.store.categories[id]
	if !ok {
		return notFound("category", id)
	}
	category.IsActive = false
	return nil
}

type accountRepo struct{ store *Store }

func (r *accountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a := *account
	r.store.accounts[account.ID] = &a
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	a := *account
	return &a, nil
}

func (r *accountRepo) List(ctx context.Context, onlyActive bool) ([]*domain.BankAccount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.BankAccount, 0)
	for _, account := range r.store.accounts {
		if onlyActive && !account.IsActive {
			continue
		}
		a := *account
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *accountRepo) ApplyBalanceDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	account.Balance = account.Balance.Add(delta)
	return nil
}

func (r *accountRepo) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	account.Balance = balance
	return nil
}

func (r *accountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	account.IsActive = false
	return nil
}

type budgetRepo struct{ store *Store }

func (r *budgetRepo) Create(ctx context.Context, budget *domain.MonthlyBudget) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b := *budget
	r.store.budgets[budget.ID] = &b
	return nil
}

func (r *budgetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyBudget, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	budget, ok := r.store.budgets[id]
	if !ok {
		return nil, notFound("budget", id)
	}
	b := *budget
	return &b, nil
}

func (r *budgetRepo) GetByMonth(ctx context.Context, month time.Month, year int) (*domain.MonthlyBudget, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, budget := range r.store.budgets {
		if budget.Month == month && budget.Year == year {
			b := *budget
			return &b, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "budget", ID: fmt.Sprintf("%s %d", month, year)}
}

func (r *budgetRepo) ApplyBudgetDelta(ctx context.Context, id uuid.UUID, categoryType domain.CategoryType, delta decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	budget, ok := r.store.budgets[id]
	if !ok {
		return notFound("budget", id)
	}
	budget.TotalBudget = budget.TotalBudget.Add(delta)
	switch categoryType {
	case domain.CategoryTypeFixed:
		budget.FixedBudget = budget.FixedBudget.Add(delta)
	case domain.CategoryTypeVariable:
		budget.VariableBudget = budget.VariableBudget.Add(delta)
	case domain.CategoryTypeSavings:
		budget.SavingsBudget = budget.SavingsBudget.Add(delta)
	}
	return nil
}

type transferRepo struct{ store *Store }

func (r *transferRepo) Create(ctx context.Context, transfer *domain.AccountTransfer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := *transfer
	r.store.transfers[transfer.ID] = &t
	return nil
}

func (r *transferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccountTransfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	transfer, ok := r.store.transfers[id]
	if !ok {
		return nil, notFound("transfer", id)
	}
	t := *transfer
	return &t, nil
}

func (r *transferRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.AccountTransfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.AccountTransfer, 0)
	for _, transfer := range r.store.transfers {
		if transfer.FromAccountID == accountID || transfer.ToAccountID == accountID {
			t := *transfer
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
