package mutation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/ledger"
)

// effectPlan accumulates the aggregate writes a mutation produces before any
// of them is executed. Effects targeting the same account, category, or
// monthly budget are netted into one entry, so an update that keeps the
// category and account produces a single write per target instead of a
// revert round-trip followed by an apply round-trip.
type effectPlan struct {
	accounts   []*accountEffect
	categories []*categoryEffect
	budgets    []*budgetEffect
}

type accountEffect struct {
	id    uuid.UUID
	delta decimal.Decimal
}

type categoryEffect struct {
	id     uuid.UUID
	spent  decimal.Decimal
	budget decimal.Decimal
}

type budgetEffect struct {
	month        time.Month
	year         int
	categoryType domain.CategoryType
	delta        decimal.Decimal
}

func newEffectPlan() *effectPlan {
	return &effectPlan{}
}

// addTransaction folds the deltas of applying (adding=true) or reverting
// (adding=false) a transaction into the plan. category carries the owning
// category's type for the monthly budget top-up; passing nil skips the
// category and budget effects (used when the category no longer exists).
func (p *effectPlan) addTransaction(tx *domain.Transaction, category *domain.BudgetCategory, adding bool) {
	deltas := ledger.ComputeDeltas(tx, adding)

	if tx.AccountID != nil {
		p.account(*tx.AccountID, deltas.Account)
	}
	if tx.ReceivingAccountID != nil {
		p.account(*tx.ReceivingAccountID, deltas.ReceivingAccount)
	}

	if category == nil {
		return
	}

	p.category(tx.CategoryID, deltas.CategorySpent, deltas.CategoryBudget)

	if !deltas.CategoryBudget.IsZero() {
		p.budget(tx.Date.Month(), tx.Date.Year(), category.Type, deltas.CategoryBudget)
	}
}

func (p *effectPlan) account(id uuid.UUID, delta decimal.Decimal) {
	for _, effect := range p.accounts {
		if effect.id == id {
			effect.delta = effect.delta.Add(delta)
			return
		}
	}
	p.accounts = append(p.accounts, &accountEffect{id: id, delta: delta})
}

func (p *effectPlan) category(id uuid.UUID, spent, budget decimal.Decimal) {
	for _, effect := range p.categories {
		if effect.id == id {
			effect.spent = effect.spent.Add(spent)
			effect.budget = effect.budget.Add(budget)
			return
		}
	}
	p.categories = append(p.categories, &categoryEffect{id: id, spent: spent, budget: budget})
}

func (p *effectPlan) budget(month time.Month, year int, categoryType domain.CategoryType, delta decimal.Decimal) {
	for _, effect := range p.budgets {
		if effect.month == month && effect.year == year && effect.categoryType == categoryType {
			effect.delta = effect.delta.Add(delta)
			return
		}
	}
	p.budgets = append(p.budgets, &budgetEffect{month: month, year: year, categoryType: categoryType, delta: delta})
}
