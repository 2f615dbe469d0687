package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/mutation"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/reconcile"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/summary"
)

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD date. Empty means "now",
// which the services resolve themselves.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// TransactionsHandler handles transaction mutation endpoints.
type TransactionsHandler struct {
	mutations *mutation.Service
	log       zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(mutations *mutation.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{mutations: mutations, log: log}
}

type createTransactionRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	Type               string          `json:"type"`
	CategoryID         uuid.UUID       `json:"category_id"`
	AccountID          *uuid.UUID      `json:"account_id,omitempty"`
	ReceivingAccountID *uuid.UUID      `json:"receiving_account_id,omitempty"`
	Description        string          `json:"description"`
	Date               string          `json:"date,omitempty"`
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	tx, err := h.mutations.AddTransaction(r.Context(), mutation.AddTransactionInput{
		Amount:             req.Amount,
		Type:               domain.TransactionType(req.Type),
		CategoryID:         req.CategoryID,
		AccountID:          req.AccountID,
		ReceivingAccountID: req.ReceivingAccountID,
		Description:        req.Description,
		Date:               date,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add transaction")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, tx)
}

type patchTransactionRequest struct {
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Type               *string          `json:"type,omitempty"`
	CategoryID         *uuid.UUID       `json:"category_id,omitempty"`
	AccountID          *uuid.UUID       `json:"account_id,omitempty"`
	ReceivingAccountID *uuid.UUID       `json:"receiving_account_id,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Date               *string          `json:"date,omitempty"`
}

// Update handles PATCH /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req patchTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := mutation.TransactionPatch{
		Amount:             req.Amount,
		CategoryID:         req.CategoryID,
		AccountID:          req.AccountID,
		ReceivingAccountID: req.ReceivingAccountID,
		Description:        req.Description,
	}
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		patch.Type = &txType
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}

	tx, err := h.mutations.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", idStr).Msg("Failed to update transaction")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	if err := h.mutations.DeleteTransaction(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("transaction_id", idStr).Msg("Failed to delete transaction")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createTransferRequest struct {
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          string          `json:"date,omitempty"`
}

// Transfer handles POST /api/transfers
func (h *TransactionsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	transfer, err := h.mutations.Transfer(r.Context(), mutation.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Date:          date,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to transfer")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, transfer)
}

// ReconcileHandler handles reconciliation and consistency endpoints.
type ReconcileHandler struct {
	reconciler *reconcile.Service
	log        zerolog.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(reconciler *reconcile.Service, log zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler, log: log}
}

// RepairCategory handles POST /api/reconcile/categories/{id}
func (h *ReconcileHandler) RepairCategory(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	result, err := h.reconciler.RepairCategory(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("category_id", idStr).Msg("Failed to reconcile category")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type repairAccountRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// RepairAccount handles POST /api/reconcile/accounts/{id}
func (h *ReconcileHandler) RepairAccount(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var req repairAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.reconciler.RepairAccount(r.Context(), id, req.InitialBalance)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", idStr).Msg("Failed to reconcile account")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// BudgetConsistency handles GET /api/budgets/{id}/consistency
func (h *ReconcileHandler) BudgetConsistency(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid budget ID")
		return
	}

	report, err := h.reconciler.ValidateBudgetConsistency(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("budget_id", idStr).Msg("Failed to validate budget")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// SummaryHandler handles the dashboard overview endpoint.
type SummaryHandler struct {
	summaries *summary.Service
	log       zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(summaries *summary.Service, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, log: log}
}

// GetOverview handles GET /api/summary
func (h *SummaryHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.summaries.GetOverview(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build overview")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, overview)
}

// CategoriesHandler handles category management endpoints.
type CategoriesHandler struct {
	repo domain.CategoryRepository
	log  zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(repo domain.CategoryRepository, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{repo: repo, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("include_inactive") != "true"

	categories, err := h.repo.List(r.Context(), onlyActive)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

type createCategoryRequest struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	Color        string          `json:"color"`
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := &domain.BudgetCategory{
		ID:           uuid.New(),
		Name:         req.Name,
		Type:         domain.CategoryType(req.Type),
		BudgetAmount: req.BudgetAmount,
		Spent:        decimal.Zero,
		Color:        req.Color,
		IsActive:     true,
	}
	if err := category.Validate(); err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), category); err != nil {
		h.log.Error().Err(err).Msg("Failed to create category")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, category)
}

// Deactivate handles DELETE /api/categories/{id}. Categories are never
// hard-deleted, their transaction history must stay replayable.
func (h *CategoriesHandler) Deactivate(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("category_id", idStr).Msg("Failed to deactivate category")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// AccountsHandler handles bank account management endpoints.
type AccountsHandler struct {
	repo domain.AccountRepository
	log  zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(repo domain.AccountRepository, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{repo: repo, log: log}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("include_inactive") != "true"

	accounts, err := h.repo.List(r.Context(), onlyActive)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

type createAccountRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account := &domain.BankAccount{
		ID:       uuid.New(),
		Name:     req.Name,
		Type:     domain.AccountType(req.Type),
		Balance:  req.Balance,
		Currency: req.Currency,
		IsActive: true,
	}
	if err := account.Validate(); err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), account); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, account)
}

// Deactivate handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Deactivate(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("account_id", idStr).Msg("Failed to deactivate account")
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
