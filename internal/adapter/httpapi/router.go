package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/mutation"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/reconcile"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/summary"
)

// RouterConfig carries everything the API surface needs.
type RouterConfig struct {
	Mutations  *mutation.Service
	Reconciler *reconcile.Service
	Summaries  *summary.Service
	Categories domain.CategoryRepository
	Accounts   domain.AccountRepository
	Log        zerolog.Logger
}

// NewRouter builds the full API handler, middleware included.
// The health endpoint stays outside the auth wall.
func NewRouter(cfg RouterConfig, authWall func(http.Handler) http.Handler) http.Handler {
	transactionsHandler := NewTransactionsHandler(cfg.Mutations, cfg.Log)
	reconcileHandler := NewReconcileHandler(cfg.Reconciler, cfg.Log)
	summaryHandler := NewSummaryHandler(cfg.Summaries, cfg.Log)
	categoriesHandler := NewCategoriesHandler(cfg.Categories, cfg.Log)
	accountsHandler := NewAccountsHandler(cfg.Accounts, cfg.Log)

	api := http.NewServeMux()

	// Transaction endpoints
	api.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.Create(w, r)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		switch r.Method {
		case http.MethodPatch:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Transfer endpoints
	api.HandleFunc("/api/transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.Transfer(w, r)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Reconciliation endpoints
	api.HandleFunc("/api/reconcile/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			id := strings.TrimPrefix(r.URL.Path, "/api/reconcile/categories/")
			reconcileHandler.RepairCategory(w, r, id)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/reconcile/accounts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			id := strings.TrimPrefix(r.URL.Path, "/api/reconcile/accounts/")
			reconcileHandler.RepairAccount(w, r, id)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/budgets/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
		id, ok := strings.CutSuffix(path, "/consistency")
		if !ok {
			WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		if r.Method == http.MethodGet {
			reconcileHandler.BudgetConsistency(w, r, id)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Summary endpoint
	api.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.GetOverview(w, r)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Category endpoints
	api.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.List(w, r)
		case http.MethodPost:
			categoriesHandler.Create(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
		if r.Method == http.MethodDelete {
			categoriesHandler.Deactivate(w, r, id)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Account endpoints
	api.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accountsHandler.List(w, r)
		case http.MethodPost:
			accountsHandler.Create(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
		if r.Method == http.MethodDelete {
			accountsHandler.Deactivate(w, r, id)
		} else {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	root := http.NewServeMux()
	root.Handle("/api/", authWall(api))

	// Health check endpoint
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	var handler http.Handler = root
	handler = Recovery(cfg.Log)(handler)
	handler = CORS(handler)
	handler = Logger(cfg.Log)(handler)

	return handler
}
