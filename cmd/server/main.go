package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ruifsilva/budgetflow-backend/internal/adapter/httpapi"
	"github.com/ruifsilva/budgetflow-backend/internal/adapter/repository/memory"
	"github.com/ruifsilva/budgetflow-backend/internal/adapter/repository/postgres"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/logger"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/mutation"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/reconcile"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/seeder"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/summary"
)

const (
	defaultAPIToken = "dev-token"
	defaultUserID   = "00000000-0000-0000-0000-000000000001"
	defaultHTTPAddr = ":8080"
)

type repositories struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
	accounts     domain.AccountRepository
	budgets      domain.BudgetRepository
	transfers    domain.TransferRepository
}

func main() {
	demo := flag.Bool("demo", false, "run with an in-memory store instead of Postgres")
	flag.Parse()

	log := logger.New(envOr("LOG_LEVEL", "info"))

	// 1. Setup storage
	var repos repositories
	if *demo {
		log.Info().Msg("Running in demo mode with in-memory store")
		store := memory.NewStore()
		repos = repositories{
			transactions: store.Transactions(),
			categories:   store.Categories(),
			accounts:     store.Accounts(),
			budgets:      store.Budgets(),
			transfers:    store.Transfers(),
		}
	} else {
		db, err := postgres.NewDB(buildConnStr())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		repos = repositories{
			transactions: postgres.NewTransactionRepository(db),
			categories:   postgres.NewCategoryRepository(db),
			accounts:     postgres.NewAccountRepository(db),
			budgets:      postgres.NewBudgetRepository(db),
			transfers:    postgres.NewTransferRepository(db),
		}
	}

	// 2. Initialize services (use cases)
	mutations := mutation.NewService(
		repos.transactions, repos.categories, repos.accounts,
		repos.budgets, repos.transfers, log,
	)
	reconciler := reconcile.NewService(
		repos.transactions, repos.categories, repos.accounts,
		repos.budgets, repos.transfers, log,
	)
	summaries := summary.NewService(repos.categories, repos.accounts)

	// Seed starter categories and the current month's budget row
	ctx := context.Background()
	if err := seeder.NewSeeder(repos.categories, repos.budgets).Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed starter data")
	}
	log.Info().Msg("Starter data seeded")

	// 3. Start HTTP server
	apiToken := envOr("API_TOKEN", defaultAPIToken)
	userID, err := uuid.Parse(envOr("API_USER_ID", defaultUserID))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid API_USER_ID")
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Mutations:  mutations,
		Reconciler: reconciler,
		Summaries:  summaries,
		Categories: repos.categories,
		Accounts:   repos.accounts,
		Log:        log,
	}, httpapi.Auth(apiToken, userID))

	addr := envOr("HTTP_ADDR", defaultHTTPAddr)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("HTTP server stopped")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// buildConnStr returns DB_CONN_STR, or assembles one from individual vars
// (Docker friendly).
func buildConnStr() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "budgetflow")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}
