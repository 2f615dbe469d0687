package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruifsilva/budgetflow-backend/internal/adapter/repository/postgres"
	"github.com/ruifsilva/budgetflow-backend/internal/domain"
	"github.com/ruifsilva/budgetflow-backend/internal/logger"
	"github.com/ruifsilva/budgetflow-backend/internal/usecase/reconcile"
)

// budgetctl is the operator's console for the ledger. It talks to the
// database directly and exits non-zero when it finds drift, so it can
// run from cron as a consistency check.

type appContext struct {
	reconciler *reconcile.Service
	categories domain.CategoryRepository
	accounts   domain.AccountRepository
	budgets    domain.BudgetRepository
	log        zerolog.Logger
}

type reconcileCategoryCmd struct {
	ID     string `arg:"" help:"Category ID."`
	Repair bool   `help:"Write the recomputed value back."`
}

func (c *reconcileCategoryCmd) Run(app *appContext) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("invalid category ID: %w", err)
	}
	ctx := context.Background()

	if c.Repair {
		result, err := app.reconciler.RepairCategory(ctx, id)
		if err != nil {
			return err
		}
		printResult("category", result)
		return nil
	}

	category, err := app.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	actual, err := app.reconciler.ReconcileCategory(ctx, id)
	if err != nil {
		return err
	}

	drift := actual.Sub(category.Spent)
	fmt.Printf("category %s cached %s actual %s drift %s\n", id, category.Spent, actual, drift)
	if drift.Abs().GreaterThan(reconcile.DriftEpsilon) {
		return fmt.Errorf("category %s has drifted by %s, run with --repair", id, drift)
	}
	return nil
}

type reconcileAccountCmd struct {
	ID      string `arg:"" help:"Account ID."`
	Initial string `help:"Opening balance the event history replays from." default:"0"`
	Repair  bool   `help:"Write the recomputed value back."`
}

func (c *reconcileAccountCmd) Run(app *appContext) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("invalid account ID: %w", err)
	}
	initial, err := decimal.NewFromString(c.Initial)
	if err != nil {
		return fmt.Errorf("invalid initial balance: %w", err)
	}
	ctx := context.Background()

	if c.Repair {
		result, err := app.reconciler.RepairAccount(ctx, id, initial)
		if err != nil {
			return err
		}
		printResult("account", result)
		return nil
	}

	account, err := app.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	actual, err := app.reconciler.ReconcileAccountBalance(ctx, id, initial)
	if err != nil {
		return err
	}

	drift := actual.Sub(account.Balance)
	fmt.Printf("account %s cached %s actual %s drift %s\n", id, account.Balance, actual, drift)
	if drift.Abs().GreaterThan(reconcile.DriftEpsilon) {
		return fmt.Errorf("account %s has drifted by %s, run with --repair", id, drift)
	}
	return nil
}

type checkBudgetCmd struct {
	Month int `arg:"" help:"Calendar month (1-12)."`
	Year  int `arg:"" help:"Calendar year."`
}

func (c *checkBudgetCmd) Run(app *appContext) error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}
	ctx := context.Background()

	budget, err := app.budgets.GetByMonth(ctx, time.Month(c.Month), c.Year)
	if err != nil {
		return err
	}

	report, err := app.reconciler.ValidateBudgetConsistency(ctx, budget.ID)
	if err != nil {
		return err
	}

	if report.IsValid {
		fmt.Printf("budget %s %d is consistent\n", time.Month(c.Month), c.Year)
		return nil
	}

	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "inconsistency: %s\n", msg)
	}
	return fmt.Errorf("budget %s %d has %d inconsistencies", time.Month(c.Month), c.Year, len(report.Errors))
}

func printResult(entity string, result *reconcile.Result) {
	if result.Repaired {
		fmt.Printf("%s %s repaired: cached %s, actual %s (drift %s)\n",
			entity, result.EntityID, result.Cached, result.Actual, result.Drift)
	} else {
		fmt.Printf("%s %s within tolerance: cached %s, actual %s\n",
			entity, result.EntityID, result.Cached, result.Actual)
	}
}

var cli struct {
	LogLevel string `help:"Log level." default:"warn"`

	Reconcile struct {
		Category reconcileCategoryCmd `cmd:"" help:"Recompute a category's spent from its transaction history."`
		Account  reconcileAccountCmd  `cmd:"" help:"Replay an account's balance from its event history."`
	} `cmd:"" help:"Recompute cached aggregates from history."`

	Check struct {
		Budget checkBudgetCmd `cmd:"" help:"Cross-check a monthly budget against its category ceilings."`
	} `cmd:"" help:"Validate ledger consistency."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("budgetctl"),
		kong.Description("Reconciliation console for the budget ledger."),
	)

	log := logger.New(cli.LogLevel)

	db, err := postgres.NewDB(buildConnStr())
	ctx.FatalIfErrorf(err)
	defer db.Close()

	categoryRepo := postgres.NewCategoryRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	app := &appContext{
		reconciler: reconcile.NewService(
			postgres.NewTransactionRepository(db),
			categoryRepo,
			accountRepo,
			budgetRepo,
			postgres.NewTransferRepository(db),
			log,
		),
		categories: categoryRepo,
		accounts:   accountRepo,
		budgets:    budgetRepo,
		log:        log,
	}

	ctx.FatalIfErrorf(ctx.Run(app))
}

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

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
