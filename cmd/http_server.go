package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fieldserve/reimbursement/internal"
	"github.com/fieldserve/reimbursement/internal/auth"
	authPostgres "github.com/fieldserve/reimbursement/internal/auth/postgres"
	"github.com/fieldserve/reimbursement/internal/category"
	categoryPostgres "github.com/fieldserve/reimbursement/internal/category/postgres"
	"github.com/fieldserve/reimbursement/internal/expense"
	expensePostgres "github.com/fieldserve/reimbursement/internal/expense/postgres"
	"github.com/fieldserve/reimbursement/internal/ledger"
	ledgerPostgres "github.com/fieldserve/reimbursement/internal/ledger/postgres"
	"github.com/fieldserve/reimbursement/internal/payout"
	payoutPostgres "github.com/fieldserve/reimbursement/internal/payout/postgres"
	"github.com/fieldserve/reimbursement/internal/stats"
	statsPostgres "github.com/fieldserve/reimbursement/internal/stats/postgres"
	"github.com/fieldserve/reimbursement/internal/storage"
	"github.com/fieldserve/reimbursement/internal/transport/rest"
	"github.com/fieldserve/reimbursement/internal/user"
	userPostgres "github.com/fieldserve/reimbursement/internal/user/postgres"
	"github.com/fieldserve/reimbursement/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Router http.Handler
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := storage.NewLocalStorage(config.Storage.ReceiptDir, config.Storage.PublicBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt storage: %w", err)
	}

	tokens := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(authPostgres.NewAuthRepository(db), tokens, logger.L())

	clock := expense.NewApprovalClock()
	expenseService := expense.NewService(expensePostgres.NewClaimRepository(db), store, clock, logger.L())
	ledgerService := ledger.NewService(ledgerPostgres.NewLedgerRepository(db), logger.L())
	payoutService := payout.NewService(payoutPostgres.NewPayoutRepository(db), logger.L())
	statsService := stats.NewService(statsPostgres.NewStatsRepository(db), payoutService, logger.L())
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(db), logger.L())
	userService := user.NewService(userPostgres.NewUserRepository(db), config.Security.BCryptCost, logger.L())

	handlers := rest.Handlers{
		Health:   rest.NewHealthHandler(db),
		Auth:     auth.NewHandler(authService),
		Expense:  expense.NewHandler(expenseService),
		Payout:   payout.NewHandler(payoutService),
		Ledger:   ledger.NewHandler(ledgerService),
		Stats:    stats.NewHandler(statsService),
		Category: category.NewHandler(categoryService),
		User:     user.NewHandler(userService),
	}

	router := rest.NewRouter(handlers, authService, "api/openapi.yml")

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the database through GORM. Postgres connections are
// bootstrapped through sqlx over the pgx stdlib driver so pool settings
// apply to the shared *sql.DB; sqlite is opened directly for dev setups.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	if cfg.IsSQLite() {
		return gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{})
	}

	const driver = "pgx"

	conn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: conn.DB}), &gorm.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
	}
	return db, nil
}
