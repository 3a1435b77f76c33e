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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/auth"
	authpostgres "github.com/fintech-enterprise/expense-tracker/internal/auth/postgres"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
	departmentpostgres "github.com/fintech-enterprise/expense-tracker/internal/department/postgres"
	"github.com/fintech-enterprise/expense-tracker/internal/expense"
	expensepostgres "github.com/fintech-enterprise/expense-tracker/internal/expense/postgres"
	"github.com/fintech-enterprise/expense-tracker/internal/transport/rest"
	"github.com/fintech-enterprise/expense-tracker/internal/user"
	userpostgres "github.com/fintech-enterprise/expense-tracker/internal/user/postgres"
	"github.com/fintech-enterprise/expense-tracker/pkg/logger"
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
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	registerRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func registerRoutes(deps *Dependencies) {
	cfg := deps.Config

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authRepo := authpostgres.NewAuthRepository(deps.GormDB)
	userRepo := userpostgres.NewUserRepository(deps.GormDB)
	departmentRepo := departmentpostgres.NewDepartmentRepository(deps.GormDB)
	expenseRepo := expensepostgres.NewExpenseRepository(deps.GormDB)

	authService := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost)
	userService := user.NewService(userRepo, authService, deps.Logger)
	departmentService := department.NewService(departmentRepo, userRepo, deps.Logger)
	expenseService := expense.NewService(expenseRepo, departmentRepo, userRepo, deps.Logger)

	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	departmentHandler := department.NewHandler(departmentService)
	expenseHandler := expense.NewHandler(expenseService)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		cfg.Server,
		authHandler,
		userHandler,
		expenseHandler,
		departmentHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the database per the configured driver. The gorm handle
// wraps the same underlying connection pool as the sqlx one, so repository
// transactions and health checks see the same database.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		dbConn, err := sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}

		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
		if err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to open gorm over pgx connection: %w", err)
		}

		return dbConn, gormDB, nil

	case "sqlite":
		gormDB, err := gorm.Open(gormsqlite.Open(cfg.Source), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to unwrap sqlite connection: %w", err)
		}

		return sqlx.NewDb(sqlDB, "sqlite3"), gormDB, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
