package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	debtService "github.com/cmlabs-hris/payroll-engine/internal/service/debt"
	employeeService "github.com/cmlabs-hris/payroll-engine/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/service/period"
	taxService "github.com/cmlabs-hris/payroll-engine/internal/service/tax"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("payroll engine stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.App.LogLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	taxTables, err := loadTaxTables(cfg.Payroll.TaxTablePath)
	if err != nil {
		return err
	}
	policy, err := period.ParsePolicy(cfg.Payroll.WeekOfMonthPolicy)
	if err != nil {
		return fmt.Errorf("invalid WEEK_OF_MONTH_POLICY: %w", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	// Repositories
	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	recordRepo := postgresql.NewPayrollRecordRepository(db)
	weekRepo := postgresql.NewPayrollWeekRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)
	historyRepo := postgresql.NewHistoryRepository(db)
	debtRepo := postgresql.NewDebtRepository(db)

	// Services
	resolver := period.NewResolver(policy, recordRepo)
	ledger := debtService.NewLedger(debtRepo)
	calculator := payrollService.NewCalculator(taxTables)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		calculator,
		resolver,
		ledger,
		employeeRepo,
		recordRepo,
		weekRepo,
		paymentRepo,
		historyRepo,
	)
	weekSvc := payrollService.NewWeekService(resolver, weekRepo, cfg.Payroll.WeekAutoCloseAfter)
	debtSvc := debtService.NewDebtService(txManager, ledger, employeeRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)

	router := appHTTP.NewRouter(JWTService, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       logLevel,
	}, appHTTP.Handlers{
		Payroll:  appHTTP.NewPayrollHandler(payrollSvc),
		Week:     appHTTP.NewWeekHandler(weekSvc),
		Debt:     appHTTP.NewDebtHandler(debtSvc),
		Employee: appHTTP.NewEmployeeHandler(employeeSvc),
	})

	// Cron jobs
	scheduler := cron.NewScheduler()
	if err := cron.NewPayrollWeekJobs(weekSvc, cfg.Payroll.WeekAutoCloseInterval).RegisterJobs(scheduler); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "week_policy", policy.Name())
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadTaxTables reads the YAML tables when a path is configured, else the built-in table.
func loadTaxTables(path string) (tax.Provider, error) {
	if path == "" {
		slog.Warn("TAX_TABLE_PATH not set, using built-in tax table")
		provider, err := taxService.NewStaticProvider(taxService.DefaultTable())
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	provider, err := taxService.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("load tax tables from %s: %w", path, err)
	}
	return provider, nil
}
