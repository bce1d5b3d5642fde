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

	"github.com/cmlabs-hris/guardforce-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/repository/postgresql"
	billingService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/billing"
	payrollService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/payroll"
	timesheetService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/timesheet"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	shiftRepo := postgresql.NewShiftRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	invoiceRepo := postgresql.NewInvoiceRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		slog.Error("Error configuring JWT", "error", err)
		os.Exit(1)
	}

	engine := timesheetService.NewRuleEngine()
	deriver := billingService.NewDeriver(engine)

	timesheetSvc := timesheetService.NewTimesheetService(attendanceRepo, engine, cfg.Rules)
	invoiceSvc := billingService.NewInvoiceService(transactor, shiftRepo, attendanceRepo, invoiceRepo, deriver, cfg.Billing)
	payrollSvc := payrollService.NewPayrollService(attendanceRepo, engine, deriver, cfg.Billing)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewTimesheetHandler(timesheetSvc),
		appHTTP.NewInvoiceHandler(invoiceSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
	)

	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewAttendanceJobs(attendanceRepo, cfg.Cron.NoShowInterval, cfg.Cron.NoShowAfter).RegisterJobs(scheduler)
		scheduler.Start(ctx)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if cfg.Cron.Enabled {
		scheduler.Stop()
	}
	slog.Info("Server stopped")
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
