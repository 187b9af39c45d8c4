package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/config"
	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	employeeStore "github.com/MrJamesThe3rd/backoffice/internal/employee/store"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	apiHttp "github.com/MrJamesThe3rd/backoffice/internal/http"
	employeeHandler "github.com/MrJamesThe3rd/backoffice/internal/http/employee"
	exportHandler "github.com/MrJamesThe3rd/backoffice/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/backoffice/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/backoffice/internal/http/matching"
	"github.com/MrJamesThe3rd/backoffice/internal/http/middleware"
	monthlyHandler "github.com/MrJamesThe3rd/backoffice/internal/http/monthly"
	"github.com/MrJamesThe3rd/backoffice/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/backoffice/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/backoffice/internal/http/user"
	warehouseHandler "github.com/MrJamesThe3rd/backoffice/internal/http/warehouse"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/backoffice/internal/matching/store"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
	monthlyStore "github.com/MrJamesThe3rd/backoffice/internal/monthly/store"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
	txStore "github.com/MrJamesThe3rd/backoffice/internal/transaction/store"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
	userStore "github.com/MrJamesThe3rd/backoffice/internal/user/store"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
	warehouseStore "github.com/MrJamesThe3rd/backoffice/internal/warehouse/store"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(*migrateOnly); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if migrateOnly || cfg.Migrate.OnStart {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	if migrateOnly {
		return nil
	}

	var (
		userService        = user.NewService(userStore.New(db))
		transactionService = transaction.NewService(txStore.New(db))
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService()
		exportService      = export.NewService(transactionService)
		employeeService    = employee.NewService(employeeStore.New(db))
		monthlyService     = monthly.NewService(monthlyStore.New(db))
		warehouseService   = warehouse.NewService(warehouseStore.New(db))
		tokens             = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	)

	if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}

	handlers := apiHttp.Handlers{
		Session: session.NewHandler(userService, tokens, session.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Users:        userHandler.NewHandler(userService),
		Transactions: txHandler.NewHandler(transactionService),
		Import:       importHandler.NewHandler(importService, transactionService, matchingService),
		Matching:     matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
		Employees:    employeeHandler.NewHandler(employeeService),
		Monthly:      monthlyHandler.NewHandler(monthlyService),
		Warehouse:    warehouseHandler.NewHandler(warehouseService),
	}

	authenticator := middleware.NewAuthenticator(tokens, userService, cfg.Auth.CookieName)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           apiHttp.New(authenticator, handlers, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "app", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
