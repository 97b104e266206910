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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/budget"
	budgetStore "github.com/smartledger/smartledger/internal/budget/store"
	"github.com/smartledger/smartledger/internal/config"
	"github.com/smartledger/smartledger/internal/dashboard"
	"github.com/smartledger/smartledger/internal/database"
	"github.com/smartledger/smartledger/internal/export"
	ledgerHttp "github.com/smartledger/smartledger/internal/http"
	accountHandler "github.com/smartledger/smartledger/internal/http/account"
	budgetHandler "github.com/smartledger/smartledger/internal/http/budget"
	dashboardHandler "github.com/smartledger/smartledger/internal/http/dashboard"
	exportHandler "github.com/smartledger/smartledger/internal/http/export"
	importHandler "github.com/smartledger/smartledger/internal/http/importcsv"
	insightHandler "github.com/smartledger/smartledger/internal/http/insight"
	matchingHandler "github.com/smartledger/smartledger/internal/http/matching"
	txHandler "github.com/smartledger/smartledger/internal/http/transaction"
	"github.com/smartledger/smartledger/internal/importer"
	"github.com/smartledger/smartledger/internal/insight"
	insightStore "github.com/smartledger/smartledger/internal/insight/store"
	"github.com/smartledger/smartledger/internal/matching"
	matchingStore "github.com/smartledger/smartledger/internal/matching/store"
	"github.com/smartledger/smartledger/internal/transaction"
	txStore "github.com/smartledger/smartledger/internal/transaction/store"
	"github.com/smartledger/smartledger/internal/user"
	userStore "github.com/smartledger/smartledger/internal/user/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	var model insight.Generator = insight.Disabled{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := insight.NewGemini(ctx, insight.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		})
		if err != nil {
			return err
		}

		model = gemini
	} else {
		slog.Warn("GEMINI_API_KEY not set, AI features will use fallback responses")
	}

	tokens := auth.NewJWT(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		userService        = user.NewService(userStore.New(db), tokens)
		transactionService = transaction.NewService(txStore.New(db))
		budgetService      = budget.NewService(budgetStore.New(db))
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService(transactionService)
		exportService      = export.NewService(transactionService)
		dashboardService   = dashboard.NewService(transactionService, nil)
		insightService     = insight.NewService(
			insightStore.New(db),
			model,
			transactionService,
			budgetService,
			matchingService,
			nil,
		)
	)

	router := ledgerHttp.New(
		ledgerHttp.Options{
			ServiceName:    cfg.App.Name,
			Timeout:        cfg.Server.Timeout,
			AllowedOrigins: cfg.Server.CORSOrigins,
		},
		tokens,
		ledgerHttp.Handlers{
			Accounts:     accountHandler.NewHandler(userService),
			Transactions: txHandler.NewHandler(transactionService),
			Import:       importHandler.NewHandler(importService),
			Export:       exportHandler.NewHandler(exportService),
			Budgets:      budgetHandler.NewHandler(budgetService),
			Dashboard:    dashboardHandler.NewHandler(dashboardService),
			Insights:     insightHandler.NewHandler(insightService),
			Rules:        matchingHandler.NewHandler(matchingService),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
