package main

import (
	"log/slog"
	"os"

	api "recommend-backend/cmd/api"
	authUsecase "recommend-backend/internal/auth/usecase"
	ledgerRepo "recommend-backend/internal/ledger/repository"
	"recommend-backend/internal/ledger/scheduler"
	ledgerUsecase "recommend-backend/internal/ledger/usecase"
	"recommend-backend/pkg/config"
	"recommend-backend/pkg/database"
	"recommend-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Environment, cfg.LogLevel)

	// Initialize database; the pool lives until the process exits
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Auto-migrate database schemas
	if err := ledgerRepo.AutoMigrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize use cases (dependency injection)
	sessionUsecaseInstance := authUsecase.NewSessionUsecase(cfg.AccessTokenSecret)
	ledgerUsecaseInstance := ledgerUsecase.NewLedgerUsecase(ledgerRepo.NewStore(db), cfg.LedgerTransactional)

	// Repair counters left stale by interrupted paired writes
	reconciler := scheduler.NewCountReconcileScheduler(ledgerUsecaseInstance, cfg.ReconcileInterval)
	reconciler.Start()

	// Initialize HTTP handler
	handler := api.NewHandler(sessionUsecaseInstance, ledgerUsecaseInstance, db, cfg)

	slog.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "transactional_ledger", cfg.LedgerTransactional)
	if err := handler.Start(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
