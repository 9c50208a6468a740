package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studydesk/internal/ai"
	"studydesk/internal/api"
	"studydesk/internal/config"
	"studydesk/internal/daemon"
	"studydesk/internal/database"
	"studydesk/internal/middleware"
	"studydesk/internal/repository"
	"studydesk/internal/service"
	"studydesk/internal/storage"
	"studydesk/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal", "signal", sig.String())
		cancel()
	}()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}
	cfg := config.NewConfig()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	logger := tel.Logger()
	slog.SetDefault(logger)

	db, err := database.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewPostgresRepository(db)

	limits, err := repo.ListPlanLimits(ctx)
	if err != nil {
		return fmt.Errorf("failed to load plan limits: %w", err)
	}
	catalog := service.NewPlanCatalog(limits, logger)

	notifier := service.NewNotificationLog(repo, logger)
	ledger := service.NewSubscriptionLedger(repo, notifier, logger)
	usage := service.NewUsageCounter(repo, logger)

	quotaMetrics, err := telemetry.NewQuotaMetrics()
	if err != nil {
		logger.Warn("Quota metrics unavailable", "error", err)
	}
	gate := service.NewQuotaGate(ledger, catalog, usage, notifier, quotaMetrics, logger)

	generator, err := ai.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}
	defer generator.Close()

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	quizzes := service.NewQuizService(gate, generator, notifier, logger)
	courses := service.NewCourseService(gate, generator, store, notifier, logger)
	billing := service.NewBillingWebhook(ledger, cfg.Billing, logger)

	handler := api.NewHandler(repo, ledger, catalog, usage, gate, generator, quizzes, courses, notifier, billing)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	app.Use(middleware.Logger(logger))
	handler.RegisterRoutes(app)

	daemons := daemon.NewDaemonManager(logger)
	daemons.Add("subscription-expiry", daemon.SubscriptionExpiryTask(repo, time.Hour, logger))
	daemons.Start(ctx)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr, "environment", cfg.Server.Environment)
		errChan <- app.Listen(addr)
	}()

	select {
	case err := <-errChan:
		cancel()
		daemons.Wait()
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
		daemons.Wait()
		return nil
	}
}
