package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/loomstock/loomstock/internal/activity"
	"github.com/loomstock/loomstock/internal/app"
	"github.com/loomstock/loomstock/internal/auth"
	"github.com/loomstock/loomstock/internal/export"
	"github.com/loomstock/loomstock/internal/inventory"
	"github.com/loomstock/loomstock/internal/platform/cache"
	"github.com/loomstock/loomstock/internal/platform/db"
	"github.com/loomstock/loomstock/internal/products"
	"github.com/loomstock/loomstock/internal/reports"
	"github.com/loomstock/loomstock/internal/shared"
	"github.com/loomstock/loomstock/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	activityLogger := shared.NewActivityLogger(pool)
	adminOnly := auth.RequireRole(shared.RoleAdmin)
	validate := validator.New()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, issuer, activityLogger, logger)
	authHandler := auth.NewHandler(logger, authService, validate)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, activityLogger, logger, inventory.ServiceConfig{
		DefaultLowStockThreshold: cfg.DefaultLowStockThreshold,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService, adminOnly)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, inventoryService, activityLogger, logger)
	productsHandler := products.NewHandler(logger, productsService, adminOnly)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient, logger)
	reportsHandler := reports.NewHandler(logger, reportsService)
	inventoryService.SetReportCache(reportsService)
	productsService.SetReportCache(reportsService)

	exportHandler := export.NewHandler(logger, reportsRepo)

	activityRepo := activity.NewRepository(pool)
	activityHandler := activity.NewHandler(logger, activityRepo)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		TokenIssuer:      issuer,
		AuthHandler:      authHandler,
		ProductsHandler:  productsHandler,
		InventoryHandler: inventoryHandler,
		ReportsHandler:   reportsHandler,
		ExportHandler:    exportHandler,
		ActivityHandler:  activityHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
