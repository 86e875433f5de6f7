package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"purchase-control/internal/api"
	"purchase-control/internal/api/handlers"
	"purchase-control/internal/repository"
	"purchase-control/internal/service"
	"purchase-control/pkg/config"
	"purchase-control/pkg/logger"
	"purchase-control/pkg/metrics"
	"purchase-control/pkg/postgres"
	"purchase-control/pkg/resilience"
	"purchase-control/pkg/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// @title Purchase Control API
// @version 1.0
// @description Backend de controle de compras: OCR de cupons fiscais, validação assistida e relatórios de gastos
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting purchase control service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	files, err := storage.NewS3Store(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	m := metrics.New()
	executor := resilience.NewExecutor(resilience.Config{
		RequestsPerSecond:   cfg.LLM.RequestsPerSecond,
		Burst:               cfg.LLM.Burst,
		Timeout:             cfg.LLM.Timeout,
		BreakerEnabled:      cfg.LLM.BreakerEnabled,
		BreakerMinRequests:  cfg.LLM.BreakerMinRequests,
		BreakerFailureRatio: cfg.LLM.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.LLM.BreakerOpenTimeout,
	}, logger.Named("resilience"))

	// Repositories
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	productRepo := repository.NewProductRepository(db, appLogger)
	purchaseRepo := repository.NewPurchaseRepository(db, appLogger)
	reportRepo := repository.NewReportRepository(db, appLogger)

	// Services
	httpClient := &http.Client{}
	llmService := service.NewLLMService(&cfg.LLM, httpClient, executor, m, logger.Named("llm"))
	receiptService := service.NewReceiptService(receiptRepo, files, cfg.Upload, logger.Named("receipts"))
	ocrService := service.NewOCRService(receiptRepo, files, llmService, httpClient, m, logger.Named("ocr"))
	chatService := service.NewChatService(llmService, logger.Named("chat"))
	purchaseService := service.NewPurchaseService(service.PoolTx{DB: db}, purchaseRepo, productRepo, receiptRepo, m, logger.Named("purchases"))
	categoryService := service.NewCategoryService(categoryRepo, productRepo, logger.Named("categories"))
	reportService := service.NewReportService(reportRepo, productRepo, logger.Named("reports"))

	// Handlers
	validate := validator.New()
	app := api.SetupRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(db, appLogger),
		Receipts:  handlers.NewReceiptHandler(receiptService, ocrService, validate, appLogger),
		Chat:      handlers.NewChatHandler(chatService, validate, appLogger),
		Purchases: handlers.NewPurchaseHandler(purchaseService, reportService, validate, appLogger),
		Category:  handlers.NewCategoryHandler(categoryService, reportService, validate, appLogger),
		Reports:   handlers.NewReportHandler(reportService, appLogger),
	}, &cfg.Server, m, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
