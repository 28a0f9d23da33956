package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"contaflow/internal/api"
	"contaflow/internal/api/handlers"
	"contaflow/internal/repository"
	"contaflow/internal/service"
	"contaflow/pkg/auth"
	"contaflow/pkg/config"
	"contaflow/pkg/logger"
	"contaflow/pkg/postgres"

	"go.uber.org/zap"
)

// @title ContaFlow API
// @version 1.0
// @description Document-driven personal budget service: PDF upload, structured extraction and expense derivation.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting ContaFlow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	timelineRepo := repository.NewTimelineRepository(db, appLogger)
	settingsRepo := repository.NewSettingsRepository(db, appLogger)
	activityRepo := repository.NewActivityLogRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	openaiService := service.NewOpenAIService(&cfg.OpenAI, appLogger)
	pdfService := service.NewPDFService(appLogger)

	activityLog := service.NewActivityLog(activityRepo, appLogger)
	defer activityLog.Close()

	uploadDir := "uploads"
	docService := service.NewDocumentService(docRepo, accountRepo, expenseRepo, timelineRepo, pdfService, openaiService, activityLog, uploadDir, appLogger)
	accountService := service.NewAccountService(accountRepo, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, timelineRepo, appLogger)
	settingsService := service.NewSettingsService(settingsRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	docHandler := handlers.NewDocumentHandler(docService, appLogger)
	accountHandler := handlers.NewAccountHandler(accountService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)
	connectionHandler := handlers.NewConnectionHandler(openaiService, settingsService, activityLog, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, docHandler, accountHandler, expenseHandler, connectionHandler, jwtManager, uploadDir, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	// Let pending remote file deletions finish before exit.
	openaiService.WaitCleanup()
}
