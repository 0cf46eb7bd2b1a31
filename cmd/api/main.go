package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
	"alfredoptarigan/resume-matcher/internal/server"
	"alfredoptarigan/resume-matcher/internal/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("model", cfg.Gemini.Model))

	ctx := context.Background()

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zapLogger.Fatal("failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService(storageService, zapLogger)
	promptBuilder := services.MustNewPromptBuilder()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	driveService := services.NewDriveService(cfg.Drive, cfg.Storage.MaxFileSize, &http.Client{}, zapLogger)

	var objectStorage services.ObjectStorageService
	if cfg.ObjectStorage.Enabled() {
		s3Client, err := services.NewS3Client(ctx, cfg.ObjectStorage)
		if err != nil {
			zapLogger.Fatal("failed to initialize object storage", zap.Error(err))
		}
		objectStorage = services.NewObjectStorageService(s3Client, cfg.ObjectStorage.Bucket, cfg.Storage.MaxFileSize)
		zapLogger.Info("object storage enabled", zap.String("bucket", cfg.ObjectStorage.Bucket))
	}

	matcher := services.NewMatcherService(
		geminiService,
		pdfParser,
		promptBuilder,
		driveService,
		objectStorage,
		cfg.Demo.UserEmail,
		zapLogger,
	)

	app := server.NewApp(cfg, matcher, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLogger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zapLogger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
