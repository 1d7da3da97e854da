package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"intelliq/internal/api"
	"intelliq/internal/api/handlers"
	"intelliq/internal/archive"
	"intelliq/internal/config"
	"intelliq/internal/db"
	"intelliq/internal/gemini"
	"intelliq/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logg.Fatal("failed to initialize Gemini client", "error", err)
	}
	defer geminiClient.Close()

	archiveClient, err := archive.NewClient(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("failed to initialize source archive", "error", err)
	}

	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logg))

	// A nil *archive.Client must stay a nil interface so the handler can
	// tell archival is disabled.
	var archiver handlers.Archiver
	if archiveClient != nil {
		archiver = archiveClient
	}

	handler := handlers.NewHandler(logg, database.Queries, geminiClient, archiver, cfg.OpsWebhookURL)
	api.SetupRoutes(router, handler, cfg.FrontendURL)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logg.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Fatal("server forced to shutdown", "error", err)
	}
	logg.Info("server exited")
}
