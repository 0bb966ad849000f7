package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chimera-director/chimera/internal/config"
	"github.com/chimera-director/chimera/internal/engine"
	"github.com/chimera-director/chimera/internal/handlers"
	"github.com/chimera-director/chimera/internal/logger"
	"github.com/chimera-director/chimera/internal/middleware"
	"github.com/chimera-director/chimera/internal/services"
	"github.com/chimera-director/chimera/internal/services/events"
	"github.com/chimera-director/chimera/internal/storage"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/game"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Chimera API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"streaming", cfg.StreamingEnabled)

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	broadcaster := events.NewBroadcaster(store.GetClient(), log)

	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, cloud providers will fail")
	}
	providers := engine.Providers{
		CloudText:  services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiBaseURL, log),
		LocalText:  services.NewOllamaService(cfg.OllamaBaseURL, log),
		CloudImage: services.NewImagenService(cfg.GeminiAPIKey, cfg.GeminiBaseURL, log),
		LocalImage: services.NewSDLocalService(cfg.SDLocalBaseURL, log),
	}

	costs := credit.Costs{
		credit.OpTextTurn:   cfg.CostTextTurn,
		credit.OpImage:      cfg.CostImage,
		credit.OpImageEdit:  cfg.CostImageEdit,
		credit.OpSuggestion: cfg.CostSuggestion,
	}
	registry := engine.NewRegistry(providers, store, broadcaster, cfg.MaxCredits, costs, cfg.StreamingEnabled, log)

	defaults := game.DefaultSettings()
	defaults.PromptAssist = cfg.PromptAssist
	registry.SetDefaultSettings(defaults)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(registry, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	eventsHandler := handlers.NewEventsHandler(store.GetClient(), log)
	mux.Handle("/v1/events/sessions/", eventsHandler)

	mux.Handle("/metrics", promhttp.Handler())

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout omitted so SSE streams are not cut off.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
