package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bartoszbak/mcqs-helper/internal/config"
	"github.com/bartoszbak/mcqs-helper/internal/handlers"
	"github.com/bartoszbak/mcqs-helper/internal/logging"
)

func main() {
	logging.InitLogger(logrus.InfoLevel)
	log := logging.GetLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.ResendAPIKey == "" {
		log.Warnln("RESEND_API_KEY is not set; /feedback will answer 500")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warnln("GEMINI_API_KEY is not set; subject generation degrades to the default line")
	}
	if cfg.PerplexityAPIKey == "" {
		log.Warnln("PERPLEXITY_API_KEY is not set; /explain will answer 500")
	}

	// Create server and routes
	server := handlers.NewServer(cfg)
	router := server.SetupRoutes()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		log.Infof("Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Infoln("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Infoln("Server stopped")
}
