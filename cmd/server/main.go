package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/router"
	"chatbot-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Chatbot Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")
	if cfg.APIKey == "" {
		log.Println("⚠ AIML_API_KEY is not set; chat requests will fail until it is configured")
	}

	// ──── Step 2: Initialize Completion Service ────
	completionService := services.NewCompletionService(
		cfg.APIKey,
		cfg.BaseURL,
		time.Duration(cfg.RequestTimeoutSecs)*time.Second,
	)
	log.Println("✓ Completion service initialized")

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(completionService)

	// ──── Step 3: Start HTTP Server ────
	r := router.New(chatHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Must outlast the upstream request ceiling so streams are
		// never cut mid-reply.
		WriteTimeout: time.Duration(cfg.RequestTimeoutSecs+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chatbot Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
