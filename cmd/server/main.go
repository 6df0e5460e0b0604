package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dagapurva3/senior-care-incidents/internal/config"
	"github.com/dagapurva3/senior-care-incidents/internal/db"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/middleware"
	"github.com/dagapurva3/senior-care-incidents/internal/routes"
	"github.com/dagapurva3/senior-care-incidents/internal/services"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize logger first
	logger.Initialize(logger.Options{Level: cfg.LogLevel, Dir: cfg.LogDir, Format: cfg.LogFormat})
	if !dotenv {
		logger.Warn("No .env file found, using environment variables", nil)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set", nil)
	}

	recordStore, closeStore, err := db.OpenStore(cfg, true)
	if err != nil {
		logger.Fatal("Failed to open incident store", map[string]interface{}{
			"driver": cfg.StoreDriver,
			"error":  err.Error(),
		})
	}
	defer db.CloseStore(closeStore)

	summarizer, llm := services.NewSummarizer(cfg.Summarizer)
	if llm == nil {
		logger.Warn("Summarization disabled", nil)
	} else {
		logger.WithSummarizer(llm.Provider(), llm.Model()).Info("Summarizer configured")
	}

	incidentService := services.NewIncidentService(recordStore, summarizer, services.IncidentServiceOptions{
		SummarizeTimeout: cfg.SummarizeTimeout(),
		MaxLimit:         cfg.ListMaxLimit,
	})

	// Set Gin mode
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	r.Use(gin.Recovery())

	routes.SetupRoutes(r, routes.Dependencies{
		Store:                  recordStore,
		IncidentService:        incidentService,
		Verifier:               middleware.NewJWTVerifier(cfg.JWTSecret),
		LLM:                    llm,
		SummarizeRatePerSecond: cfg.SummarizeRatePerSecond,
		SummarizeBurst:         cfg.SummarizeBurst,
		AllowHistoryReset:      cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting incident record service", map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"store":    cfg.StoreDriver,
		"gin_mode": gin.Mode(),
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
