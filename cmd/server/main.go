package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/config"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/database"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	scenarioRepo := repository.NewScenarioRepository(db)
	graphRepo := repository.NewGraphRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	paramsRepo := repository.NewParamsRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Quote sources: crypto table first, Yahoo as the default equities
	// fallback until an Alpha Vantage key is configured.
	yahooClient := yahoo.NewFinanceClient()
	resolver := pricing.NewResolver(pricing.NewCoinGeckoClient(), yahooClient)

	// Create services
	systemService := service.NewSystemService(db)
	scenarioService := service.NewScenarioService(
		scenarioRepo,
		graphRepo,
		holdingRepo,
		paramsRepo,
		resolver,
	)
	priceService := service.NewPriceService(holdingRepo, resolver)
	settingsService, err := service.NewSettingsService(settingsRepo, resolver, yahooClient, cfg.Security.FernetKey)
	if err != nil {
		log.Fatalf("Failed to create settings service: %v", err)
	}
	if err := settingsService.LoadStoredProvider(); err != nil {
		log.Printf("Falling back to default quote provider: %v", err)
	}

	// Scheduled price refresh
	scheduler := cron.New()
	if cfg.Pricing.RefreshSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Pricing.RefreshSchedule, func() {
			result, err := priceService.RefreshAll(context.Background())
			if err != nil {
				log.Printf("Scheduled price refresh failed: %v", err)
				return
			}
			log.Printf("Scheduled price refresh: %d refreshed, %d failed", result.Refreshed, len(result.Failed))
		})
		if err != nil {
			log.Fatalf("Invalid price refresh schedule %q: %v", cfg.Pricing.RefreshSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(systemService, scenarioService, priceService, settingsService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
