package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"brew-backend/internal/cache"
	"brew-backend/internal/config"
	"brew-backend/internal/handlers"
	"brew-backend/internal/health"
	h "brew-backend/internal/http"
	"brew-backend/internal/middleware"
	"brew-backend/internal/monitoring"
	"brew-backend/internal/services"
	"brew-backend/internal/source"
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "Server port (overrides config)")
	datasetPath := flag.String("dataset", "", "Local dataset CSV path (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *datasetPath != "" {
		// An explicit local path wins over a configured bucket.
		cfg.Dataset.Path = *datasetPath
		cfg.Dataset.S3Bucket = ""
	}

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (every request recomputes)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Resolve where the transaction export comes from
	src, err := source.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Dataset source: %v", err)
	}

	// Initialize services
	dashboardService := services.NewDashboardService()
	refreshService := services.NewRefreshService(src, dashboardService)
	reportService := services.NewReportService(dashboardService)

	// Initial load is fatal: without a table there is nothing to serve
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	result, err := refreshService.Reload(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Initial dataset load failed: %v", err)
	}
	log.Printf("Loaded %d transactions from %s", result.Rows, src.Describe())

	// Scheduled reloads (optional, cron spec from config)
	if err := refreshService.Schedule(cfg.Dataset.RefreshSchedule); err != nil {
		log.Fatalf("Refresh schedule: %v", err)
	}
	defer refreshService.Stop()

	// Keep snapshot freshness gauges current
	statsCollector := services.NewStatsCollector(dashboardService)
	statsCollector.Start()
	defer statsCollector.Stop()

	// Initialize health checker
	healthChecker := health.NewHealthChecker(dashboardService)

	// Start monitoring dashboard server in background
	go monitoring.NewMonitoringServer(dashboardService, cfg.Monitoring.Port).Start()

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	reportHandler := handlers.NewReportHandler(reportService, dashboardService)
	datasetHandler := handlers.NewDatasetHandler(dashboardService, refreshService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Create router
	router := h.NewRouter(dashboardHandler, reportHandler, datasetHandler, healthHandler)

	corsMiddleware := middleware.NewCORS(cfg)
	apiLogging := middleware.NewAPILoggingMiddleware()
	defer apiLogging.Close()

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(apiLogging.Handler(corsMiddleware(router))))

	// Pre-warm cache in background (non-blocking)
	dashboardService.RegisterPreWarm()
	go cache.PreWarmCache()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
