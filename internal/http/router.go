package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brew-backend/internal/handlers"
)

func NewRouter(
	dashboardHandler *handlers.DashboardHandler,
	reportHandler *handlers.ReportHandler,
	datasetHandler *handlers.DatasetHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	// Dashboard API
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.HandleFunc("", dashboardHandler.GetDashboard).Methods("GET")
	dashboardAPI.HandleFunc("/filters", dashboardHandler.GetFilters).Methods("GET")

	// Per-view API
	r.HandleFunc("/api/views/{name}", dashboardHandler.GetView).Methods("GET")

	// Report downloads
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.HandleFunc("/dashboard.csv", reportHandler.GetDashboardCSV).Methods("GET")
	reportsAPI.HandleFunc("/dashboard.pdf", reportHandler.GetDashboardPDF).Methods("GET")
	reportsAPI.HandleFunc("/centres.zip", reportHandler.GetCentreZip).Methods("GET")

	// Dataset management
	datasetAPI := r.PathPrefix("/api/dataset").Subrouter()
	datasetAPI.HandleFunc("", datasetHandler.GetDataset).Methods("GET")
	datasetAPI.HandleFunc("/reload", datasetHandler.ReloadDataset).Methods("POST")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
