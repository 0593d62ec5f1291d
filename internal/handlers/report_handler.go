package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brew-backend/internal/services"
	"brew-backend/internal/timeutil"
)

type ReportHandler struct {
	Service   *services.ReportService
	Dashboard *services.DashboardService
}

func NewReportHandler(service *services.ReportService, dashboard *services.DashboardService) *ReportHandler {
	return &ReportHandler{Service: service, Dashboard: dashboard}
}

// GetDashboardCSV handles GET /api/reports/dashboard.csv
// Query params: centres, months (repeated or comma-separated)
func (h *ReportHandler) GetDashboardCSV(w http.ResponseWriter, r *http.Request) {
	sel, err := querySelection(r, h.Dashboard)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	csvData, err := h.Service.GenerateDashboardCSV(ctx, sel)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("dashboard_report_%s.csv", timeutil.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(csvData)
}

// GetDashboardPDF handles GET /api/reports/dashboard.pdf
// Query params: centres, months (repeated or comma-separated)
func (h *ReportHandler) GetDashboardPDF(w http.ResponseWriter, r *http.Request) {
	sel, err := querySelection(r, h.Dashboard)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	pdfData, err := h.Service.GenerateDashboardPDF(ctx, sel)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("dashboard_report_%s.pdf", timeutil.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(pdfData)
}

// GetCentreZip handles GET /api/reports/centres.zip
func (h *ReportHandler) GetCentreZip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	zipData, err := h.Service.GenerateCentreZip(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("centre_reports_%s.zip", timeutil.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(zipData)
}
