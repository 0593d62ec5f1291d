package handlers

import (
	"context"
	"net/http"
	"time"

	"brew-backend/internal/services"
	"brew-backend/pkg/utils"
)

type DatasetHandler struct {
	Dashboard *services.DashboardService
	Refresh   *services.RefreshService
}

func NewDatasetHandler(dashboard *services.DashboardService, refresh *services.RefreshService) *DatasetHandler {
	return &DatasetHandler{Dashboard: dashboard, Refresh: refresh}
}

// GetDataset handles GET /api/dataset
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.Dashboard.DatasetInfo()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, info)
}

// ReloadDataset handles POST /api/dataset/reload
func (h *DatasetHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := h.Refresh.Reload(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
