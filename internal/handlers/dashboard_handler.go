package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"brew-backend/internal/services"
	"brew-backend/pkg/utils"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// GetDashboard handles GET /api/dashboard
// Query params: centres, months (repeated or comma-separated)
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := querySelection(r, h.Service)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payload, hit, err := h.Service.Payload(r.Context(), sel)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Write(payload)
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Service.FilterOptions()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, opts)
}

type viewResponse struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// GetView handles GET /api/views/{name}
// Query params: centres, months (repeated or comma-separated)
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sel, err := querySelection(r, h.Service)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	raw, hit, err := h.Service.View(r.Context(), name, sel)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(hit))
	utils.JSON(w, http.StatusOK, viewResponse{Name: name, Data: raw})
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
