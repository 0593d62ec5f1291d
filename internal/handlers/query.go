package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"brew-backend/internal/filter"
	"brew-backend/internal/services"
)

// querySelection resolves the centres/months query parameters against
// the loaded table. An absent parameter leaves that dimension at its
// default (every known value); a present-but-empty one is an explicit
// selection of nothing.
func querySelection(r *http.Request, dash *services.DashboardService) (filter.Selection, error) {
	q := r.URL.Query()
	centres, centresGiven := queryList(q, "centres")
	months, monthsGiven := queryList(q, "months")
	return dash.Resolve(centres, months, centresGiven, monthsGiven)
}

// queryList gathers one multi-value parameter. Values may repeat the
// key or be comma-separated inside one value.
func queryList(q url.Values, key string) ([]string, bool) {
	if !q.Has(key) {
		return nil, false
	}

	values := []string{}
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				values = append(values, v)
			}
		}
	}
	return values, true
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, services.ErrUnknownView):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
