package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brew-backend/internal/dataset"
	"brew-backend/internal/health"
	"brew-backend/internal/services"
)

const csvHeader = "Date,Time,Customer Mobile No,POSDescription,Bill Month,Bill No,Gross Amount,NetAmount,Quantity,MenuGroupDescription"

var fixtureRows = []string{
	"2024-03-01,18:30:00,9990011122,Downtown Taproom,Mar-2024,B001,450.00,420.00,2,Lager",
	"2024-03-02,12:05:00,9990011122,Downtown Taproom,Mar-2024,B002,300.00,280.00,1,Stout",
	"2024-03-03,20:15:00,8880022233,Mall Road,Mar-2024,B003,900.00,860.00,3,Lager",
	"2024-02-20,19:00:00,7770033344,Mall Road,Feb-2024,B004,150.00,140.00,1,Cider",
}

type staticSource struct{ data []byte }

func (s *staticSource) Fetch(ctx context.Context) ([]byte, error) { return s.data, nil }
func (s *staticSource) Describe() string                          { return "static" }

func exportBytes(rows ...string) []byte {
	return []byte(csvHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func loadedDashboard(t *testing.T) *services.DashboardService {
	t.Helper()
	table, err := dataset.Load(exportBytes(fixtureRows...))
	require.NoError(t, err)
	svc := services.NewDashboardService()
	svc.Swap(table, "file:test.csv")
	return svc
}

// testRouter wires the handlers onto the real route shapes so mux path
// variables resolve the same way they do in production.
func testRouter(dash *services.DashboardService, refresh *services.RefreshService) *mux.Router {
	dashboardHandler := NewDashboardHandler(dash)
	reportHandler := NewReportHandler(services.NewReportService(dash), dash)
	healthHandler := NewHealthHandler(health.NewHealthChecker(dash))

	r := mux.NewRouter()
	r.HandleFunc("/api/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	r.HandleFunc("/api/dashboard/filters", dashboardHandler.GetFilters).Methods("GET")
	r.HandleFunc("/api/views/{name}", dashboardHandler.GetView).Methods("GET")
	r.HandleFunc("/api/reports/dashboard.csv", reportHandler.GetDashboardCSV).Methods("GET")
	r.HandleFunc("/api/reports/dashboard.pdf", reportHandler.GetDashboardPDF).Methods("GET")
	r.HandleFunc("/api/reports/centres.zip", reportHandler.GetCentreZip).Methods("GET")
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	if refresh != nil {
		datasetHandler := NewDatasetHandler(dash, refresh)
		r.HandleFunc("/api/dataset", datasetHandler.GetDataset).Methods("GET")
		r.HandleFunc("/api/dataset/reload", datasetHandler.ReloadDataset).Methods("POST")
	}
	return r
}

func doRequest(t *testing.T, router *mux.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestGetDashboard(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "kpis")
	assert.JSONEq(t, "4", string(body["row_count"]))
}

func TestGetDashboard_CentreFilter(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/dashboard?centres=Mall+Road")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, "2", string(body["row_count"]))
}

func TestGetDashboard_PresentEmptyFilterSelectsNothing(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/dashboard?centres=")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, "0", string(body["row_count"]))
}

func TestGetDashboard_BeforeLoad(t *testing.T) {
	router := testRouter(services.NewDashboardService(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetFilters(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/dashboard/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts services.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Downtown Taproom", "Mall Road"}, opts.Centres)
	assert.Equal(t, []string{"Mar-2024", "Feb-2024"}, opts.BillMonths)
}

func TestGetView(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/views/kpis")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name string          `json:"name"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "kpis", resp.Name)

	var kpis map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &kpis))
	assert.Contains(t, kpis, "total_revenue")
}

func TestGetView_UnknownName(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/views/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDashboardCSV(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/reports/dashboard.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"dashboard_report_")
	assert.Contains(t, rec.Body.String(), "Key Metrics")
}

func TestGetDashboardPDF(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/reports/dashboard.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestGetCentreZip(t *testing.T) {
	router := testRouter(loadedDashboard(t), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/reports/centres.zip")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "centre_reports_")
}

func TestGetDataset(t *testing.T) {
	dash := loadedDashboard(t)
	refresh := services.NewRefreshService(&staticSource{data: exportBytes(fixtureRows...)}, dash)
	router := testRouter(dash, refresh)

	rec := doRequest(t, router, http.MethodGet, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var info services.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, "file:test.csv", info.Source)
}

func TestReloadDataset(t *testing.T) {
	dash := services.NewDashboardService()
	refresh := services.NewRefreshService(&staticSource{data: exportBytes(fixtureRows...)}, dash)
	router := testRouter(dash, refresh)

	rec := doRequest(t, router, http.MethodPost, "/api/dataset/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.ReloadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Changed)
	assert.Equal(t, 4, result.Rows)
	require.NotNil(t, dash.Table())
}

func TestBasicHealth(t *testing.T) {
	router := testRouter(services.NewDashboardService(), nil)

	rec := doRequest(t, router, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadinessHealth(t *testing.T) {
	router := testRouter(services.NewDashboardService(), nil)
	rec := doRequest(t, router, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	router = testRouter(loadedDashboard(t), nil)
	rec = doRequest(t, router, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status health.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 4, status.Dataset.Rows)
}

func TestQueryList(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard?centres=Downtown+Taproom,Mall+Road&months=Mar-2024&months=Feb-2024", nil)
	q := r.URL.Query()

	centres, given := queryList(q, "centres")
	assert.True(t, given)
	assert.Equal(t, []string{"Downtown Taproom", "Mall Road"}, centres)

	months, given := queryList(q, "months")
	assert.True(t, given)
	assert.Equal(t, []string{"Mar-2024", "Feb-2024"}, months)

	_, given = queryList(q, "absent")
	assert.False(t, given)
}
