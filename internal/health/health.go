package health

import (
	"time"

	"brew-backend/internal/cache"
)

// SnapshotInfo describes the table snapshot currently being served.
type SnapshotInfo struct {
	Loaded      bool
	Rows        int
	Fingerprint string
	LoadedAt    time.Time
}

// SnapshotSource exposes the live dataset state without coupling the
// checker to the service that owns it.
type SnapshotSource interface {
	SnapshotInfo() SnapshotInfo
}

type HealthChecker struct {
	source SnapshotSource
}

type HealthStatus struct {
	Status  string        `json:"status"`
	Dataset DatasetHealth `json:"dataset"`
	Cache   CacheHealth   `json:"cache"`
}

type DatasetHealth struct {
	Status      string `json:"status"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type CacheHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(source SnapshotSource) *HealthChecker {
	return &HealthChecker{source: source}
}

// CheckBasic reports overall readiness. Only the dataset gates the
// status: the cache is optional, so an unreachable Redis shows up as
// degraded without failing the probe.
func (h *HealthChecker) CheckBasic() HealthStatus {
	datasetHealth := h.checkDataset()

	status := "healthy"
	if datasetHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:  status,
		Dataset: datasetHealth,
		Cache:   h.checkCache(),
	}
}

func (h *HealthChecker) checkDataset() DatasetHealth {
	info := h.source.SnapshotInfo()
	if !info.Loaded {
		return DatasetHealth{Status: "unhealthy"}
	}
	return DatasetHealth{
		Status:      "healthy",
		Rows:        info.Rows,
		Fingerprint: info.Fingerprint,
	}
}

func (h *HealthChecker) checkCache() CacheHealth {
	start := time.Now()
	healthy := cache.IsHealthy()
	responseTime := time.Since(start).Milliseconds()

	if !healthy {
		return CacheHealth{
			Status:       "degraded",
			ResponseTime: responseTime,
		}
	}
	return CacheHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
