package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"brew-backend/internal/cache"
	"brew-backend/internal/health"
)

// staleAfter is how old a snapshot may get before the monitor flags it.
const staleAfter = 24 * time.Hour

// MonitoringServer exposes an ops view of the process on its own port:
// dataset snapshot state, cache reachability, host resources, and a
// websocket feed of alerts.
type MonitoringServer struct {
	source     health.SnapshotSource
	port       int
	started    time.Time
	alerts     []Alert
	alertsMux  sync.RWMutex
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Alert
}

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

type DashboardStats struct {
	DatasetStatus  string    `json:"dataset_status"`
	DatasetRows    int       `json:"dataset_rows"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
	LoadedAt       time.Time `json:"loaded_at"`
	DataAgeSeconds int64     `json:"data_age_seconds"`
	CacheStatus    string    `json:"cache_status"`
	ActiveAlerts   int       `json:"active_alerts"`
	CPUPercent     float64   `json:"cpu_percent"`
	MemoryPercent  float64   `json:"memory_percent"`
	MemoryUsed     string    `json:"memory_used"`
	MemoryTotal    string    `json:"memory_total"`
	DiskPercent    float64   `json:"disk_percent"`
	DiskUsed       string    `json:"disk_used"`
	DiskTotal      string    `json:"disk_total"`
	Uptime         string    `json:"uptime"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(source health.SnapshotSource, port int) *MonitoringServer {
	return &MonitoringServer{
		source:    source,
		port:      port,
		started:   time.Now(),
		alerts:    make([]Alert, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Alert),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/", ms.index).Methods("GET")

	// API endpoints
	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", ms.getAlerts).Methods("GET")
	r.HandleFunc("/api/test-alert", ms.createTestAlert).Methods("POST")

	// WebSocket for real-time updates
	r.HandleFunc("/ws", ms.handleWebSocket)

	// Start background alert broadcaster
	go ms.handleBroadcast()

	// Start background health checker
	go ms.monitorHealth()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("[Monitoring] dashboard running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *MonitoringServer) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service":   "brew-backend monitoring",
		"endpoints": []string{"/api/stats", "/api/alerts", "/api/test-alert", "/ws"},
	})
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	info := ms.source.SnapshotInfo()

	datasetStatus := "healthy"
	var dataAge int64
	if !info.Loaded {
		datasetStatus = "unhealthy"
	} else {
		dataAge = int64(time.Since(info.LoadedAt).Seconds())
	}

	cacheStatus := "healthy"
	if !cache.IsHealthy() {
		cacheStatus = "degraded"
	}

	// System metrics (current pod/node)
	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	// Count alerts
	ms.alertsMux.RLock()
	activeAlertCount := 0
	for _, alert := range ms.alerts {
		if !alert.Resolved {
			activeAlertCount++
		}
	}
	ms.alertsMux.RUnlock()

	fingerprint := info.Fingerprint
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}

	return DashboardStats{
		DatasetStatus:  datasetStatus,
		DatasetRows:    info.Rows,
		Fingerprint:    fingerprint,
		LoadedAt:       info.LoadedAt,
		DataAgeSeconds: dataAge,
		CacheStatus:    cacheStatus,
		ActiveAlerts:   activeAlertCount,
		CPUPercent:     cpuPercent,
		MemoryPercent:  memStats.UsedPercent,
		MemoryUsed:     formatBytes(memStats.Used),
		MemoryTotal:    formatBytes(memStats.Total),
		DiskPercent:    diskStats.UsedPercent,
		DiskUsed:       formatBytes(diskStats.Used),
		DiskTotal:      formatBytes(diskStats.Total),
		Uptime:         formatUptime(int(time.Since(ms.started).Seconds())),
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	ms.alertsMux.RLock()
	defer ms.alertsMux.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ms.alerts)
}

func (ms *MonitoringServer) createTestAlert(w http.ResponseWriter, r *http.Request) {
	var alert Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ms.addAlert(&alert)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

func (ms *MonitoringServer) addAlert(alert *Alert) {
	ms.alertsMux.Lock()
	alert.ID = len(ms.alerts) + 1
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	ms.alerts = append(ms.alerts, *alert)
	ms.alertsMux.Unlock()

	// Broadcast to all WebSocket clients
	ms.broadcast <- *alert
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Monitoring] WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for alert := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			err := client.WriteJSON(alert)
			if err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

// monitorHealth raises alerts on state transitions rather than every
// tick, so a long outage is one alert instead of a flood.
func (ms *MonitoringServer) monitorHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var datasetDown, dataStale, cacheDown bool

	for range ticker.C {
		info := ms.source.SnapshotInfo()

		if !info.Loaded {
			if !datasetDown {
				datasetDown = true
				ms.addAlert(&Alert{
					Severity: "critical",
					Type:     "dataset_unavailable",
					Message:  "No dataset snapshot is loaded",
				})
			}
		} else {
			datasetDown = false
		}

		if info.Loaded && time.Since(info.LoadedAt) > staleAfter {
			if !dataStale {
				dataStale = true
				ms.addAlert(&Alert{
					Severity: "warning",
					Type:     "stale_dataset",
					Message:  fmt.Sprintf("Snapshot is %s old", formatUptime(int(time.Since(info.LoadedAt).Seconds()))),
				})
			}
		} else {
			dataStale = false
		}

		if !cache.IsHealthy() {
			if !cacheDown {
				cacheDown = true
				ms.addAlert(&Alert{
					Severity: "warning",
					Type:     "cache_degraded",
					Message:  "Redis is unreachable, serving without cache",
				})
			}
		} else {
			cacheDown = false
		}
	}
}
