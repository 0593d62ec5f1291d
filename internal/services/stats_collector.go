package services

import (
	"log"
	"sync"
	"time"

	"brew-backend/internal/metrics"
	"brew-backend/internal/timeutil"
)

// StatsCollector keeps the snapshot freshness gauges current. Request
// counters update inline in the middleware; data age is time-driven, so
// it needs its own ticker.
type StatsCollector struct {
	dash            *DashboardService
	collectInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

// NewStatsCollector creates a collector for the given dashboard service
func NewStatsCollector(dash *DashboardService) *StatsCollector {
	return &StatsCollector{
		dash:            dash,
		collectInterval: 30 * time.Second,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the collection loop
func (c *StatsCollector) Start() {
	log.Println("[StatsCollector] Starting stats collector...")

	// Collect immediately on start
	c.collect()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				log.Println("[StatsCollector] Stopping stats collector...")
				return
			}
		}
	}()
}

// Stop stops the collection loop
func (c *StatsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *StatsCollector) collect() {
	info := c.dash.SnapshotInfo()
	if !info.Loaded {
		return
	}
	metrics.DatasetRows.Set(float64(info.Rows))
	metrics.DatasetAgeSeconds.Set(timeutil.Now().Sub(info.LoadedAt).Seconds())
}
