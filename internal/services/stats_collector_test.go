package services

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"brew-backend/internal/metrics"
)

func TestStatsCollectorUpdatesGauges(t *testing.T) {
	svc := newLoadedService(t)
	c := NewStatsCollector(svc)

	c.collect()

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.DatasetRows))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.DatasetAgeSeconds), 0.0)
}

func TestStatsCollectorBeforeLoad(t *testing.T) {
	c := NewStatsCollector(NewDashboardService())

	// No snapshot yet: collect must not touch the gauges or panic.
	assert.NotPanics(t, func() { c.collect() })
}

func TestStatsCollectorStartStop(t *testing.T) {
	c := NewStatsCollector(newLoadedService(t))

	c.Start()
	c.Stop()
}
