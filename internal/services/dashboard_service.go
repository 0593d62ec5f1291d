package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"brew-backend/internal/analytics"
	"brew-backend/internal/cache"
	"brew-backend/internal/dataset"
	"brew-backend/internal/filter"
	"brew-backend/internal/health"
	"brew-backend/internal/metrics"
	"brew-backend/internal/timeutil"
)

const bundleCacheTTL = 15 * time.Minute

var (
	// ErrDatasetNotLoaded is returned before the first successful load.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownView is returned for a view name outside the registry.
	ErrUnknownView = errors.New("unknown view")
)

// snapshot pairs a loaded table with its filter index. The two always
// travel together: an index is only valid for the table it was built
// from.
type snapshot struct {
	table  *dataset.Table
	index  *filter.Index
	origin string
}

// DashboardService owns the current dataset snapshot and answers every
// dashboard read from it. Reads take the snapshot under an RLock and
// then work on immutable data, so a concurrent reload never disturbs
// an in-flight recompute.
type DashboardService struct {
	mu   sync.RWMutex
	snap *snapshot
}

func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

// Swap installs a freshly loaded table, replacing the previous snapshot.
func (s *DashboardService) Swap(table *dataset.Table, origin string) {
	snap := &snapshot{
		table:  table,
		index:  filter.NewIndex(table),
		origin: origin,
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	metrics.DatasetRows.Set(float64(table.RowCount()))
}

func (s *DashboardService) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Table returns the table currently being served, nil before the first load.
func (s *DashboardService) Table() *dataset.Table {
	if snap := s.current(); snap != nil {
		return snap.table
	}
	return nil
}

// SnapshotInfo implements health.SnapshotSource.
func (s *DashboardService) SnapshotInfo() health.SnapshotInfo {
	snap := s.current()
	if snap == nil {
		return health.SnapshotInfo{}
	}
	return health.SnapshotInfo{
		Loaded:      true,
		Rows:        snap.table.RowCount(),
		Fingerprint: snap.table.Fingerprint,
		LoadedAt:    snap.table.LoadedAt,
	}
}

// Resolve turns raw query values into a selection. An absent parameter
// means no restriction, so that dimension defaults to every known
// value; a present-but-empty parameter is an explicit selection of
// nothing and stays empty.
func (s *DashboardService) Resolve(centres, months []string, centresGiven, monthsGiven bool) (filter.Selection, error) {
	snap := s.current()
	if snap == nil {
		return filter.Selection{}, ErrDatasetNotLoaded
	}

	sel := filter.Default(snap.table)
	if centresGiven {
		sel.Centres = centres
	}
	if monthsGiven {
		sel.Months = months
	}
	return sel, nil
}

// DefaultSelection returns the selection covering the whole table.
func (s *DashboardService) DefaultSelection() (filter.Selection, error) {
	snap := s.current()
	if snap == nil {
		return filter.Selection{}, ErrDatasetNotLoaded
	}
	return filter.Default(snap.table), nil
}

// ComputeBundle recomputes every view for the selection, bypassing the
// cache. The report exporter uses this path to work on the live struct
// rather than marshalled bytes.
func (s *DashboardService) ComputeBundle(sel filter.Selection) (*analytics.Bundle, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrDatasetNotLoaded
	}

	start := time.Now()
	bundle := analytics.Recompute(snap.table, snap.index, sel)
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())

	return bundle, nil
}

// Payload returns the marshalled bundle for the selection, serving from
// Redis when possible. The boolean reports whether it was a cache hit.
func (s *DashboardService) Payload(ctx context.Context, sel filter.Selection) ([]byte, bool, error) {
	snap := s.current()
	if snap == nil {
		return nil, false, ErrDatasetNotLoaded
	}

	key := cache.DashboardKey(snap.table.Fingerprint, sel.Key())
	if data, ok := cache.GetCached(ctx, key); ok {
		metrics.CacheHitsTotal.Inc()
		return data, true, nil
	}
	metrics.CacheMissesTotal.Inc()

	data, err := s.computePayload(sel)
	if err != nil {
		return nil, false, err
	}

	cache.SetCached(ctx, key, data, bundleCacheTTL)
	return data, false, nil
}

func (s *DashboardService) computePayload(sel filter.Selection) ([]byte, error) {
	bundle, err := s.ComputeBundle(sel)
	if err != nil {
		return nil, err
	}
	return json.Marshal(bundle)
}

// View extracts one named view from the bundle payload, reusing the
// cached bytes when they are fresh.
func (s *DashboardService) View(ctx context.Context, name string, sel filter.Selection) (json.RawMessage, bool, error) {
	if !knownView(name) {
		return nil, false, ErrUnknownView
	}

	payload, hit, err := s.Payload(ctx, sel)
	if err != nil {
		return nil, false, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, false, err
	}

	raw, ok := fields[viewField(name)]
	if !ok {
		return nil, false, ErrUnknownView
	}
	return raw, hit, nil
}

func knownView(name string) bool {
	for _, n := range analytics.ViewNames {
		if n == name {
			return true
		}
	}
	return false
}

// viewField maps a URL view name to its JSON field in the bundle.
func viewField(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// FilterOptions describes the values a client may filter on.
type FilterOptions struct {
	Centres    []string `json:"centres"`
	BillMonths []string `json:"bill_months"`
	DateMin    string   `json:"date_min"`
	DateMax    string   `json:"date_max"`
	Rows       int      `json:"rows"`
}

func (s *DashboardService) FilterOptions() (*FilterOptions, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrDatasetNotLoaded
	}

	t := snap.table
	opts := &FilterOptions{
		Centres:    append([]string(nil), t.Centres...),
		BillMonths: append([]string(nil), t.BillMonths...),
		Rows:       t.RowCount(),
	}
	if t.RowCount() > 0 {
		opts.DateMin = t.DateMin.Format(timeutil.DateLayout)
		opts.DateMax = t.DateMax.Format(timeutil.DateLayout)
	}
	return opts, nil
}

// DatasetInfo describes the snapshot for the dataset endpoint.
type DatasetInfo struct {
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Centres     int       `json:"centres"`
	BillMonths  int       `json:"bill_months"`
	DateMin     string    `json:"date_min,omitempty"`
	DateMax     string    `json:"date_max,omitempty"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
}

func (s *DashboardService) DatasetInfo() (*DatasetInfo, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrDatasetNotLoaded
	}

	t := snap.table
	info := &DatasetInfo{
		Fingerprint: t.Fingerprint,
		Rows:        t.RowCount(),
		Centres:     len(t.Centres),
		BillMonths:  len(t.BillMonths),
		Source:      snap.origin,
		LoadedAt:    t.LoadedAt,
	}
	if t.RowCount() > 0 {
		info.DateMin = t.DateMin.Format(timeutil.DateLayout)
		info.DateMax = t.DateMax.Format(timeutil.DateLayout)
	}
	return info, nil
}

// RegisterPreWarm registers the default-selection bundle for startup
// pre-warming. Call after the initial load so the key carries the
// right fingerprint.
func (s *DashboardService) RegisterPreWarm() {
	snap := s.current()
	if snap == nil {
		return
	}

	sel := filter.Default(snap.table)
	key := cache.DashboardKey(snap.table.Fingerprint, sel.Key())
	cache.RegisterPreWarm(key, func(ctx context.Context) ([]byte, error) {
		return s.computePayload(sel)
	})
}

// WarmDefault recomputes the default-selection bundle in the background.
// Called after a reload so the first dashboard request after a swap is
// served warm.
func (s *DashboardService) WarmDefault() {
	snap := s.current()
	if snap == nil {
		return
	}

	sel := filter.Default(snap.table)
	key := cache.DashboardKey(snap.table.Fingerprint, sel.Key())
	cache.PreWarmKey(key, func(ctx context.Context) ([]byte, error) {
		return s.computePayload(sel)
	}, bundleCacheTTL)
}
