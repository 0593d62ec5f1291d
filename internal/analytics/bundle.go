package analytics

import (
	"log"
	"time"

	"brew-backend/internal/dataset"
	"brew-backend/internal/filter"
	"brew-backend/internal/timeutil"
)

// Bundle is the named collection of every dashboard view produced by
// one recompute pass over the filtered table. It is the whole contract
// to the rendering layer: finite, already-aggregated tables and series,
// nothing left to compute downstream.
type Bundle struct {
	Selection      filter.Selection       `json:"selection"`
	RowCount       int                    `json:"row_count"`
	KPIs           KPIs                   `json:"kpis"`
	Guests         []GuestMetric          `json:"guests"`
	Segments       []SegmentStat          `json:"segments"`
	Matrix         BrandMatrix            `json:"matrix"`
	VisitFrequency []VisitFrequencyBucket `json:"visit_frequency"`
	RevenueByDay   []DayRevenue           `json:"revenue_by_day"`
	RevenueByHour  []HourRevenue          `json:"revenue_by_hour"`
	CLV            LifetimeValue          `json:"clv"`
	Retention      Retention              `json:"retention"`
	Brands         BrandInsights          `json:"brands"`
	Preferences    []BrandPreference      `json:"preferences"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// ViewNames lists the per-view API names in render order.
var ViewNames = []string{
	"kpis",
	"guests",
	"segments",
	"matrix",
	"visit-frequency",
	"revenue-by-day",
	"revenue-by-hour",
	"clv",
	"retention",
	"brands",
	"preferences",
}

// View returns one named view from the bundle.
func (b *Bundle) View(name string) (interface{}, bool) {
	switch name {
	case "kpis":
		return b.KPIs, true
	case "guests":
		return b.Guests, true
	case "segments":
		return b.Segments, true
	case "matrix":
		return b.Matrix, true
	case "visit-frequency":
		return b.VisitFrequency, true
	case "revenue-by-day":
		return b.RevenueByDay, true
	case "revenue-by-hour":
		return b.RevenueByHour, true
	case "clv":
		return b.CLV, true
	case "retention":
		return b.Retention, true
	case "brands":
		return b.Brands, true
	case "preferences":
		return b.Preferences, true
	}
	return nil, false
}

// Recompute is the explicit recompute entry point: it resolves the
// selection against the table and computes every view from the filtered
// subset. It is a pure function of (table, selection) and is what the
// HTTP layer, the report exporter, the pre-warm hook and the tests all
// call. A nil index is built on the fly.
func Recompute(table *dataset.Table, idx *filter.Index, sel filter.Selection) *Bundle {
	if idx == nil {
		idx = filter.NewIndex(table)
	}
	rows := idx.Rows(table, sel)
	return ComputeBundle(rows, sel)
}

// ComputeBundle runs the aggregation pipeline over an already-filtered
// row set. Views compute independently: a panic inside one view is
// logged and leaves that view at its zero value without failing the
// others.
func ComputeBundle(rows []dataset.Transaction, sel filter.Selection) *Bundle {
	b := &Bundle{
		Selection:   sel,
		RowCount:    len(rows),
		GeneratedAt: timeutil.Now(),
	}

	var guests []GuestMetric
	computeView("guests", func() {
		guests = GuestSummary(rows)
		b.Guests = guests
	})
	computeView("kpis", func() { b.KPIs = KPITotals(rows) })
	computeView("segments", func() { b.Segments = SegmentStats(guests, rows) })
	computeView("matrix", func() { b.Matrix = CentreBrandMatrix(rows) })
	computeView("visit-frequency", func() { b.VisitFrequency = VisitFrequency(guests) })
	computeView("revenue-by-day", func() { b.RevenueByDay = RevenueByDay(rows) })
	computeView("revenue-by-hour", func() { b.RevenueByHour = RevenueByHour(rows) })
	computeView("clv", func() { b.CLV = Lifetime(rows) })
	computeView("retention", func() { b.Retention = RetentionBuckets(rows) })
	computeView("brands", func() { b.Brands = BrandPerformance(rows) })
	computeView("preferences", func() { b.Preferences = GuestBrandPreferences(rows) })

	return b
}

// computeView isolates one view so a failure in it cannot take the rest
// of the pipeline down.
func computeView(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Analytics] %s view failed: %v", name, r)
		}
	}()
	fn()
}
