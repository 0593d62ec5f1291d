package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brew-backend/internal/dataset"
	"brew-backend/internal/filter"
)

func bundleTable() *dataset.Table {
	rows := []dataset.Transaction{
		{BillNo: "B1", CustomerID: "111", Centre: "Downtown", Brand: "Lager", BillMonth: "Feb-2024",
			GrossAmount: 500, NetAmount: 460, Quantity: 2, Date: day("2024-02-10"), Day: "Saturday", Hour: 19},
		{BillNo: "B2", CustomerID: "111", Centre: "Downtown", Brand: "IPA", BillMonth: "Mar-2024",
			GrossAmount: 700, NetAmount: 650, Quantity: 3, Date: day("2024-03-08"), Day: "Friday", Hour: 20},
		{BillNo: "B3", CustomerID: "222", Centre: "Airport", Brand: "Lager", BillMonth: "Mar-2024",
			GrossAmount: 300, NetAmount: 280, Quantity: 1, Date: day("2024-03-15"), Day: "Friday", Hour: 12},
		{BillNo: "B4", CustomerID: "333", Centre: "Airport", Brand: "Stout", BillMonth: "Feb-2024",
			GrossAmount: 900, NetAmount: 840, Quantity: 4, Date: day("2024-02-25"), Day: "Sunday", Hour: 21},
	}
	return &dataset.Table{
		Rows:       rows,
		Centres:    []string{"Downtown", "Airport"},
		BillMonths: []string{"Feb-2024", "Mar-2024"},
	}
}

func TestRecompute_DefaultSelectionCoversWholeTable(t *testing.T) {
	table := bundleTable()
	bundle := Recompute(table, nil, filter.Default(table))

	assert.Equal(t, len(table.Rows), bundle.RowCount)
	assert.Equal(t, 2400.0, bundle.KPIs.TotalRevenue)
	assert.Equal(t, 3, bundle.KPIs.UniqueGuests)
}

func TestRecompute_EmptySelectionRendersZeroStates(t *testing.T) {
	table := bundleTable()
	bundle := Recompute(table, nil, filter.Selection{})

	assert.Zero(t, bundle.RowCount)
	assert.Zero(t, bundle.KPIs.TotalRevenue)
	assert.Equal(t, "N/A", bundle.KPIs.RepeatGuestDisplay)
	assert.Empty(t, bundle.Guests)
	assert.Empty(t, bundle.Matrix.Centres)
	assert.Empty(t, bundle.RevenueByDay)
	assert.Empty(t, bundle.CLV.Top)
	assert.Empty(t, bundle.Brands.Brands)
	assert.Empty(t, bundle.Brands.Banners)
	assert.Empty(t, bundle.Preferences)

	// Segments stay present as zero rows.
	require.Len(t, bundle.Segments, 3)
	for _, s := range bundle.Segments {
		assert.Zero(t, s.Customers)
		assert.Zero(t, s.Revenue)
	}
}

func TestRecompute_FilteredSubset(t *testing.T) {
	table := bundleTable()
	idx := filter.NewIndex(table)

	bundle := Recompute(table, idx, filter.Selection{
		Centres: []string{"Downtown"},
		Months:  []string{"Feb-2024", "Mar-2024"},
	})

	assert.Equal(t, 2, bundle.RowCount)
	assert.Equal(t, 1200.0, bundle.KPIs.TotalRevenue)
	assert.Equal(t, 1, bundle.KPIs.UniqueGuests)
	// 111 has two distinct bills in the subset: a repeat guest.
	assert.Equal(t, 100.0, bundle.KPIs.RepeatGuestPct)

	// Retention anchors to the subset's own max date, 2024-03-08.
	assert.Equal(t, day("2024-03-08"), bundle.Retention.MaxDate)
}

func TestBundle_ViewRegistry(t *testing.T) {
	table := bundleTable()
	bundle := Recompute(table, nil, filter.Default(table))

	for _, name := range ViewNames {
		view, ok := bundle.View(name)
		assert.True(t, ok, "view %q missing from bundle", name)
		assert.NotNil(t, view)
	}

	_, ok := bundle.View("no-such-view")
	assert.False(t, ok)
}

func TestComputeBundle_Deterministic(t *testing.T) {
	table := bundleTable()
	sel := filter.Default(table)
	idx := filter.NewIndex(table)
	rows := idx.Rows(table, sel)

	a := ComputeBundle(rows, sel)
	b := ComputeBundle(rows, sel)

	assert.Equal(t, a.KPIs, b.KPIs)
	assert.Equal(t, a.Guests, b.Guests)
	assert.Equal(t, a.Segments, b.Segments)
	assert.Equal(t, a.Matrix, b.Matrix)
	assert.Equal(t, a.CLV, b.CLV)
	assert.Equal(t, a.Brands, b.Brands)
	assert.Equal(t, a.Preferences, b.Preferences)
}

func TestRecompute_SegmentPartitionHoldsUnderFilter(t *testing.T) {
	table := bundleTable()
	idx := filter.NewIndex(table)

	for _, sel := range []filter.Selection{
		filter.Default(table),
		{Centres: []string{"Airport"}, Months: []string{"Feb-2024", "Mar-2024"}},
		{Centres: []string{"Downtown", "Airport"}, Months: []string{"Mar-2024"}},
	} {
		bundle := Recompute(table, idx, sel)
		var segTotal float64
		for _, s := range bundle.Segments {
			segTotal += s.Revenue
		}
		assert.Equal(t, bundle.KPIs.TotalRevenue, segTotal)
	}
}
