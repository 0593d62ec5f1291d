package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brew-backend/internal/dataset"
)

func testTable() *dataset.Table {
	rows := []dataset.Transaction{
		{BillNo: "B1", CustomerID: "111", Centre: "Downtown", BillMonth: "Feb-2024"},
		{BillNo: "B2", CustomerID: "222", Centre: "Downtown", BillMonth: "Mar-2024"},
		{BillNo: "B3", CustomerID: "333", Centre: "Airport", BillMonth: "Mar-2024"},
		{BillNo: "B4", CustomerID: "111", Centre: "Airport", BillMonth: "Feb-2024"},
		{BillNo: "B5", CustomerID: "444", Centre: "Suburb", BillMonth: "Mar-2024"},
	}
	return &dataset.Table{
		Rows:       rows,
		Centres:    []string{"Downtown", "Airport", "Suburb"},
		BillMonths: []string{"Feb-2024", "Mar-2024"},
	}
}

func TestDefaultSelectionKeepsEverything(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	rows := idx.Rows(table, Default(table))
	assert.Len(t, rows, len(table.Rows), "full default selection must match the unfiltered table")
}

func TestEmptySelectionMatchesNothing(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	assert.Zero(t, idx.MatchCount(Selection{Centres: nil, Months: []string{"Mar-2024"}}))
	assert.Zero(t, idx.MatchCount(Selection{Centres: []string{"Downtown"}, Months: nil}))
	assert.Zero(t, idx.MatchCount(Selection{}))
}

func TestSelectionIntersectsDimensions(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	rows := idx.Rows(table, Selection{
		Centres: []string{"Downtown"},
		Months:  []string{"Mar-2024"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "B2", rows[0].BillNo)
}

func TestSelectionUnionsWithinDimension(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	rows := idx.Rows(table, Selection{
		Centres: []string{"Downtown", "Airport"},
		Months:  []string{"Feb-2024", "Mar-2024"},
	})
	assert.Len(t, rows, 4)
}

func TestUnknownValuesMatchNothing(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	count := idx.MatchCount(Selection{
		Centres: []string{"Nowhere"},
		Months:  []string{"Mar-2024"},
	})
	assert.Zero(t, count)
}

func TestRowsPreserveTableOrder(t *testing.T) {
	table := testTable()
	idx := NewIndex(table)

	rows := idx.Rows(table, Selection{
		Centres: []string{"Airport", "Downtown"},
		Months:  []string{"Feb-2024"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "B1", rows[0].BillNo)
	assert.Equal(t, "B4", rows[1].BillNo)
}

func TestSelectionKeyIsOrderInsensitive(t *testing.T) {
	a := Selection{Centres: []string{"Downtown", "Airport"}, Months: []string{"Mar-2024", "Feb-2024"}}
	b := Selection{Centres: []string{"Airport", "Downtown"}, Months: []string{"Feb-2024", "Mar-2024"}}
	c := Selection{Centres: []string{"Airport"}, Months: []string{"Feb-2024"}}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
