package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brew-backend/internal/dataset"
)

func TestLifetime_AverageAndRanking(t *testing.T) {
	rows := []dataset.Transaction{
		{CustomerID: "a", BillNo: "1", NetAmount: 100},
		{CustomerID: "a", BillNo: "2", NetAmount: 200},
		{CustomerID: "b", BillNo: "3", NetAmount: 900},
		{CustomerID: "c", BillNo: "4", NetAmount: 300},
	}
	lv := Lifetime(rows)

	// Totals: a=300, b=900, c=300 → mean 500.
	assert.Equal(t, 500.0, lv.Average)
	assert.Equal(t, "₹500", lv.AverageDisplay)

	require.Len(t, lv.Top, 3)
	assert.Equal(t, "b", lv.Top[0].CustomerID)
	assert.Equal(t, 900.0, lv.Top[0].TotalSpend)
	assert.Equal(t, 1, lv.Top[0].Visits)
	// Ties on spend resolve by customer id ascending.
	assert.Equal(t, "a", lv.Top[1].CustomerID)
	assert.Equal(t, 2, lv.Top[1].Visits)
	assert.Equal(t, "c", lv.Top[2].CustomerID)
}

func TestLifetime_CapsAtTen(t *testing.T) {
	var rows []dataset.Transaction
	for i := 0; i < 15; i++ {
		rows = append(rows, dataset.Transaction{
			CustomerID: fmt.Sprintf("c%02d", i),
			BillNo:     fmt.Sprintf("b%02d", i),
			NetAmount:  float64((i + 1) * 100),
		})
	}
	lv := Lifetime(rows)
	require.Len(t, lv.Top, 10)
	assert.Equal(t, "c14", lv.Top[0].CustomerID)
	assert.Equal(t, 1500.0, lv.Top[0].TotalSpend)
	assert.Equal(t, "c05", lv.Top[9].CustomerID)
	for i := 1; i < len(lv.Top); i++ {
		assert.GreaterOrEqual(t, lv.Top[i-1].TotalSpend, lv.Top[i].TotalSpend)
	}
}

func TestLifetime_EmptyRows(t *testing.T) {
	lv := Lifetime(nil)
	assert.Zero(t, lv.Average)
	assert.Equal(t, "₹0", lv.AverageDisplay)
	assert.Empty(t, lv.Top)
}

func TestAverageNetSpend_UsesNetNotGross(t *testing.T) {
	rows := []dataset.Transaction{
		{CustomerID: "a", BillNo: "1", GrossAmount: 1000, NetAmount: 880},
	}
	assert.Equal(t, 880.0, averageNetSpend(rows))
}
