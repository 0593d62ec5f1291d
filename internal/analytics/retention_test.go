package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brew-backend/internal/dataset"
)

func TestRetentionBuckets_LiteralWindows(t *testing.T) {
	// Global max date 2024-03-31. B's last visit is 40 days prior →
	// inactive. C's is 3 days prior → recent.
	rows := []dataset.Transaction{
		{CustomerID: "A", Date: day("2024-03-31")},
		{CustomerID: "B", Date: day("2024-02-20")},
		{CustomerID: "C", Date: day("2024-03-28")},
	}
	ret := RetentionBuckets(rows)

	assert.Equal(t, day("2024-03-31"), ret.MaxDate)

	require.Len(t, ret.Inactive, 1)
	assert.Equal(t, "B", ret.Inactive[0].CustomerID)
	assert.Equal(t, day("2024-02-20"), ret.Inactive[0].LastVisit)

	recentIDs := make([]string, 0, len(ret.Recent))
	for _, e := range ret.Recent {
		recentIDs = append(recentIDs, e.CustomerID)
	}
	assert.Contains(t, recentIDs, "C")
	assert.NotContains(t, recentIDs, "B")
}

func TestRetentionBuckets_MaxDateCustomerNeverInactive(t *testing.T) {
	// A visited on day 1 and on the max date: the last visit IS the max,
	// so A cannot be inactive.
	rows := []dataset.Transaction{
		{CustomerID: "A", Date: day("2024-01-01")},
		{CustomerID: "A", Date: day("2024-03-31")},
	}
	ret := RetentionBuckets(rows)
	for _, e := range ret.Inactive {
		assert.NotEqual(t, "A", e.CustomerID)
	}
}

func TestRetentionBuckets_UsesLastVisitNotAnyVisit(t *testing.T) {
	// B has an old visit but a fresh one too; only the latest counts.
	rows := []dataset.Transaction{
		{CustomerID: "A", Date: day("2024-03-31")},
		{CustomerID: "B", Date: day("2024-01-05")},
		{CustomerID: "B", Date: day("2024-03-30")},
	}
	ret := RetentionBuckets(rows)
	assert.Empty(t, ret.Inactive)

	require.Len(t, ret.Recent, 2)
	// Newest last-visit first.
	assert.Equal(t, "A", ret.Recent[0].CustomerID)
	assert.Equal(t, "B", ret.Recent[1].CustomerID)
	assert.Equal(t, day("2024-03-30"), ret.Recent[1].LastVisit)
}

func TestRetentionBuckets_DisjointWhenWindowsDoNotOverlap(t *testing.T) {
	rows := []dataset.Transaction{
		{CustomerID: "anchor", Date: day("2024-03-31")},
		{CustomerID: "old", Date: day("2024-01-15")},
		{CustomerID: "fresh", Date: day("2024-03-26")},
		{CustomerID: "middling", Date: day("2024-03-10")},
	}
	ret := RetentionBuckets(rows)

	seen := make(map[string]bool)
	for _, e := range ret.Inactive {
		seen[e.CustomerID] = true
	}
	for _, e := range ret.Recent {
		assert.False(t, seen[e.CustomerID],
			"customer %s in both retention buckets", e.CustomerID)
	}

	// middling sits between the windows and lands in neither bucket.
	for _, e := range append(append([]RetentionEntry{}, ret.Inactive...), ret.Recent...) {
		assert.NotEqual(t, "middling", e.CustomerID)
	}
}

func TestRetentionBuckets_AnchorsToFilteredSubset(t *testing.T) {
	// The same customer histories classify differently when the subset's
	// max date moves: anchoring follows the filter, not the calendar.
	march := []dataset.Transaction{
		{CustomerID: "x", Date: day("2024-02-25")},
		{CustomerID: "anchor", Date: day("2024-03-31")},
	}
	feb := []dataset.Transaction{
		{CustomerID: "x", Date: day("2024-02-25")},
		{CustomerID: "anchor", Date: day("2024-02-28")},
	}

	withMarchAnchor := RetentionBuckets(march)
	require.Len(t, withMarchAnchor.Inactive, 1)
	assert.Equal(t, "x", withMarchAnchor.Inactive[0].CustomerID)

	withFebAnchor := RetentionBuckets(feb)
	assert.Empty(t, withFebAnchor.Inactive)
	assert.Len(t, withFebAnchor.Recent, 2)
}

func TestRetentionBuckets_EmptyRows(t *testing.T) {
	ret := RetentionBuckets(nil)
	assert.True(t, ret.MaxDate.IsZero())
	assert.Empty(t, ret.Inactive)
	assert.Empty(t, ret.Recent)
}
