package analytics

import (
	"sort"
	"time"

	"brew-backend/internal/dataset"
)

// Retention windows in days. Both anchor to the filtered subset's own
// maximum date, never to wall-clock today, so the classification shifts
// with the active filter.
const (
	inactiveWindowDays = 30
	recentWindowDays   = 7
)

// RetentionEntry is one customer and their most recent visit date.
type RetentionEntry struct {
	CustomerID string    `json:"customer_id"`
	LastVisit  time.Time `json:"last_visit"`
}

// Retention partitions customers by recency of their last visit:
// inactive when it predates MaxDate−30d, recent when it falls within
// MaxDate−7d. A customer whose last visit is MaxDate itself is never
// inactive.
type Retention struct {
	MaxDate  time.Time        `json:"max_date"`
	Inactive []RetentionEntry `json:"inactive"`
	Recent   []RetentionEntry `json:"recent"`
}

// RetentionBuckets computes the retention view from the filtered rows.
// Inactive guests are listed oldest last-visit first; recent guests
// newest first.
func RetentionBuckets(rows []dataset.Transaction) Retention {
	ret := Retention{Inactive: []RetentionEntry{}, Recent: []RetentionEntry{}}
	if len(rows) == 0 {
		return ret
	}

	lastVisit := make(map[string]time.Time)
	for _, row := range rows {
		if row.Date.After(lastVisit[row.CustomerID]) {
			lastVisit[row.CustomerID] = row.Date
		}
		if row.Date.After(ret.MaxDate) {
			ret.MaxDate = row.Date
		}
	}

	inactiveCutoff := ret.MaxDate.AddDate(0, 0, -inactiveWindowDays)
	recentCutoff := ret.MaxDate.AddDate(0, 0, -recentWindowDays)

	for customer, last := range lastVisit {
		entry := RetentionEntry{CustomerID: customer, LastVisit: last}
		if last.Before(inactiveCutoff) {
			ret.Inactive = append(ret.Inactive, entry)
		}
		if !last.Before(recentCutoff) {
			ret.Recent = append(ret.Recent, entry)
		}
	}

	sort.Slice(ret.Inactive, func(i, j int) bool {
		if !ret.Inactive[i].LastVisit.Equal(ret.Inactive[j].LastVisit) {
			return ret.Inactive[i].LastVisit.Before(ret.Inactive[j].LastVisit)
		}
		return ret.Inactive[i].CustomerID < ret.Inactive[j].CustomerID
	})
	sort.Slice(ret.Recent, func(i, j int) bool {
		if !ret.Recent[i].LastVisit.Equal(ret.Recent[j].LastVisit) {
			return ret.Recent[i].LastVisit.After(ret.Recent[j].LastVisit)
		}
		return ret.Recent[i].CustomerID < ret.Recent[j].CustomerID
	})
	return ret
}
