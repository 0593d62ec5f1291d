package analytics

import (
	"sort"

	"brew-backend/internal/dataset"
)

// GuestMetric is one customer's activity over the filtered window:
// visits counts distinct bills, spend sums gross amounts. The segment
// label is the pure classification of those two numbers.
type GuestMetric struct {
	CustomerID string  `json:"customer_id"`
	Visits     int     `json:"visits"`
	Spend      float64 `json:"spend"`
	Segment    Segment `json:"segment"`
}

// GuestSummary aggregates the filtered rows per customer. Output is
// sorted by spend descending, customer ascending on ties, so identical
// input always yields identical output.
func GuestSummary(rows []dataset.Transaction) []GuestMetric {
	bills := make(map[string]map[string]struct{})
	spend := make(map[string]float64)

	for _, row := range rows {
		set := bills[row.CustomerID]
		if set == nil {
			set = make(map[string]struct{})
			bills[row.CustomerID] = set
		}
		set[row.BillNo] = struct{}{}
		spend[row.CustomerID] += row.GrossAmount
	}

	guests := make([]GuestMetric, 0, len(bills))
	for customer, set := range bills {
		visits := len(set)
		guests = append(guests, GuestMetric{
			CustomerID: customer,
			Visits:     visits,
			Spend:      spend[customer],
			Segment:    ClassifySegment(visits, spend[customer]),
		})
	}

	sort.Slice(guests, func(i, j int) bool {
		if guests[i].Spend != guests[j].Spend {
			return guests[i].Spend > guests[j].Spend
		}
		return guests[i].CustomerID < guests[j].CustomerID
	})
	return guests
}

// VisitFrequencyBucket counts how many customers made a given number of
// visits.
type VisitFrequencyBucket struct {
	Visits    int `json:"visits"`
	Customers int `json:"customers"`
}

// VisitFrequency turns the guest summary into a histogram of visit
// counts, ascending by visit count.
func VisitFrequency(guests []GuestMetric) []VisitFrequencyBucket {
	counts := make(map[int]int)
	for _, g := range guests {
		counts[g.Visits]++
	}

	buckets := make([]VisitFrequencyBucket, 0, len(counts))
	for visits, customers := range counts {
		buckets = append(buckets, VisitFrequencyBucket{Visits: visits, Customers: customers})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Visits < buckets[j].Visits })
	return buckets
}
