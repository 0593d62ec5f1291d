package analytics

import (
	"brew-backend/internal/dataset"
)

// topCustomerCount caps the lifetime-value leaderboard.
const topCustomerCount = 10

// CustomerValue is one customer's lifetime value over the filtered
// window: distinct bills and cumulative net spend.
type CustomerValue struct {
	CustomerID string  `json:"customer_id"`
	Visits     int     `json:"visits"`
	TotalSpend float64 `json:"total_spend"`
}

// LifetimeValue carries the mean per-customer net spend and the top
// customers by that spend, descending.
type LifetimeValue struct {
	Average        float64         `json:"average"`
	AverageDisplay string          `json:"average_display"`
	Top            []CustomerValue `json:"top"`
}

type customerNet struct {
	bills map[string]struct{}
	total float64
}

func netSpendByCustomer(rows []dataset.Transaction) map[string]*customerNet {
	byCustomer := make(map[string]*customerNet)
	for _, row := range rows {
		c := byCustomer[row.CustomerID]
		if c == nil {
			c = &customerNet{bills: make(map[string]struct{})}
			byCustomer[row.CustomerID] = c
		}
		c.bills[row.BillNo] = struct{}{}
		c.total += row.NetAmount
	}
	return byCustomer
}

// averageNetSpend is the mean of per-customer net totals, 0 when the
// filtered set has no customers.
func averageNetSpend(rows []dataset.Transaction) float64 {
	byCustomer := netSpendByCustomer(rows)
	if len(byCustomer) == 0 {
		return 0
	}
	var sum float64
	for _, c := range byCustomer {
		sum += c.total
	}
	return sum / float64(len(byCustomer))
}

// Lifetime computes the CLV view: average net spend per customer plus
// the top customers by total net spend, descending.
func Lifetime(rows []dataset.Transaction) LifetimeValue {
	byCustomer := netSpendByCustomer(rows)

	lv := LifetimeValue{Top: []CustomerValue{}}
	if len(byCustomer) == 0 {
		lv.AverageDisplay = FormatCurrency(0)
		return lv
	}

	var sum float64
	ranked := newTopN[float64](topCustomerCount)
	for customer, c := range byCustomer {
		sum += c.total
		ranked.Insert(customer, c.total)
	}
	lv.Average = sum / float64(len(byCustomer))
	lv.AverageDisplay = FormatCurrency(lv.Average)

	for _, e := range ranked.Values() {
		c := byCustomer[e.Key]
		lv.Top = append(lv.Top, CustomerValue{
			CustomerID: e.Key,
			Visits:     len(c.bills),
			TotalSpend: c.total,
		})
	}
	return lv
}
