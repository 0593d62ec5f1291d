package analytics

import (
	"sort"

	"brew-backend/internal/dataset"
)

// topPreferenceCount caps the guest-brand preference table.
const topPreferenceCount = 20

// BrandPreference counts how many line items ("orders") one customer
// placed against one brand.
type BrandPreference struct {
	CustomerID string `json:"customer_id"`
	Brand      string `json:"brand"`
	Orders     int    `json:"orders"`
}

// GuestBrandPreferences counts rows per (customer, brand) pair and
// returns the top pairs by order count descending, customer then brand
// ascending on ties.
func GuestBrandPreferences(rows []dataset.Transaction) []BrandPreference {
	type pair struct {
		customer string
		brand    string
	}
	orders := make(map[pair]int)
	for _, row := range rows {
		orders[pair{row.CustomerID, row.Brand}]++
	}

	prefs := make([]BrandPreference, 0, len(orders))
	for p, n := range orders {
		prefs = append(prefs, BrandPreference{CustomerID: p.customer, Brand: p.brand, Orders: n})
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Orders != prefs[j].Orders {
			return prefs[i].Orders > prefs[j].Orders
		}
		if prefs[i].CustomerID != prefs[j].CustomerID {
			return prefs[i].CustomerID < prefs[j].CustomerID
		}
		return prefs[i].Brand < prefs[j].Brand
	})

	if len(prefs) > topPreferenceCount {
		prefs = prefs[:topPreferenceCount]
	}
	return prefs
}
