package analytics

import (
	"fmt"
	"sort"

	"brew-backend/internal/dataset"
)

// BrandStat is one brand's performance over the filtered window.
type BrandStat struct {
	Brand          string  `json:"brand"`
	UniqueGuests   int     `json:"unique_guests"`
	QuantitySold   float64 `json:"quantity_sold"`
	Revenue        float64 `json:"revenue"`
	RevenueDisplay string  `json:"revenue_display"`
}

// Banner is an inline status message for the rendering layer.
type Banner struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// BrandInsights carries the brand table, revenue descending, plus the
// top/bottom performer banners. No brands means no banners: an empty
// brand table is a zero state, not an error.
type BrandInsights struct {
	Brands  []BrandStat `json:"brands"`
	Banners []Banner    `json:"banners"`
}

// BrandPerformance aggregates distinct guests, quantity sold and gross
// revenue per brand, sorted by revenue descending with brand name
// breaking ties. The first row feeds the "most preferred" banner and
// the last row the "low performing" one.
func BrandPerformance(rows []dataset.Transaction) BrandInsights {
	guests := make(map[string]map[string]struct{})
	quantity := make(map[string]float64)
	revenue := make(map[string]float64)

	for _, row := range rows {
		set := guests[row.Brand]
		if set == nil {
			set = make(map[string]struct{})
			guests[row.Brand] = set
		}
		set[row.CustomerID] = struct{}{}
		quantity[row.Brand] += row.Quantity
		revenue[row.Brand] += row.GrossAmount
	}

	insights := BrandInsights{Brands: []BrandStat{}, Banners: []Banner{}}
	for brand, set := range guests {
		insights.Brands = append(insights.Brands, BrandStat{
			Brand:          brand,
			UniqueGuests:   len(set),
			QuantitySold:   quantity[brand],
			Revenue:        revenue[brand],
			RevenueDisplay: FormatCurrency(revenue[brand]),
		})
	}
	sort.Slice(insights.Brands, func(i, j int) bool {
		if insights.Brands[i].Revenue != insights.Brands[j].Revenue {
			return insights.Brands[i].Revenue > insights.Brands[j].Revenue
		}
		return insights.Brands[i].Brand < insights.Brands[j].Brand
	})

	if len(insights.Brands) > 0 {
		top := insights.Brands[0].Brand
		low := insights.Brands[len(insights.Brands)-1].Brand
		insights.Banners = append(insights.Banners,
			Banner{Level: "success", Message: fmt.Sprintf("Most Preferred Category: %s", top)},
			Banner{Level: "warning", Message: fmt.Sprintf("Low Performing Category: %s", low)},
		)
	}
	return insights
}
