package analytics

import (
	"brew-backend/internal/dataset"
)

// KPIs are the headline numbers of the dashboard. Raw values and
// display strings travel together so the rendering layer does no
// arithmetic of its own.
type KPIs struct {
	TotalRevenue        float64 `json:"total_revenue"`
	TotalRevenueDisplay string  `json:"total_revenue_display"`
	UniqueGuests        int     `json:"unique_guests"`
	RepeatGuestPct      float64 `json:"repeat_guest_pct"`
	RepeatGuestDisplay  string  `json:"repeat_guest_display"`
	AverageCLV          float64 `json:"average_clv"`
	AverageCLVDisplay   string  `json:"average_clv_display"`
}

// KPITotals sums gross revenue and counts distinct guests over the
// filtered rows. The repeat-guest percentage counts customers with more
// than one distinct bill against the filtered unique-guest count, not
// the total customer base. Zero guests is a guarded case: 0.0 and
// "N/A", never a division by zero.
func KPITotals(rows []dataset.Transaction) KPIs {
	var total float64
	bills := make(map[string]map[string]struct{})

	for _, row := range rows {
		total += row.GrossAmount
		set := bills[row.CustomerID]
		if set == nil {
			set = make(map[string]struct{})
			bills[row.CustomerID] = set
		}
		set[row.BillNo] = struct{}{}
	}

	unique := len(bills)
	repeat := 0
	for _, set := range bills {
		if len(set) > 1 {
			repeat++
		}
	}

	kpis := KPIs{
		TotalRevenue:        total,
		TotalRevenueDisplay: FormatCurrency(total),
		UniqueGuests:        unique,
		RepeatGuestDisplay:  "N/A",
	}
	if unique > 0 {
		kpis.RepeatGuestPct = float64(repeat) / float64(unique) * 100
		kpis.RepeatGuestDisplay = FormatPercent(kpis.RepeatGuestPct)
	}

	kpis.AverageCLV = averageNetSpend(rows)
	kpis.AverageCLVDisplay = FormatCurrency(kpis.AverageCLV)
	return kpis
}
