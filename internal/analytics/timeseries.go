package analytics

import (
	"sort"

	"brew-backend/internal/dataset"
)

// dayOrder fixes the calendar order of the day-of-week series.
var dayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayRevenue is one weekday's net revenue.
type DayRevenue struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// HourRevenue is one hour-of-day's net revenue.
type HourRevenue struct {
	Hour    int     `json:"hour"`
	Revenue float64 `json:"revenue"`
}

// RevenueByDay sums net amounts per day-of-week, emitted Monday through
// Sunday for the days observed in the filtered rows.
func RevenueByDay(rows []dataset.Transaction) []DayRevenue {
	totals := make(map[string]float64)
	for _, row := range rows {
		totals[row.Day] += row.NetAmount
	}

	series := make([]DayRevenue, 0, len(totals))
	for _, day := range dayOrder {
		if revenue, ok := totals[day]; ok {
			series = append(series, DayRevenue{Day: day, Revenue: revenue})
		}
	}
	return series
}

// RevenueByHour sums net amounts per hour of day, ascending over the
// hours observed in the filtered rows.
func RevenueByHour(rows []dataset.Transaction) []HourRevenue {
	totals := make(map[int]float64)
	for _, row := range rows {
		totals[row.Hour] += row.NetAmount
	}

	series := make([]HourRevenue, 0, len(totals))
	for hour, revenue := range totals {
		series = append(series, HourRevenue{Hour: hour, Revenue: revenue})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Hour < series[j].Hour })
	return series
}
