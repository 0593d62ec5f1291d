package analytics

import (
	"brew-backend/internal/dataset"
)

// Segment is a customer classification tier derived from visit count
// and spend.
type Segment string

const (
	SegmentVIP        Segment = "VIP"
	SegmentRegular    Segment = "Regular"
	SegmentOccasional Segment = "Occasional"
)

// Segment policy constants.
const (
	vipSpendThreshold     = 10000.0
	vipVisitThreshold     = 6
	regularVisitThreshold = 3
)

// segmentOrder fixes the render order of per-segment tables and charts.
var segmentOrder = []Segment{SegmentVIP, SegmentRegular, SegmentOccasional}

// ClassifySegment maps a guest's visit count and gross spend to a
// segment. The rule order is significant: the VIP condition wins
// whenever both it and the Regular condition hold.
func ClassifySegment(visits int, spend float64) Segment {
	switch {
	case spend > vipSpendThreshold || visits >= vipVisitThreshold:
		return SegmentVIP
	case visits >= regularVisitThreshold:
		return SegmentRegular
	default:
		return SegmentOccasional
	}
}

// SegmentStat is one segment's share of the filtered table.
type SegmentStat struct {
	Segment        Segment `json:"segment"`
	Customers      int     `json:"customers"`
	Revenue        float64 `json:"revenue"`
	RevenueDisplay string  `json:"revenue_display"`
}

// SegmentStats counts guests per segment and sums gross revenue per
// segment by joining the segment assignment back onto the filtered rows
// through the customer key. The three segment revenues always partition
// the total filtered gross amount. All three segments are always
// present, zero-valued when unpopulated.
func SegmentStats(guests []GuestMetric, rows []dataset.Transaction) []SegmentStat {
	segmentOf := make(map[string]Segment, len(guests))
	customers := make(map[Segment]int)
	for _, g := range guests {
		segmentOf[g.CustomerID] = g.Segment
		customers[g.Segment]++
	}

	revenue := make(map[Segment]float64)
	for _, row := range rows {
		revenue[segmentOf[row.CustomerID]] += row.GrossAmount
	}

	stats := make([]SegmentStat, 0, len(segmentOrder))
	for _, seg := range segmentOrder {
		stats = append(stats, SegmentStat{
			Segment:        seg,
			Customers:      customers[seg],
			Revenue:        revenue[seg],
			RevenueDisplay: FormatCurrency(revenue[seg]),
		})
	}
	return stats
}
