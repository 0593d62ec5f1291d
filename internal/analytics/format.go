package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCurrency renders a rupee amount with thousands separators and
// no decimal places, matching the dashboard's display convention.
func FormatCurrency(amount float64) string {
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + "₹" + b.String()
}

// FormatPercent renders a percentage to one decimal place.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
